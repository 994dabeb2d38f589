package main

import "github.com/user/course-harvester/cmd/harvester/cmd"

func main() {
	cmd.Execute()
}
