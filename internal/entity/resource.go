package entity

// IconSignature identifies a resource's icon image. It is compared by exact match only.
type IconSignature string

// ResourceLink is an anchor on a course page whose icon marks it as a downloadable file.
type ResourceLink struct {
	Href string
	Icon IconSignature
}
