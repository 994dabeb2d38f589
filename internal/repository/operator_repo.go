package repository

import (
	"context"

	"github.com/user/course-harvester/internal/entity"
)

// Operator is the interactive person driving a run.
type Operator interface {
	// ReadLine prompts with label and returns one line of input without its line ending.
	ReadLine(ctx context.Context, label string) (string, error)
	// ReadSecret is like ReadLine but does not echo the input.
	ReadSecret(ctx context.Context, label string) (string, error)
	// Reject tells the operator their last input was not accepted.
	Reject(message string)
	// ShowCourses lists the courses available for selection.
	ShowCourses(courses []entity.CourseEntry)
}
