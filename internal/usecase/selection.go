package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
)

const rejectMessage = "Couldn't parse, try again!"

// ParseCourseIndex accepts input only if it is an unsigned integer below count.
func ParseCourseIndex(input string, count int) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCourseIndex, input)
	}
	if n >= uint64(count) {
		return 0, fmt.Errorf("%w: %d is out of range [0, %d)", ErrInvalidCourseIndex, n, count)
	}
	return int(n), nil
}

// SelectCourse prompts until the operator picks a valid course. maxAttempts of zero
// keeps asking until the context ends.
func SelectCourse(ctx context.Context, op repository.Operator, courses []entity.CourseEntry, maxAttempts int) (entity.CourseEntry, error) {
	if len(courses) == 0 {
		return entity.CourseEntry{}, ErrNoCourses
	}
	for attempt := 1; maxAttempts == 0 || attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return entity.CourseEntry{}, err
		}
		line, err := op.ReadLine(ctx, "Choose course: ")
		if err != nil {
			return entity.CourseEntry{}, fmt.Errorf("read course selection: %w", err)
		}
		idx, err := ParseCourseIndex(line, len(courses))
		if err != nil {
			op.Reject(rejectMessage)
			continue
		}
		return courses[idx], nil
	}
	return entity.CourseEntry{}, ErrSelectionExhausted
}
