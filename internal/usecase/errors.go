package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfOrder         = errors.New("session step called out of order")
	ErrSelectionExhausted = errors.New("no valid course selected within the attempt budget")
	ErrInvalidCourseIndex = errors.New("invalid course index")
	ErrNoCourses          = errors.New("no courses listed")
	ErrNotConverged       = errors.New("download directory did not stabilize")
	ErrHarvestConsumed    = errors.New("harvest sequence already consumed")
)

// StepError records the session state in which a step failed.
type StepError struct {
	State State
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (from %s): %v", e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
