package service

import (
	"errors"
	"fmt"
	"strings"
)

// Typed errors mapped to HTTP status codes in the delivery layer. All of
// them are recoverable at the request boundary.
var (
	// Scheduling rules.
	ErrTooSoon            = errors.New("event time must be at least 15 minutes from now")
	ErrSchedulingConflict = errors.New("another lesson already exists in this time window")
	ErrEditWindowClosed   = errors.New("lesson can no longer be edited")

	// Authorization and lifecycle.
	ErrNotAuthorized    = errors.New("not authorized")
	ErrAlreadySubmitted = errors.New("feedback already submitted")
	ErrNotFinalized     = errors.New("lesson feedback not finalized")

	// Lookups.
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")

	// Input rules.
	ErrDayOutOfRange    = errors.New("day must be between tomorrow and seven days ahead")
	ErrEmailTaken       = errors.New("user with this email already exists")
	ErrCourseTypeLocked = errors.New("course type cannot change once lessons exist")
	ErrStudentRole      = errors.New("user is not a student")
	ErrTeacherRole      = errors.New("user is not a teacher")
)

// InsufficientCreditError aborts a booking and names every enrolled
// student whose balance for the course type is exhausted.
type InsufficientCreditError struct {
	StudentIDs []string
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient lesson credits for students: %s", strings.Join(e.StudentIDs, ", "))
}

// IsInsufficientCredit reports whether err is an InsufficientCreditError.
func IsInsufficientCredit(err error) bool {
	var icErr *InsufficientCreditError
	return errors.As(err, &icErr)
}
