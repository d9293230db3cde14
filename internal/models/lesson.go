package models

import (
	"time"
)

type LessonStatus string

const (
	LessonStatusScheduled       LessonStatus = "scheduled"
	LessonStatusFeedbackPending LessonStatus = "feedback_pending"
	LessonStatusFinalized       LessonStatus = "finalized"
)

func (ls LessonStatus) String() string {
	return string(ls)
}

// LessonOutcome is the finalized result of a session, derived from the
// clicked roster when the teacher submits feedback.
type LessonOutcome string

const (
	OutcomeAttended LessonOutcome = "attended"
	OutcomeBroken   LessonOutcome = "broken"
	OutcomeMissed   LessonOutcome = "missed"
)

func (o LessonOutcome) String() string {
	return string(o)
}

type Lesson struct {
	ID                string    `json:"id" db:"id"`
	CourseID          string    `json:"course_id" db:"course_id"`
	HostID            string    `json:"host_id" db:"host_id"`
	Title             string    `json:"title" db:"title"`
	Description       string    `json:"description" db:"description"`
	EventDatetime     time.Time `json:"event_datetime" db:"event_datetime"`
	Feedback          *string   `json:"feedback,omitempty" db:"feedback"`
	FeedbackSubmitted bool      `json:"feedback_submitted" db:"feedback_submitted"`
	Points            *int      `json:"points,omitempty" db:"points"`
	Rating            *int      `json:"rating,omitempty" db:"rating"`
	Payment           int64     `json:"payment" db:"payment"`
	InviteCode        string    `json:"invite_code" db:"invite_code"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Status reports where the lesson sits in its lifecycle. Only the
// finalized flag is persisted; the pending state is a matter of clock.
func (l *Lesson) Status(now time.Time) LessonStatus {
	if l.FeedbackSubmitted {
		return LessonStatusFinalized
	}
	if now.After(l.EventDatetime) {
		return LessonStatusFeedbackPending
	}
	return LessonStatusScheduled
}

type LessonWithDetails struct {
	Lesson
	CourseName   string       `json:"course_name" db:"course_name"`
	CourseType   CourseType   `json:"course_type" db:"course_type"`
	TeacherName  string       `json:"teacher_name" db:"teacher_name"`
	Participants []string     `json:"participants"`
	Status       LessonStatus `json:"status"`
}

// RosterMember is a user reference with the role needed for outcome
// resolution.
type RosterMember struct {
	UserID string `json:"user_id" db:"user_id"`
	Role   Role   `json:"role" db:"role"`
}

// ResolveOutcome maps the clicked roster of a finished session to its
// outcome. Click-through is recorded by the system when a participant
// opens the room, so the payable outcome never depends on the manually
// entered attendance lists. Total: every composition maps to exactly one
// outcome.
//
//	nobody clicked            -> missed
//	one student only          -> missed (teacher absent)
//	one teacher only          -> broken (no student showed)
//	several incl. a teacher   -> attended
//	several, no teacher       -> missed
func ResolveOutcome(clicked []RosterMember) LessonOutcome {
	switch {
	case len(clicked) == 0:
		return OutcomeMissed
	case len(clicked) == 1:
		if clicked[0].Role == RoleTeacher {
			return OutcomeBroken
		}
		return OutcomeMissed
	default:
		for _, m := range clicked {
			if m.Role == RoleTeacher {
				return OutcomeAttended
			}
		}
		return OutcomeMissed
	}
}

// PaymentRates holds the per-outcome payout amounts.
type PaymentRates struct {
	Basic        int64
	Intermediate int64
	Broken       int64
	Missed       int64
}

// PaymentFor returns the signed payment for an outcome on a course of
// the given type.
func (r PaymentRates) PaymentFor(outcome LessonOutcome, courseType CourseType) int64 {
	switch outcome {
	case OutcomeAttended:
		if courseType == CourseTypeIntermediate {
			return r.Intermediate
		}
		return r.Basic
	case OutcomeBroken:
		return r.Broken
	default:
		return -r.Missed
	}
}

type LessonCorrection struct {
	ID               string    `json:"id" db:"id"`
	LessonID         string    `json:"lesson_id" db:"lesson_id"`
	Feedback         string    `json:"feedback" db:"feedback"`
	AttendedStudents []string  `json:"attended_students"`
	AttendedTeachers []string  `json:"attended_teachers"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
