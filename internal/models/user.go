package models

import (
	"time"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleWriter     Role = "writer"
	RoleAdmin      Role = "admin"
	RoleUnassigned Role = "unassigned"
)

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Role        Role      `json:"role" db:"role"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Bio         string    `json:"bio" db:"bio"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreditBalance carries the consumable lesson balances and the lifetime
// counters of a user. Balances are spent at booking time; the all_*
// counters only ever grow.
type CreditBalance struct {
	Lessons                int   `json:"lessons" db:"lessons"`
	LessonsIntermediate    int   `json:"lessons_intermediate" db:"lessons_intermediate"`
	AllLessons             int   `json:"all_lessons" db:"all_lessons"`
	AllLessonsIntermediate int   `json:"all_lessons_intermediate" db:"all_lessons_intermediate"`
	BreakLessons           int   `json:"break_lessons" db:"break_lessons"`
	AllBreakLessons        int   `json:"all_break_lessons" db:"all_break_lessons"`
	MissedLessons          int   `json:"missed_lessons" db:"missed_lessons"`
	AllMissedLessons       int   `json:"all_missed_lessons" db:"all_missed_lessons"`
	MonthBonus             int64 `json:"month_bonus" db:"month_bonus"`
	MonthReferralBonus     int64 `json:"month_referral_bonus" db:"month_referral_bonus"`
}

// Balance returns the consumable balance for a course type.
func (b CreditBalance) Balance(courseType CourseType) int {
	if courseType == CourseTypeIntermediate {
		return b.LessonsIntermediate
	}
	return b.Lessons
}

type UserWithBalance struct {
	User
	CreditBalance
}

// CounterDelta is an explicit, named bundle of counter increments applied
// to a teacher's row when a lesson outcome is finalized. Every field is
// non-negative; each current counter bump is mirrored on its all_* twin,
// which keeps the lifetime counters monotonic.
type CounterDelta struct {
	Lessons             int
	LessonsIntermediate int
	BreakLessons        int
	MissedLessons       int
}

// IsZero reports whether the delta changes nothing.
func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}
