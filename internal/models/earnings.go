package models

import (
	"time"
)

// TeacherEarning is the persisted payout record for one teacher and one
// calendar period. Unique per (teacher_id, month, year).
type TeacherEarning struct {
	ID        string    `json:"id" db:"id"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	Month     int       `json:"month" db:"month"`
	Year      int       `json:"year" db:"year"`
	Amount    int64     `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EarningsStatement is the computed view handed to reporting: the
// counter-based total (authoritative) next to the stored per-lesson
// payment sum for the same period.
type EarningsStatement struct {
	TeacherID  string `json:"teacher_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Total      int64  `json:"total"`
	PaymentSum int64  `json:"payment_sum"`
}
