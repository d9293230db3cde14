package models

import (
	"time"
)

// HourlySlots covers the bookable hours 06:00-22:00, one flag per hour.
type HourlySlots struct {
	Hour6To7   bool `json:"hour_6_7" db:"hour_6_7"`
	Hour7To8   bool `json:"hour_7_8" db:"hour_7_8"`
	Hour8To9   bool `json:"hour_8_9" db:"hour_8_9"`
	Hour9To10  bool `json:"hour_9_10" db:"hour_9_10"`
	Hour10To11 bool `json:"hour_10_11" db:"hour_10_11"`
	Hour11To12 bool `json:"hour_11_12" db:"hour_11_12"`
	Hour12To13 bool `json:"hour_12_13" db:"hour_12_13"`
	Hour13To14 bool `json:"hour_13_14" db:"hour_13_14"`
	Hour14To15 bool `json:"hour_14_15" db:"hour_14_15"`
	Hour15To16 bool `json:"hour_15_16" db:"hour_15_16"`
	Hour16To17 bool `json:"hour_16_17" db:"hour_16_17"`
	Hour17To18 bool `json:"hour_17_18" db:"hour_17_18"`
	Hour18To19 bool `json:"hour_18_19" db:"hour_18_19"`
	Hour19To20 bool `json:"hour_19_20" db:"hour_19_20"`
	Hour20To21 bool `json:"hour_20_21" db:"hour_20_21"`
	Hour21To22 bool `json:"hour_21_22" db:"hour_21_22"`
}

type Availability struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Day       time.Time `json:"day" db:"day"`
	HourlySlots
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
