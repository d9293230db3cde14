package models

import (
	"time"
)

type CourseType string

const (
	CourseTypeBasic        CourseType = "basic"
	CourseTypeIntermediate CourseType = "intermediate"
)

func (ct CourseType) String() string {
	return string(ct)
}

type Course struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	TeacherID  string     `json:"teacher_id" db:"teacher_id"`
	CourseType CourseType `json:"course_type" db:"course_type"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type CourseWithRoster struct {
	Course
	StudentIDs []string `json:"student_ids"`
}
