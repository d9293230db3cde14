package models

import "time"

// Data Transfer Objects

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Role        string `json:"role" validate:"required,oneof=student teacher writer admin unassigned"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	Bio         string `json:"bio" validate:"max=1000"`
}

type CreateCourseRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	TeacherID  string `json:"teacher_id" validate:"required,uuid"`
	CourseType string `json:"course_type" validate:"required,oneof=basic intermediate"`
}

type UpdateCourseRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	CourseType string `json:"course_type" validate:"required,oneof=basic intermediate"`
}

type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
}

type CreateLessonRequest struct {
	CourseID      string    `json:"course_id" validate:"required,uuid"`
	Title         string    `json:"title" validate:"required,min=3,max=255"`
	Description   string    `json:"description" validate:"max=2000"`
	EventDatetime time.Time `json:"event_datetime" validate:"required"`
}

type UpdateLessonRequest struct {
	Title         string    `json:"title" validate:"required,min=3,max=255"`
	Description   string    `json:"description" validate:"max=2000"`
	EventDatetime time.Time `json:"event_datetime" validate:"required"`
}

type SubmitFeedbackRequest struct {
	Feedback         string   `json:"feedback" validate:"required,max=5000"`
	AttendedStudents []string `json:"attended_students" validate:"dive,uuid"`
	AttendedTeachers []string `json:"attended_teachers" validate:"dive,uuid"`
	Points           *int     `json:"points,omitempty" validate:"omitempty,gte=0"`
	Rating           *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type CorrectLessonRequest struct {
	Feedback         string   `json:"feedback" validate:"max=5000"`
	AttendedStudents []string `json:"attended_students" validate:"dive,uuid"`
	AttendedTeachers []string `json:"attended_teachers" validate:"dive,uuid"`
}

type GrantCreditsRequest struct {
	CourseType string `json:"course_type" validate:"required,oneof=basic intermediate"`
	Count      int    `json:"count" validate:"required,gt=0"`
}

type RecordPayoutRequest struct {
	Month  int   `json:"month" validate:"required,min=1,max=12"`
	Year   int   `json:"year" validate:"required,min=2000"`
	Amount int64 `json:"amount" validate:"required"`
}

type SetAvailabilityRequest struct {
	Day   string      `json:"day" validate:"required,datetime=2006-01-02"`
	Slots HourlySlots `json:"slots"`
}

type FeedbackResponse struct {
	LessonID string        `json:"lesson_id"`
	Outcome  LessonOutcome `json:"outcome"`
	Payment  int64         `json:"payment"`
}

type LessonsResponse struct {
	Lessons []LessonWithDetails `json:"lessons"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
}
