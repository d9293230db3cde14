package models

// Events published for the notification and video-room collaborators.

type LessonScheduledEvent struct {
	LessonID      string `json:"lesson_id"`
	CourseID      string `json:"course_id"`
	HostID        string `json:"host_id"`
	InviteCode    string `json:"invite_code"`
	EventDatetime int64  `json:"event_datetime"`
	Timestamp     int64  `json:"timestamp"`
}

type FeedbackSubmittedEvent struct {
	LessonID  string `json:"lesson_id"`
	Outcome   string `json:"outcome"`
	Payment   int64  `json:"payment"`
	Timestamp int64  `json:"timestamp"`
}
