package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func newFeedbackService(lessonRepo *fakeLessonRepo, courseRepo *fakeCourseRepo, publisher *fakePublisher) FeedbackService {
	ledger := NewLedgerService(newFakeUserRepo(), zerolog.Nop())
	return NewFeedbackService(lessonRepo, courseRepo, ledger, publisher, testRules, zerolog.Nop())
}

func TestSubmitFeedbackOutcomes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	student := func(id string) models.RosterMember { return models.RosterMember{UserID: id, Role: models.RoleStudent} }
	teacher := func(id string) models.RosterMember { return models.RosterMember{UserID: id, Role: models.RoleTeacher} }

	tests := []struct {
		name        string
		courseType  models.CourseType
		clicked     []models.RosterMember
		wantOutcome models.LessonOutcome
		wantPayment int64
		wantDelta   models.CounterDelta
	}{
		{
			name:        "nobody clicked",
			courseType:  models.CourseTypeBasic,
			wantOutcome: models.OutcomeMissed,
			wantPayment: -50,
			wantDelta:   models.CounterDelta{MissedLessons: 1},
		},
		{
			name:        "only the teacher showed",
			courseType:  models.CourseTypeBasic,
			clicked:     []models.RosterMember{teacher("t1")},
			wantOutcome: models.OutcomeBroken,
			wantPayment: 20,
			wantDelta:   models.CounterDelta{BreakLessons: 1},
		},
		{
			name:        "only one student showed",
			courseType:  models.CourseTypeBasic,
			clicked:     []models.RosterMember{student("s1")},
			wantOutcome: models.OutcomeMissed,
			wantPayment: -50,
			wantDelta:   models.CounterDelta{MissedLessons: 1},
		},
		{
			name:        "full basic session",
			courseType:  models.CourseTypeBasic,
			clicked:     []models.RosterMember{teacher("t1"), student("s1")},
			wantOutcome: models.OutcomeAttended,
			wantPayment: 50,
			wantDelta:   models.CounterDelta{Lessons: 1},
		},
		{
			name:        "full intermediate session",
			courseType:  models.CourseTypeIntermediate,
			clicked:     []models.RosterMember{teacher("t1"), student("s1"), student("s2")},
			wantOutcome: models.OutcomeAttended,
			wantPayment: 70,
			wantDelta:   models.CounterDelta{LessonsIntermediate: 1},
		},
		{
			name:        "students without a teacher",
			courseType:  models.CourseTypeIntermediate,
			clicked:     []models.RosterMember{student("s1"), student("s2")},
			wantOutcome: models.OutcomeMissed,
			wantPayment: -50,
			wantDelta:   models.CounterDelta{MissedLessons: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1", EventDatetime: now.Add(-time.Hour)}
			course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: tt.courseType}
			lessonRepo := newFakeLessonRepo(lesson)
			lessonRepo.clicked = tt.clicked
			publisher := &fakePublisher{}
			svc := newFeedbackService(lessonRepo, newFakeCourseRepo(course), publisher)

			response, err := svc.SubmitFeedback(context.Background(), "t1", "l1", &models.SubmitFeedbackRequest{
				Feedback: "went fine",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, response.Outcome)
			assert.Equal(t, tt.wantPayment, response.Payment)

			require.NotNil(t, lessonRepo.finalized)
			assert.Equal(t, tt.wantPayment, lessonRepo.finalized.Payment)
			assert.Equal(t, tt.wantDelta, lessonRepo.finalized.Delta)

			require.Len(t, publisher.feedbackEvents, 1)
			assert.Equal(t, tt.wantOutcome.String(), publisher.feedbackEvents[0].Outcome)
		})
	}
}

func TestSubmitFeedbackGuards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: models.CourseTypeBasic}

	t.Run("not the course teacher", func(t *testing.T) {
		lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"}
		svc := newFeedbackService(newFakeLessonRepo(lesson), newFakeCourseRepo(course), nil)

		_, err := svc.SubmitFeedback(context.Background(), "t2", "l1", &models.SubmitFeedbackRequest{Feedback: "x"})
		require.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("already finalized", func(t *testing.T) {
		lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1", FeedbackSubmitted: true}
		svc := newFeedbackService(newFakeLessonRepo(lesson), newFakeCourseRepo(course), nil)

		_, err := svc.SubmitFeedback(context.Background(), "t1", "l1", &models.SubmitFeedbackRequest{Feedback: "x"})
		require.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	// A concurrent submit can slip between the read and the guarded
	// update; the repository reports it and nothing is double-counted.
	t.Run("lost the finalize race", func(t *testing.T) {
		lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"}
		lessonRepo := newFakeLessonRepo(lesson)
		lessonRepo.applyResult = false
		publisher := &fakePublisher{}
		svc := newFeedbackService(lessonRepo, newFakeCourseRepo(course), publisher)

		_, err := svc.SubmitFeedback(context.Background(), "t1", "l1", &models.SubmitFeedbackRequest{Feedback: "x"})
		require.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.Empty(t, publisher.feedbackEvents)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		svc := newFeedbackService(newFakeLessonRepo(), newFakeCourseRepo(course), nil)

		_, err := svc.SubmitFeedback(context.Background(), "t1", "nope", &models.SubmitFeedbackRequest{Feedback: "x"})
		require.ErrorIs(t, err, ErrLessonNotFound)
	})
}

func TestRecordClick(t *testing.T) {
	course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: models.CourseTypeBasic}

	tests := []struct {
		name     string
		userID   string
		enrolled []string
		lesson   *models.Lesson
		wantErr  error
	}{
		{
			name:   "course teacher",
			userID: "t1",
			lesson: &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
		},
		{
			name:     "enrolled student",
			userID:   "s1",
			enrolled: []string{"s1"},
			lesson:   &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
		},
		{
			name:    "stranger",
			userID:  "s9",
			lesson:  &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "finalized lesson",
			userID:  "t1",
			lesson:  &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1", FeedbackSubmitted: true},
			wantErr: ErrAlreadySubmitted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessonRepo := newFakeLessonRepo(tt.lesson)
			courseRepo := newFakeCourseRepo(course)
			courseRepo.rosters["c1"] = tt.enrolled
			svc := newFeedbackService(lessonRepo, courseRepo, nil)

			err := svc.RecordClick(context.Background(), "l1", tt.userID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, lessonRepo.clicks["l1"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.userID}, lessonRepo.clicks["l1"])
		})
	}
}

func TestRecordJoin(t *testing.T) {
	course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: models.CourseTypeBasic}

	tests := []struct {
		name     string
		userID   string
		enrolled []string
		lesson   *models.Lesson
		wantErr  error
	}{
		{
			name:   "course teacher",
			userID: "t1",
			lesson: &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
		},
		{
			name:     "enrolled student",
			userID:   "s1",
			enrolled: []string{"s1"},
			lesson:   &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
		},
		{
			name:    "stranger",
			userID:  "s9",
			lesson:  &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"},
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "finalized lesson",
			userID:  "t1",
			lesson:  &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1", FeedbackSubmitted: true},
			wantErr: ErrAlreadySubmitted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessonRepo := newFakeLessonRepo(tt.lesson)
			courseRepo := newFakeCourseRepo(course)
			courseRepo.rosters["c1"] = tt.enrolled
			svc := newFeedbackService(lessonRepo, courseRepo, nil)

			err := svc.RecordJoin(context.Background(), "l1", tt.userID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, lessonRepo.joins["l1"])
				return
			}
			require.NoError(t, err)

			// Rejoining the room keeps the set unchanged.
			require.NoError(t, svc.RecordJoin(context.Background(), "l1", tt.userID))
			assert.Equal(t, []string{tt.userID}, lessonRepo.joins["l1"])
		})
	}
}

func TestCorrectLesson(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: models.CourseTypeBasic}

	t.Run("requires a finalized lesson", func(t *testing.T) {
		lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1"}
		svc := newFeedbackService(newFakeLessonRepo(lesson), newFakeCourseRepo(course), nil)

		_, err := svc.CorrectLesson(context.Background(), "t1", "l1", &models.CorrectLessonRequest{Feedback: "late fix"})
		require.ErrorIs(t, err, ErrNotFinalized)
	})

	t.Run("amends the record without touching the outcome", func(t *testing.T) {
		lesson := &models.Lesson{ID: "l1", CourseID: "c1", HostID: "t1", FeedbackSubmitted: true, Payment: 50}
		lessonRepo := newFakeLessonRepo(lesson)
		svc := newFeedbackService(lessonRepo, newFakeCourseRepo(course), nil)

		correction, err := svc.CorrectLesson(context.Background(), "t1", "l1", &models.CorrectLessonRequest{
			Feedback:         "one more student attended",
			AttendedStudents: []string{"s1", "s2"},
		})

		require.NoError(t, err)
		assert.Equal(t, "l1", correction.LessonID)
		require.Len(t, lessonRepo.corrections, 1)
		assert.Nil(t, lessonRepo.finalized)
		assert.Equal(t, int64(50), lesson.Payment)
	})
}
