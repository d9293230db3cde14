package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KRojowsky/beta-schoolweb/internal/config"
	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
	"github.com/KRojowsky/beta-schoolweb/pkg/utils"
)

var testRules = config.LessonsConfig{
	MinLeadTime:      15 * time.Minute,
	EditLockWindow:   15 * time.Minute,
	ConflictWindow:   50 * time.Minute,
	RateBasic:        50,
	RateIntermediate: 70,
	RateBroken:       20,
	RateMissed:       50,
}

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestCreateLesson(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	course := &models.Course{ID: "c1", Name: "Math", TeacherID: "t1", CourseType: models.CourseTypeBasic}

	tests := []struct {
		name           string
		teacherID      string
		eventTime      time.Time
		scheduleResult *repository.ScheduleResult
		wantErr        error
	}{
		{
			name:      "event too soon",
			teacherID: "t1",
			eventTime: now.Add(10 * time.Minute),
			wantErr:   ErrTooSoon,
		},
		{
			name:      "exactly at the lead time boundary",
			teacherID: "t1",
			eventTime: now.Add(15 * time.Minute),
			wantErr:   ErrTooSoon,
		},
		{
			name:      "not the course teacher",
			teacherID: "t2",
			eventTime: now.Add(time.Hour),
			wantErr:   ErrNotAuthorized,
		},
		{
			name:           "overlapping lesson",
			teacherID:      "t1",
			eventTime:      now.Add(time.Hour),
			scheduleResult: &repository.ScheduleResult{Conflict: true},
			wantErr:        ErrSchedulingConflict,
		},
		{
			name:      "scheduled",
			teacherID: "t1",
			eventTime: now.Add(time.Hour),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessonRepo := newFakeLessonRepo()
			lessonRepo.scheduleResult = tt.scheduleResult
			publisher := &fakePublisher{}
			svc := NewSchedulerService(lessonRepo, newFakeCourseRepo(course), newFakeUserRepo(), publisher, testRules, zerolog.Nop())

			lesson, err := svc.CreateLesson(context.Background(), tt.teacherID, &models.CreateLessonRequest{
				CourseID:      "c1",
				Title:         "Algebra",
				EventDatetime: tt.eventTime,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, publisher.scheduledEvents)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lesson.InviteCode, utils.InviteCodeLength)
			assert.Equal(t, "t1", lesson.HostID)
			require.Len(t, publisher.scheduledEvents, 1)
			assert.Equal(t, lesson.InviteCode, publisher.scheduledEvents[0].InviteCode)
		})
	}
}

func TestCreateLessonInsufficientCredit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	course := &models.Course{ID: "c1", TeacherID: "t1", CourseType: models.CourseTypeBasic}
	lessonRepo := newFakeLessonRepo()
	lessonRepo.scheduleResult = &repository.ScheduleResult{Deficient: []string{"s1", "s3"}}
	svc := NewSchedulerService(lessonRepo, newFakeCourseRepo(course), newFakeUserRepo(), nil, testRules, zerolog.Nop())

	_, err := svc.CreateLesson(context.Background(), "t1", &models.CreateLessonRequest{
		CourseID:      "c1",
		Title:         "Algebra",
		EventDatetime: now.Add(time.Hour),
	})

	require.True(t, IsInsufficientCredit(err))
	var icErr *InsufficientCreditError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, []string{"s1", "s3"}, icErr.StudentIDs)
}

func TestEditLesson(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	tests := []struct {
		name      string
		teacherID string
		lesson    *models.Lesson
		newTime   time.Time
		conflict  bool
		wantErr   error
	}{
		{
			name:      "not the host",
			teacherID: "t2",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(time.Hour)},
			newTime:   now.Add(2 * time.Hour),
			wantErr:   ErrNotAuthorized,
		},
		{
			name:      "already finalized",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(time.Hour), FeedbackSubmitted: true},
			newTime:   now.Add(2 * time.Hour),
			wantErr:   ErrAlreadySubmitted,
		},
		{
			name:      "inside the edit lock window",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(10 * time.Minute)},
			newTime:   now.Add(2 * time.Hour),
			wantErr:   ErrEditWindowClosed,
		},
		{
			name:      "new time too soon",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(time.Hour)},
			newTime:   now.Add(5 * time.Minute),
			wantErr:   ErrTooSoon,
		},
		{
			name:      "new time conflicts",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(time.Hour)},
			newTime:   now.Add(2 * time.Hour),
			conflict:  true,
			wantErr:   ErrSchedulingConflict,
		},
		{
			name:      "rescheduled",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", EventDatetime: now.Add(time.Hour)},
			newTime:   now.Add(2 * time.Hour),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessonRepo := newFakeLessonRepo(tt.lesson)
			lessonRepo.rescheduleConflict = tt.conflict
			svc := NewSchedulerService(lessonRepo, newFakeCourseRepo(), newFakeUserRepo(), nil, testRules, zerolog.Nop())

			lesson, err := svc.EditLesson(context.Background(), tt.teacherID, "l1", &models.UpdateLessonRequest{
				Title:         "Moved",
				EventDatetime: tt.newTime,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newTime, lesson.EventDatetime)
			assert.Equal(t, "Moved", lesson.Title)
		})
	}
}

func TestGetLessonStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	tests := []struct {
		name   string
		lesson *models.Lesson
		want   models.LessonStatus
	}{
		{name: "upcoming", lesson: &models.Lesson{ID: "l1", EventDatetime: now.Add(time.Hour)}, want: models.LessonStatusScheduled},
		{name: "awaiting feedback", lesson: &models.Lesson{ID: "l1", EventDatetime: now.Add(-time.Hour)}, want: models.LessonStatusFeedbackPending},
		{name: "finalized", lesson: &models.Lesson{ID: "l1", EventDatetime: now.Add(-time.Hour), FeedbackSubmitted: true}, want: models.LessonStatusFinalized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSchedulerService(newFakeLessonRepo(tt.lesson), newFakeCourseRepo(), newFakeUserRepo(), nil, testRules, zerolog.Nop())

			lesson, err := svc.GetLesson(context.Background(), "l1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, lesson.Status)
		})
	}
}

func TestGetLessonParticipants(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	lessonRepo := newFakeLessonRepo(&models.Lesson{ID: "l1", EventDatetime: now.Add(time.Hour)})
	lessonRepo.joins["l1"] = []string{"t1", "s1"}
	svc := NewSchedulerService(lessonRepo, newFakeCourseRepo(), newFakeUserRepo(), nil, testRules, zerolog.Nop())

	lesson, err := svc.GetLesson(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "s1"}, lesson.Participants)
}

func TestDeleteLesson(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	tests := []struct {
		name      string
		teacherID string
		lesson    *models.Lesson
		wantErr   error
	}{
		{
			name:      "not the host",
			teacherID: "t2",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1"},
			wantErr:   ErrNotAuthorized,
		},
		{
			name:      "finalized lessons stay",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1", FeedbackSubmitted: true},
			wantErr:   ErrAlreadySubmitted,
		},
		{
			name:      "deleted",
			teacherID: "t1",
			lesson:    &models.Lesson{ID: "l1", HostID: "t1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessonRepo := newFakeLessonRepo(tt.lesson)
			svc := NewSchedulerService(lessonRepo, newFakeCourseRepo(), newFakeUserRepo(), nil, testRules, zerolog.Nop())

			err := svc.DeleteLesson(context.Background(), tt.teacherID, "l1")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, lessonRepo.deletedID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "l1", lessonRepo.deletedID)
		})
	}
}
