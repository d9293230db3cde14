package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/config"
	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
	"github.com/KRojowsky/beta-schoolweb/internal/service/integration"
	"github.com/KRojowsky/beta-schoolweb/pkg/utils"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

const inviteCodeAttempts = 5

type SchedulerService interface {
	CreateLesson(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error)
	EditLesson(ctx context.Context, teacherID, lessonID string, req *models.UpdateLessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, teacherID, lessonID string) error
	GetLesson(ctx context.Context, lessonID string) (*models.LessonWithDetails, error)
	ListLessonsByTeacher(ctx context.Context, teacherID string, page, limit int) (*models.LessonsResponse, error)
	ListLessonsByStudent(ctx context.Context, studentID string, page, limit int) (*models.LessonsResponse, error)
}

type schedulerService struct {
	lessonRepo repository.LessonRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	publisher  integration.EventPublisher
	rules      config.LessonsConfig
	logger     zerolog.Logger
}

func NewSchedulerService(
	lessonRepo repository.LessonRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	publisher integration.EventPublisher,
	rules config.LessonsConfig,
	logger zerolog.Logger,
) SchedulerService {
	return &schedulerService{
		lessonRepo: lessonRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		publisher:  publisher,
		rules:      rules,
		logger:     logger,
	}
}

func (s *schedulerService) CreateLesson(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}

	now := nowFunc()
	if !req.EventDatetime.After(now.Add(s.rules.MinLeadTime)) {
		return nil, ErrTooSoon
	}

	windowStart := req.EventDatetime.Add(-s.rules.ConflictWindow)
	windowEnd := req.EventDatetime.Add(s.rules.ConflictWindow)

	var lesson *models.Lesson
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		lesson = &models.Lesson{
			ID:            uuid.New().String(),
			CourseID:      course.ID,
			HostID:        teacherID,
			Title:         req.Title,
			Description:   req.Description,
			EventDatetime: req.EventDatetime,
			InviteCode:    code,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		result, err := s.lessonRepo.Schedule(ctx, lesson, course.CourseType, windowStart, windowEnd)
		if err != nil {
			if repository.IsUniqueViolation(err, "lessons_invite_code_key") {
				continue
			}
			return nil, fmt.Errorf("failed to schedule lesson: %w", err)
		}
		if result.Conflict {
			return nil, ErrSchedulingConflict
		}
		if len(result.Deficient) > 0 {
			return nil, &InsufficientCreditError{StudentIDs: result.Deficient}
		}

		s.logger.Info().
			Str("lesson_id", lesson.ID).
			Str("course_id", course.ID).
			Str("teacher_id", teacherID).
			Time("event_datetime", req.EventDatetime).
			Msg("Lesson scheduled")

		s.publishScheduled(ctx, lesson)
		return lesson, nil
	}

	return nil, fmt.Errorf("failed to schedule lesson: invite code collisions exhausted %d attempts", inviteCodeAttempts)
}

func (s *schedulerService) EditLesson(ctx context.Context, teacherID, lessonID string, req *models.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.HostID != teacherID {
		return nil, ErrNotAuthorized
	}
	if lesson.FeedbackSubmitted {
		return nil, ErrAlreadySubmitted
	}

	now := nowFunc()
	if lesson.EventDatetime.Sub(now) <= s.rules.EditLockWindow {
		return nil, ErrEditWindowClosed
	}
	if !req.EventDatetime.After(now.Add(s.rules.MinLeadTime)) {
		return nil, ErrTooSoon
	}

	lesson.Title = req.Title
	lesson.Description = req.Description
	lesson.EventDatetime = req.EventDatetime

	windowStart := req.EventDatetime.Add(-s.rules.ConflictWindow)
	windowEnd := req.EventDatetime.Add(s.rules.ConflictWindow)

	conflict, err := s.lessonRepo.Reschedule(ctx, lesson, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule lesson: %w", err)
	}
	if conflict {
		return nil, ErrSchedulingConflict
	}

	s.logger.Info().
		Str("lesson_id", lesson.ID).
		Time("event_datetime", req.EventDatetime).
		Msg("Lesson rescheduled")

	return lesson, nil
}

func (s *schedulerService) DeleteLesson(ctx context.Context, teacherID, lessonID string) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return ErrLessonNotFound
	}
	if lesson.HostID != teacherID {
		return ErrNotAuthorized
	}
	if lesson.FeedbackSubmitted {
		// Finalized lessons feed the ledgers; they stay.
		return ErrAlreadySubmitted
	}

	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.logger.Info().
		Str("lesson_id", lessonID).
		Str("teacher_id", teacherID).
		Msg("Lesson deleted")

	return nil
}

func (s *schedulerService) GetLesson(ctx context.Context, lessonID string) (*models.LessonWithDetails, error) {
	lesson, err := s.lessonRepo.GetWithDetails(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	participants, err := s.lessonRepo.GetParticipants(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	lesson.Participants = participants
	lesson.Status = lesson.Lesson.Status(nowFunc())

	return lesson, nil
}

func (s *schedulerService) ListLessonsByTeacher(ctx context.Context, teacherID string, page, limit int) (*models.LessonsResponse, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	lessons, total, err := s.lessonRepo.ListByTeacher(ctx, teacherID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons by teacher: %w", err)
	}
	stampStatuses(lessons)

	return &models.LessonsResponse{
		Lessons: lessons,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *schedulerService) ListLessonsByStudent(ctx context.Context, studentID string, page, limit int) (*models.LessonsResponse, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	lessons, total, err := s.lessonRepo.ListByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons by student: %w", err)
	}
	stampStatuses(lessons)

	return &models.LessonsResponse{
		Lessons: lessons,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *schedulerService) publishScheduled(ctx context.Context, lesson *models.Lesson) {
	if s.publisher == nil {
		return
	}

	event := &models.LessonScheduledEvent{
		LessonID:      lesson.ID,
		CourseID:      lesson.CourseID,
		HostID:        lesson.HostID,
		InviteCode:    lesson.InviteCode,
		EventDatetime: lesson.EventDatetime.Unix(),
		Timestamp:     nowFunc().Unix(),
	}

	if err := s.publisher.PublishLessonScheduled(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("lesson_id", lesson.ID).Msg("Failed to publish lesson scheduled event")
	}
}

func stampStatuses(lessons []models.LessonWithDetails) {
	now := nowFunc()
	for i := range lessons {
		lessons[i].Status = lessons[i].Lesson.Status(now)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
