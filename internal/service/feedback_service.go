package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/config"
	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
	"github.com/KRojowsky/beta-schoolweb/internal/service/integration"
)

// FeedbackService finalizes the outcome of a past lesson exactly once.
type FeedbackService interface {
	RecordClick(ctx context.Context, lessonID, userID string) error
	RecordJoin(ctx context.Context, lessonID, userID string) error
	SubmitFeedback(ctx context.Context, teacherID, lessonID string, req *models.SubmitFeedbackRequest) (*models.FeedbackResponse, error)
	CorrectLesson(ctx context.Context, teacherID, lessonID string, req *models.CorrectLessonRequest) (*models.LessonCorrection, error)
}

type feedbackService struct {
	lessonRepo repository.LessonRepository
	courseRepo repository.CourseRepository
	ledger     LedgerService
	publisher  integration.EventPublisher
	rates      models.PaymentRates
	logger     zerolog.Logger
}

func NewFeedbackService(
	lessonRepo repository.LessonRepository,
	courseRepo repository.CourseRepository,
	ledger LedgerService,
	publisher integration.EventPublisher,
	rules config.LessonsConfig,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackService{
		lessonRepo: lessonRepo,
		courseRepo: courseRepo,
		ledger:     ledger,
		publisher:  publisher,
		rates: models.PaymentRates{
			Basic:        rules.RateBasic,
			Intermediate: rules.RateIntermediate,
			Broken:       rules.RateBroken,
			Missed:       rules.RateMissed,
		},
		logger: logger,
	}
}

func (s *feedbackService) RecordClick(ctx context.Context, lessonID, userID string) error {
	if err := s.authorizeRoomEntry(ctx, lessonID, userID); err != nil {
		return err
	}

	if err := s.lessonRepo.AddClick(ctx, lessonID, userID); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// RecordJoin tracks membership of the live session room for the video
// collaborator. Joins are display data; outcome resolution keys on the
// clicked roster only.
func (s *feedbackService) RecordJoin(ctx context.Context, lessonID, userID string) error {
	if err := s.authorizeRoomEntry(ctx, lessonID, userID); err != nil {
		return err
	}

	if err := s.lessonRepo.RecordJoin(ctx, lessonID, userID); err != nil {
		return fmt.Errorf("failed to record join: %w", err)
	}

	return nil
}

// authorizeRoomEntry admits the course teacher or an enrolled student
// into a lesson that has not been finalized yet.
func (s *feedbackService) authorizeRoomEntry(ctx context.Context, lessonID, userID string) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return ErrLessonNotFound
	}
	if lesson.FeedbackSubmitted {
		return ErrAlreadySubmitted
	}

	course, err := s.courseRepo.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return ErrCourseNotFound
	}

	if course.TeacherID != userID {
		enrolled, err := s.courseRepo.IsStudentEnrolled(ctx, lesson.CourseID, userID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			return ErrNotAuthorized
		}
	}

	return nil
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, teacherID, lessonID string, req *models.SubmitFeedbackRequest) (*models.FeedbackResponse, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}
	if lesson.FeedbackSubmitted {
		return nil, ErrAlreadySubmitted
	}

	// The payable outcome is derived from who actually opened the room,
	// never from the teacher-entered attendance lists.
	clicked, err := s.lessonRepo.GetClickedRoster(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clicked roster: %w", err)
	}

	outcome := models.ResolveOutcome(clicked)
	payment := s.rates.PaymentFor(outcome, course.CourseType)
	delta := s.ledger.OutcomeCounters(outcome, course.CourseType)

	applied, err := s.lessonRepo.Finalize(ctx, &repository.FinalizeParams{
		LessonID:         lessonID,
		TeacherID:        teacherID,
		Feedback:         req.Feedback,
		Points:           req.Points,
		Rating:           req.Rating,
		AttendedStudents: req.AttendedStudents,
		AttendedTeachers: req.AttendedTeachers,
		Payment:          payment,
		Delta:            delta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finalize feedback: %w", err)
	}
	if !applied {
		return nil, ErrAlreadySubmitted
	}

	s.logger.Info().
		Str("lesson_id", lessonID).
		Str("teacher_id", teacherID).
		Str("outcome", outcome.String()).
		Int64("payment", payment).
		Msg("Lesson feedback finalized")

	s.publishFeedback(ctx, lessonID, outcome, payment)

	return &models.FeedbackResponse{
		LessonID: lessonID,
		Outcome:  outcome,
		Payment:  payment,
	}, nil
}

func (s *feedbackService) CorrectLesson(ctx context.Context, teacherID, lessonID string, req *models.CorrectLessonRequest) (*models.LessonCorrection, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}
	if !lesson.FeedbackSubmitted {
		return nil, ErrNotFinalized
	}

	correction := &models.LessonCorrection{
		ID:               uuid.New().String(),
		LessonID:         lessonID,
		Feedback:         req.Feedback,
		AttendedStudents: req.AttendedStudents,
		AttendedTeachers: req.AttendedTeachers,
		CreatedAt:        nowFunc(),
	}

	// Corrections amend the record only; the finalized outcome and the
	// ledgers stay untouched.
	if err := s.lessonRepo.CreateCorrection(ctx, correction); err != nil {
		return nil, fmt.Errorf("failed to create correction: %w", err)
	}

	s.logger.Info().
		Str("lesson_id", lessonID).
		Str("correction_id", correction.ID).
		Msg("Lesson correction recorded")

	return correction, nil
}

func (s *feedbackService) publishFeedback(ctx context.Context, lessonID string, outcome models.LessonOutcome, payment int64) {
	if s.publisher == nil {
		return
	}

	event := &models.FeedbackSubmittedEvent{
		LessonID:  lessonID,
		Outcome:   outcome.String(),
		Payment:   payment,
		Timestamp: nowFunc().Unix(),
	}

	if err := s.publisher.PublishFeedbackSubmitted(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("lesson_id", lessonID).Msg("Failed to publish feedback submitted event")
	}
}
