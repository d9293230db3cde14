package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
)

// LedgerService answers credit questions and applies explicit, named
// balance mutations. Consumption itself runs inside the scheduling
// transaction (all-or-nothing across the roster); this service owns the
// read side, admin top-ups and the outcome-to-counter mapping.
type LedgerService interface {
	HasCredit(ctx context.Context, studentID string, courseType models.CourseType) (bool, error)
	BalanceOf(ctx context.Context, studentID string) (*models.UserWithBalance, error)
	GrantCredits(ctx context.Context, studentID string, courseType models.CourseType, count int) error
	OutcomeCounters(outcome models.LessonOutcome, courseType models.CourseType) models.CounterDelta
}

type ledgerService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewLedgerService(userRepo repository.UserRepository, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *ledgerService) HasCredit(ctx context.Context, studentID string, courseType models.CourseType) (bool, error) {
	user, err := s.userRepo.GetWithBalance(ctx, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to get balance: %w", err)
	}
	if user == nil {
		return false, ErrUserNotFound
	}

	return user.Balance(courseType) > 0, nil
}

func (s *ledgerService) BalanceOf(ctx context.Context, studentID string) (*models.UserWithBalance, error) {
	user, err := s.userRepo.GetWithBalance(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *ledgerService) GrantCredits(ctx context.Context, studentID string, courseType models.CourseType, count int) error {
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Role != models.RoleStudent {
		return ErrStudentRole
	}

	if err := s.userRepo.GrantCredits(ctx, studentID, courseType, count); err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("course_type", courseType.String()).
		Int("count", count).
		Msg("Lesson credits granted")

	return nil
}

// OutcomeCounters maps a finalized outcome to the teacher's counter
// bumps. A full attendance credits the lifetime pair for the course type
// (the booking-time consumption stays spent either way, matching the
// non-refundable slot policy); a broken or missed session bumps its own
// pair instead.
func (s *ledgerService) OutcomeCounters(outcome models.LessonOutcome, courseType models.CourseType) models.CounterDelta {
	switch outcome {
	case models.OutcomeAttended:
		if courseType == models.CourseTypeIntermediate {
			return models.CounterDelta{LessonsIntermediate: 1}
		}
		return models.CounterDelta{Lessons: 1}
	case models.OutcomeBroken:
		return models.CounterDelta{BreakLessons: 1}
	default:
		return models.CounterDelta{MissedLessons: 1}
	}
}
