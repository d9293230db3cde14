package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/config"
	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
)

// EarningsService aggregates a teacher's payable totals. The counter
// formula is authoritative for the period in progress; closed periods
// are served from recorded payouts and the stored per-lesson payments,
// which always ride along as a reconciliation cross-check.
type EarningsService interface {
	PeriodEarnings(ctx context.Context, teacherID string, month, year int) (*models.EarningsStatement, error)
	LifetimeEarnings(ctx context.Context, teacherID string) (int64, error)
	RecordPayout(ctx context.Context, teacherID string, req *models.RecordPayoutRequest) (*models.TeacherEarning, error)
	GetPayout(ctx context.Context, teacherID string, month, year int) (*models.TeacherEarning, error)
	ListPayouts(ctx context.Context, teacherID string) ([]models.TeacherEarning, error)
}

type earningsService struct {
	earningsRepo repository.EarningsRepository
	lessonRepo   repository.LessonRepository
	userRepo     repository.UserRepository
	rules        config.LessonsConfig
	logger       zerolog.Logger
}

func NewEarningsService(
	earningsRepo repository.EarningsRepository,
	lessonRepo repository.LessonRepository,
	userRepo repository.UserRepository,
	rules config.LessonsConfig,
	logger zerolog.Logger,
) EarningsService {
	return &earningsService{
		earningsRepo: earningsRepo,
		lessonRepo:   lessonRepo,
		userRepo:     userRepo,
		rules:        rules,
		logger:       logger,
	}
}

func (s *earningsService) PeriodEarnings(ctx context.Context, teacherID string, month, year int) (*models.EarningsStatement, error) {
	user, err := s.userRepo.GetWithBalance(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != models.RoleTeacher {
		return nil, ErrTeacherRole
	}

	paymentSum, err := s.lessonRepo.PaymentSum(ctx, teacherID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum lesson payments: %w", err)
	}

	// The month counters and bonuses only describe the period in
	// progress. A past period is served from its recorded payout,
	// falling back to the stored per-lesson payments.
	now := nowFunc()
	total := paymentSum
	if month == int(now.Month()) && year == now.Year() {
		total = s.rules.RateIntermediate*int64(user.LessonsIntermediate) +
			s.rules.RateBasic*int64(user.Lessons) +
			s.rules.RateBroken*int64(user.BreakLessons) -
			s.rules.RateMissed*int64(user.MissedLessons) +
			user.MonthBonus + user.MonthReferralBonus
	} else if payout, err := s.earningsRepo.Get(ctx, teacherID, month, year); err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	} else if payout != nil {
		total = payout.Amount
	}

	return &models.EarningsStatement{
		TeacherID:  teacherID,
		Month:      month,
		Year:       year,
		Total:      total,
		PaymentSum: paymentSum,
	}, nil
}

func (s *earningsService) LifetimeEarnings(ctx context.Context, teacherID string) (int64, error) {
	user, err := s.userRepo.GetWithBalance(ctx, teacherID)
	if err != nil {
		return 0, fmt.Errorf("failed to get teacher: %w", err)
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	if user.Role != models.RoleTeacher {
		return 0, ErrTeacherRole
	}

	total := s.rules.RateIntermediate*int64(user.AllLessonsIntermediate) +
		s.rules.RateBasic*int64(user.AllLessons) +
		s.rules.RateBroken*int64(user.AllBreakLessons) -
		s.rules.RateMissed*int64(user.AllMissedLessons)

	return total, nil
}

func (s *earningsService) RecordPayout(ctx context.Context, teacherID string, req *models.RecordPayoutRequest) (*models.TeacherEarning, error) {
	user, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != models.RoleTeacher {
		return nil, ErrTeacherRole
	}

	earning := &models.TeacherEarning{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Month:     req.Month,
		Year:      req.Year,
		Amount:    req.Amount,
		CreatedAt: nowFunc(),
	}

	if err := s.earningsRepo.Upsert(ctx, earning); err != nil {
		return nil, fmt.Errorf("failed to record payout: %w", err)
	}

	s.logger.Info().
		Str("teacher_id", teacherID).
		Int("month", req.Month).
		Int("year", req.Year).
		Int64("amount", req.Amount).
		Msg("Teacher payout recorded")

	return earning, nil
}

func (s *earningsService) GetPayout(ctx context.Context, teacherID string, month, year int) (*models.TeacherEarning, error) {
	earning, err := s.earningsRepo.Get(ctx, teacherID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	return earning, nil
}

func (s *earningsService) ListPayouts(ctx context.Context, teacherID string) ([]models.TeacherEarning, error) {
	earnings, err := s.earningsRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	return earnings, nil
}
