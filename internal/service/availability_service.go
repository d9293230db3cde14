package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
)

// AvailabilityService manages per-day hourly availability grids.
// Declarations are only accepted for the seven days starting tomorrow.
type AvailabilityService interface {
	SetAvailability(ctx context.Context, userID string, req *models.SetAvailabilityRequest) (*models.Availability, error)
	GetAvailability(ctx context.Context, userID string, day time.Time) (*models.Availability, error)
	ListAvailability(ctx context.Context, userID string) ([]models.Availability, error)
}

type availabilityService struct {
	availabilityRepo repository.AvailabilityRepository
	userRepo         repository.UserRepository
	logger           zerolog.Logger
}

func NewAvailabilityService(
	availabilityRepo repository.AvailabilityRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (s *availabilityService) SetAvailability(ctx context.Context, userID string, req *models.SetAvailabilityRequest) (*models.Availability, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		return nil, fmt.Errorf("failed to parse day: %w", err)
	}

	now := nowFunc()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	lastDay := tomorrow.AddDate(0, 0, 7)
	if day.Before(tomorrow) || day.After(lastDay) {
		return nil, ErrDayOutOfRange
	}

	availability := &models.Availability{
		ID:          uuid.New().String(),
		UserID:      userID,
		Day:         day,
		HourlySlots: req.Slots,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.availabilityRepo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("day", req.Day).
		Msg("Availability saved")

	return availability, nil
}

func (s *availabilityService) GetAvailability(ctx context.Context, userID string, day time.Time) (*models.Availability, error) {
	availability, err := s.availabilityRepo.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	return availability, nil
}

func (s *availabilityService) ListAvailability(ctx context.Context, userID string) ([]models.Availability, error) {
	availabilities, err := s.availabilityRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}

	return availabilities, nil
}
