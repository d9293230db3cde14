package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

type AvailabilityRepository interface {
	Upsert(ctx context.Context, availability *models.Availability) error
	Get(ctx context.Context, userID string, day time.Time) (*models.Availability, error)
	ListByUser(ctx context.Context, userID string) ([]models.Availability, error)
}

type availabilityRepository struct {
	*PostgresRepository
}

func NewAvailabilityRepository(db *sql.DB, logger zerolog.Logger) AvailabilityRepository {
	return &availabilityRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const availabilityColumns = `
	hour_6_7, hour_7_8, hour_8_9, hour_9_10, hour_10_11, hour_11_12,
	hour_12_13, hour_13_14, hour_14_15, hour_15_16, hour_16_17, hour_17_18,
	hour_18_19, hour_19_20, hour_20_21, hour_21_22
`

func (r *availabilityRepository) Upsert(ctx context.Context, availability *models.Availability) error {
	query := `
		INSERT INTO availabilities (id, user_id, day, ` + availabilityColumns + `, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (user_id, day)
		DO UPDATE SET
			hour_6_7 = EXCLUDED.hour_6_7, hour_7_8 = EXCLUDED.hour_7_8,
			hour_8_9 = EXCLUDED.hour_8_9, hour_9_10 = EXCLUDED.hour_9_10,
			hour_10_11 = EXCLUDED.hour_10_11, hour_11_12 = EXCLUDED.hour_11_12,
			hour_12_13 = EXCLUDED.hour_12_13, hour_13_14 = EXCLUDED.hour_13_14,
			hour_14_15 = EXCLUDED.hour_14_15, hour_15_16 = EXCLUDED.hour_15_16,
			hour_16_17 = EXCLUDED.hour_16_17, hour_17_18 = EXCLUDED.hour_17_18,
			hour_18_19 = EXCLUDED.hour_18_19, hour_19_20 = EXCLUDED.hour_19_20,
			hour_20_21 = EXCLUDED.hour_20_21, hour_21_22 = EXCLUDED.hour_21_22,
			updated_at = EXCLUDED.updated_at
	`

	s := availability.HourlySlots
	_, err := r.db.ExecContext(ctx, query,
		availability.ID,
		availability.UserID,
		availability.Day,
		s.Hour6To7, s.Hour7To8, s.Hour8To9, s.Hour9To10,
		s.Hour10To11, s.Hour11To12, s.Hour12To13, s.Hour13To14,
		s.Hour14To15, s.Hour15To16, s.Hour16To17, s.Hour17To18,
		s.Hour18To19, s.Hour19To20, s.Hour20To21, s.Hour21To22,
		availability.CreatedAt,
		time.Now(),
	)

	return err
}

func (r *availabilityRepository) Get(ctx context.Context, userID string, day time.Time) (*models.Availability, error) {
	query := `
		SELECT id, user_id, day, ` + availabilityColumns + `, created_at, updated_at
		FROM availabilities
		WHERE user_id = $1 AND day = $2
	`

	availability := &models.Availability{}
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(availabilityScanDest(availability)...)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return availability, err
}

func (r *availabilityRepository) ListByUser(ctx context.Context, userID string) ([]models.Availability, error) {
	query := `
		SELECT id, user_id, day, ` + availabilityColumns + `, created_at, updated_at
		FROM availabilities
		WHERE user_id = $1
		ORDER BY day
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var availabilities []models.Availability
	for rows.Next() {
		var availability models.Availability
		if err := rows.Scan(availabilityScanDest(&availability)...); err != nil {
			return nil, err
		}
		availabilities = append(availabilities, availability)
	}

	return availabilities, rows.Err()
}

func availabilityScanDest(a *models.Availability) []interface{} {
	s := &a.HourlySlots
	return []interface{}{
		&a.ID, &a.UserID, &a.Day,
		&s.Hour6To7, &s.Hour7To8, &s.Hour8To9, &s.Hour9To10,
		&s.Hour10To11, &s.Hour11To12, &s.Hour12To13, &s.Hour13To14,
		&s.Hour14To15, &s.Hour15To16, &s.Hour16To17, &s.Hour17To18,
		&s.Hour18To19, &s.Hour19To20, &s.Hour20To21, &s.Hour21To22,
		&a.CreatedAt, &a.UpdatedAt,
	}
}
