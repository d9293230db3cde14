package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

type EarningsRepository interface {
	Upsert(ctx context.Context, earning *models.TeacherEarning) error
	Get(ctx context.Context, teacherID string, month, year int) (*models.TeacherEarning, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherEarning, error)
}

type earningsRepository struct {
	*PostgresRepository
}

func NewEarningsRepository(db *sql.DB, logger zerolog.Logger) EarningsRepository {
	return &earningsRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *earningsRepository) Upsert(ctx context.Context, earning *models.TeacherEarning) error {
	query := `
		INSERT INTO teacher_earnings (id, teacher_id, month, year, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (teacher_id, month, year)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		earning.ID,
		earning.TeacherID,
		earning.Month,
		earning.Year,
		earning.Amount,
		earning.CreatedAt,
		time.Now(),
	)

	return err
}

func (r *earningsRepository) Get(ctx context.Context, teacherID string, month, year int) (*models.TeacherEarning, error) {
	query := `
		SELECT id, teacher_id, month, year, amount, created_at, updated_at
		FROM teacher_earnings
		WHERE teacher_id = $1 AND month = $2 AND year = $3
	`

	earning := &models.TeacherEarning{}
	err := r.db.QueryRowContext(ctx, query, teacherID, month, year).Scan(
		&earning.ID,
		&earning.TeacherID,
		&earning.Month,
		&earning.Year,
		&earning.Amount,
		&earning.CreatedAt,
		&earning.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return earning, err
}

func (r *earningsRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherEarning, error) {
	query := `
		SELECT id, teacher_id, month, year, amount, created_at, updated_at
		FROM teacher_earnings
		WHERE teacher_id = $1
		ORDER BY year DESC, month DESC
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []models.TeacherEarning
	for rows.Next() {
		var earning models.TeacherEarning
		err := rows.Scan(
			&earning.ID,
			&earning.TeacherID,
			&earning.Month,
			&earning.Year,
			&earning.Amount,
			&earning.CreatedAt,
			&earning.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		earnings = append(earnings, earning)
	}

	return earnings, rows.Err()
}
