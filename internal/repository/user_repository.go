package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetWithBalance(ctx context.Context, id string) (*models.UserWithBalance, error)
	Exists(ctx context.Context, id string) (bool, error)
	GrantCredits(ctx context.Context, studentID string, courseType models.CourseType, count int) error
}

type userRepository struct {
	*PostgresRepository
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, role, phone_number, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.PhoneNumber,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, role, phone_number, bio, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PhoneNumber,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) GetWithBalance(ctx context.Context, id string) (*models.UserWithBalance, error) {
	query := `
		SELECT id, name, email, role, phone_number, bio, created_at, updated_at,
			lessons, lessons_intermediate, all_lessons, all_lessons_intermediate,
			break_lessons, all_break_lessons, missed_lessons, all_missed_lessons,
			month_bonus, month_referral_bonus
		FROM users
		WHERE id = $1
	`

	user := &models.UserWithBalance{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PhoneNumber,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Lessons,
		&user.LessonsIntermediate,
		&user.AllLessons,
		&user.AllLessonsIntermediate,
		&user.BreakLessons,
		&user.AllBreakLessons,
		&user.MissedLessons,
		&user.AllMissedLessons,
		&user.MonthBonus,
		&user.MonthReferralBonus,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *userRepository) GrantCredits(ctx context.Context, studentID string, courseType models.CourseType, count int) error {
	column := "lessons"
	if courseType == models.CourseTypeIntermediate {
		column = "lessons_intermediate"
	}

	query := `
		UPDATE users
		SET ` + column + ` = ` + column + ` + $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, count, time.Now(), studentID)
	return err
}

// rosterBalance is one locked roster row read inside the booking
// transaction.
type rosterBalance struct {
	StudentID string
	Balance   int
}

// chargeableStudents partitions the roster into the students to charge
// and the students with no credit left for the course type. Chargeable
// is nil whenever anyone is deficient, so the caller decrements every
// balance or none, and a student at zero is reported instead of being
// driven negative.
func chargeableStudents(roster []rosterBalance) (chargeable, deficient []string) {
	for _, s := range roster {
		if s.Balance <= 0 {
			deficient = append(deficient, s.StudentID)
		} else {
			chargeable = append(chargeable, s.StudentID)
		}
	}
	if len(deficient) > 0 {
		return nil, deficient
	}
	return chargeable, nil
}

// consumeCreditsTx locks the enrolled students' rows, reports every
// student without a remaining credit for the course type, and decrements
// one credit from each student when nobody is deficient. Runs inside the
// scheduling transaction so the booking is all-or-nothing across the
// roster.
func consumeCreditsTx(ctx context.Context, tx *sql.Tx, courseID string, courseType models.CourseType) ([]string, error) {
	column := "lessons"
	if courseType == models.CourseTypeIntermediate {
		column = "lessons_intermediate"
	}

	query := `
		SELECT u.id, u.` + column + `
		FROM users u
		JOIN course_students cs ON cs.student_id = u.id
		WHERE cs.course_id = $1
		ORDER BY u.id
		FOR UPDATE OF u
	`

	rows, err := tx.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []rosterBalance
	for rows.Next() {
		var row rosterBalance
		if err := rows.Scan(&row.StudentID, &row.Balance); err != nil {
			return nil, err
		}
		roster = append(roster, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chargeable, deficient := chargeableStudents(roster)
	if len(deficient) > 0 {
		return deficient, nil
	}
	if len(chargeable) == 0 {
		return nil, nil
	}

	update := `
		UPDATE users
		SET ` + column + ` = ` + column + ` - 1, updated_at = $1
		WHERE id = ANY($2)
	`

	_, err = tx.ExecContext(ctx, update, time.Now(), pq.Array(chargeable))
	return nil, err
}

// applyCounterDeltaTx bumps the teacher's outcome counters together with
// their all_* twins. Deltas are non-negative, so the lifetime counters
// never decrease.
func applyCounterDeltaTx(ctx context.Context, tx *sql.Tx, teacherID string, delta models.CounterDelta) error {
	if delta.IsZero() {
		return nil
	}

	query := `
		UPDATE users
		SET lessons = lessons + $1,
			all_lessons = all_lessons + $1,
			lessons_intermediate = lessons_intermediate + $2,
			all_lessons_intermediate = all_lessons_intermediate + $2,
			break_lessons = break_lessons + $3,
			all_break_lessons = all_break_lessons + $3,
			missed_lessons = missed_lessons + $4,
			all_missed_lessons = all_missed_lessons + $4,
			updated_at = $5
		WHERE id = $6
	`

	_, err := tx.ExecContext(ctx, query,
		delta.Lessons,
		delta.LessonsIntermediate,
		delta.BreakLessons,
		delta.MissedLessons,
		time.Now(),
		teacherID,
	)

	return err
}
