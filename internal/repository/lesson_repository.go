package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

// ScheduleResult reports why a booking was refused; both fields zero
// means the lesson was persisted and the roster's credits consumed.
type ScheduleResult struct {
	Conflict  bool
	Deficient []string
}

// FinalizeParams bundles everything the feedback finalization writes in
// one transaction.
type FinalizeParams struct {
	LessonID         string
	TeacherID        string
	Feedback         string
	Points           *int
	Rating           *int
	AttendedStudents []string
	AttendedTeachers []string
	Payment          int64
	Delta            models.CounterDelta
}

type LessonRepository interface {
	Schedule(ctx context.Context, lesson *models.Lesson, courseType models.CourseType, windowStart, windowEnd time.Time) (*ScheduleResult, error)
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	GetWithDetails(ctx context.Context, id string) (*models.LessonWithDetails, error)
	Reschedule(ctx context.Context, lesson *models.Lesson, windowStart, windowEnd time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	AddClick(ctx context.Context, lessonID, userID string) error
	GetClickedRoster(ctx context.Context, lessonID string) ([]models.RosterMember, error)
	RecordJoin(ctx context.Context, lessonID, userID string) error
	GetParticipants(ctx context.Context, lessonID string) ([]string, error)
	Finalize(ctx context.Context, params *FinalizeParams) (bool, error)
	CreateCorrection(ctx context.Context, correction *models.LessonCorrection) error
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.LessonWithDetails, int, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.LessonWithDetails, int, error)
	PaymentSum(ctx context.Context, teacherID string, month, year int) (int64, error)
}

type lessonRepository struct {
	*PostgresRepository
}

func NewLessonRepository(db *sql.DB, logger zerolog.Logger) LessonRepository {
	return &lessonRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *lessonRepository) Schedule(ctx context.Context, lesson *models.Lesson, courseType models.CourseType, windowStart, windowEnd time.Time) (*ScheduleResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Serializes bookings per host so two concurrent requests cannot both
	// pass the overlap check.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lesson.HostID); err != nil {
		return nil, err
	}

	var overlapping int
	overlapQuery := `
		SELECT COUNT(*)
		FROM lessons
		WHERE host_id = $1 AND event_datetime >= $2 AND event_datetime <= $3
	`
	if err := tx.QueryRowContext(ctx, overlapQuery, lesson.HostID, windowStart, windowEnd).Scan(&overlapping); err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return &ScheduleResult{Conflict: true}, nil
	}

	deficient, err := consumeCreditsTx(ctx, tx, lesson.CourseID, courseType)
	if err != nil {
		return nil, err
	}
	if len(deficient) > 0 {
		return &ScheduleResult{Deficient: deficient}, nil
	}

	insert := `
		INSERT INTO lessons (id, course_id, host_id, title, description, event_datetime,
			feedback_submitted, payment, invite_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, 0, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, insert,
		lesson.ID,
		lesson.CourseID,
		lesson.HostID,
		lesson.Title,
		lesson.Description,
		lesson.EventDatetime,
		lesson.InviteCode,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &ScheduleResult{}, nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `
		SELECT id, course_id, host_id, title, description, event_datetime,
			feedback, feedback_submitted, points, rating, payment, invite_code,
			created_at, updated_at
		FROM lessons
		WHERE id = $1
	`

	lesson := &models.Lesson{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.HostID,
		&lesson.Title,
		&lesson.Description,
		&lesson.EventDatetime,
		&lesson.Feedback,
		&lesson.FeedbackSubmitted,
		&lesson.Points,
		&lesson.Rating,
		&lesson.Payment,
		&lesson.InviteCode,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return lesson, err
}

func (r *lessonRepository) GetWithDetails(ctx context.Context, id string) (*models.LessonWithDetails, error) {
	query := lessonDetailsSelect + `WHERE l.id = $1`

	lesson := &models.LessonWithDetails{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.HostID,
		&lesson.Title,
		&lesson.Description,
		&lesson.EventDatetime,
		&lesson.Feedback,
		&lesson.FeedbackSubmitted,
		&lesson.Points,
		&lesson.Rating,
		&lesson.Payment,
		&lesson.InviteCode,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
		&lesson.CourseName,
		&lesson.CourseType,
		&lesson.TeacherName,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return lesson, err
}

func (r *lessonRepository) Reschedule(ctx context.Context, lesson *models.Lesson, windowStart, windowEnd time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lesson.HostID); err != nil {
		return false, err
	}

	var overlapping int
	overlapQuery := `
		SELECT COUNT(*)
		FROM lessons
		WHERE host_id = $1 AND event_datetime >= $2 AND event_datetime <= $3 AND id != $4
	`
	if err := tx.QueryRowContext(ctx, overlapQuery, lesson.HostID, windowStart, windowEnd, lesson.ID).Scan(&overlapping); err != nil {
		return false, err
	}
	if overlapping > 0 {
		return true, nil
	}

	update := `
		UPDATE lessons
		SET title = $1, description = $2, event_datetime = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := tx.ExecContext(ctx, update,
		lesson.Title,
		lesson.Description,
		lesson.EventDatetime,
		time.Now(),
		lesson.ID,
	); err != nil {
		return false, err
	}

	return false, tx.Commit()
}

func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM lessons WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *lessonRepository) AddClick(ctx context.Context, lessonID, userID string) error {
	query := `
		INSERT INTO lesson_clicks (lesson_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (lesson_id, user_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, lessonID, userID)
	return err
}

func (r *lessonRepository) GetClickedRoster(ctx context.Context, lessonID string) ([]models.RosterMember, error) {
	query := `
		SELECT u.id, u.role
		FROM lesson_clicks lc
		JOIN users u ON lc.user_id = u.id
		WHERE lc.lesson_id = $1
		ORDER BY lc.clicked_at
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.RosterMember
	for rows.Next() {
		var member models.RosterMember
		if err := rows.Scan(&member.UserID, &member.Role); err != nil {
			return nil, err
		}
		roster = append(roster, member)
	}

	return roster, rows.Err()
}

// RecordJoin marks a user as a member of the live session room. The
// participant set is display data; the payable outcome keys on the
// clicked roster.
func (r *lessonRepository) RecordJoin(ctx context.Context, lessonID, userID string) error {
	query := `
		INSERT INTO lesson_participants (lesson_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (lesson_id, user_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, lessonID, userID)
	return err
}

func (r *lessonRepository) GetParticipants(ctx context.Context, lessonID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM lesson_participants
		WHERE lesson_id = $1
		ORDER BY joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		participants = append(participants, userID)
	}

	return participants, rows.Err()
}

// Finalize applies the whole feedback bundle in one transaction: lesson
// fields, attendance rosters and the teacher's counters. The guarded
// UPDATE makes the false->true transition happen at most once; a second
// call reports applied=false and writes nothing.
func (r *lessonRepository) Finalize(ctx context.Context, params *FinalizeParams) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	update := `
		UPDATE lessons
		SET feedback = $1, points = $2, rating = $3, payment = $4,
			feedback_submitted = TRUE, updated_at = $5
		WHERE id = $6 AND feedback_submitted = FALSE
	`
	res, err := tx.ExecContext(ctx, update,
		params.Feedback,
		params.Points,
		params.Rating,
		params.Payment,
		time.Now(),
		params.LessonID,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if len(params.AttendedStudents) > 0 {
		insert := `
			INSERT INTO lesson_attended_students (lesson_id, user_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, insert, params.LessonID, pq.Array(params.AttendedStudents)); err != nil {
			return false, err
		}
	}

	if len(params.AttendedTeachers) > 0 {
		insert := `
			INSERT INTO lesson_attended_teachers (lesson_id, user_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, insert, params.LessonID, pq.Array(params.AttendedTeachers)); err != nil {
			return false, err
		}
	}

	if err := applyCounterDeltaTx(ctx, tx, params.TeacherID, params.Delta); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *lessonRepository) CreateCorrection(ctx context.Context, correction *models.LessonCorrection) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO lesson_corrections (id, lesson_id, feedback, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insert,
		correction.ID,
		correction.LessonID,
		correction.Feedback,
		correction.CreatedAt,
	); err != nil {
		return err
	}

	if len(correction.AttendedStudents) > 0 {
		query := `
			INSERT INTO correction_attended_students (correction_id, user_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, correction.ID, pq.Array(correction.AttendedStudents)); err != nil {
			return err
		}
	}

	if len(correction.AttendedTeachers) > 0 {
		query := `
			INSERT INTO correction_attended_teachers (correction_id, user_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, correction.ID, pq.Array(correction.AttendedTeachers)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const lessonDetailsSelect = `
	SELECT l.id, l.course_id, l.host_id, l.title, l.description, l.event_datetime,
		l.feedback, l.feedback_submitted, l.points, l.rating, l.payment, l.invite_code,
		l.created_at, l.updated_at,
		c.name as course_name, c.course_type, u.name as teacher_name
	FROM lessons l
	JOIN courses c ON l.course_id = c.id
	JOIN users u ON l.host_id = u.id
`

func (r *lessonRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.LessonWithDetails, int, error) {
	countQuery := `SELECT COUNT(*) FROM lessons WHERE host_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, teacherID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := lessonDetailsSelect + `
		WHERE l.host_id = $1
		ORDER BY l.event_datetime DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lessons, err := scanLessonDetails(rows)
	return lessons, total, err
}

func (r *lessonRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.LessonWithDetails, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM lessons l
		JOIN course_students cs ON l.course_id = cs.course_id
		WHERE cs.student_id = $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, studentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := lessonDetailsSelect + `
		JOIN course_students cs ON l.course_id = cs.course_id
		WHERE cs.student_id = $1
		ORDER BY l.event_datetime DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lessons, err := scanLessonDetails(rows)
	return lessons, total, err
}

func (r *lessonRepository) PaymentSum(ctx context.Context, teacherID string, month, year int) (int64, error) {
	query := `
		SELECT COALESCE(SUM(payment), 0)
		FROM lessons
		WHERE host_id = $1 AND feedback_submitted = TRUE
			AND EXTRACT(MONTH FROM event_datetime) = $2
			AND EXTRACT(YEAR FROM event_datetime) = $3
	`

	var sum int64
	err := r.db.QueryRowContext(ctx, query, teacherID, month, year).Scan(&sum)
	return sum, err
}

func scanLessonDetails(rows *sql.Rows) ([]models.LessonWithDetails, error) {
	var lessons []models.LessonWithDetails
	for rows.Next() {
		var lesson models.LessonWithDetails
		err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.HostID,
			&lesson.Title,
			&lesson.Description,
			&lesson.EventDatetime,
			&lesson.Feedback,
			&lesson.FeedbackSubmitted,
			&lesson.Points,
			&lesson.Rating,
			&lesson.Payment,
			&lesson.InviteCode,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
			&lesson.CourseName,
			&lesson.CourseType,
			&lesson.TeacherName,
		)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}
