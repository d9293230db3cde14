package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetWithRoster(ctx context.Context, id string) (*models.CourseWithRoster, error)
	Update(ctx context.Context, course *models.Course) error
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	EnrollStudent(ctx context.Context, courseID, studentID string) error
	IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	HasLessons(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type courseRepository struct {
	*PostgresRepository
}

func NewCourseRepository(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, name, teacher_id, course_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.Name,
		course.TeacherID,
		course.CourseType,
		course.CreatedAt,
	)

	return err
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `
		SELECT id, name, teacher_id, course_type, created_at
		FROM courses
		WHERE id = $1
	`

	course := &models.Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.TeacherID,
		&course.CourseType,
		&course.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return course, err
}

func (r *courseRepository) GetWithRoster(ctx context.Context, id string) (*models.CourseWithRoster, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}

	query := `
		SELECT student_id
		FROM course_students
		WHERE course_id = $1
		ORDER BY student_id
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &models.CourseWithRoster{Course: *course}
	for rows.Next() {
		var studentID string
		if err := rows.Scan(&studentID); err != nil {
			return nil, err
		}
		result.StudentIDs = append(result.StudentIDs, studentID)
	}

	return result, rows.Err()
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET name = $2, course_type = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, course.ID, course.Name, course.CourseType)
	return err
}

func (r *courseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	query := `
		SELECT id, name, teacher_id, course_type, created_at
		FROM courses
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.TeacherID,
			&course.CourseType,
			&course.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

func (r *courseRepository) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	query := `
		INSERT INTO course_students (course_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, student_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, courseID, studentID)
	return err
}

func (r *courseRepository) IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2)`
	var enrolled bool
	err := r.db.QueryRowContext(ctx, query, courseID, studentID).Scan(&enrolled)
	return enrolled, err
}

func (r *courseRepository) HasLessons(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lessons WHERE course_id = $1)`
	var has bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&has)
	return has, err
}

func (r *courseRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
