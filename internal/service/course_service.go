package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
)

type CourseService interface {
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.CourseWithRoster, error)
	UpdateCourse(ctx context.Context, teacherID, courseID string, req *models.UpdateCourseRequest) (*models.Course, error)
	EnrollStudent(ctx context.Context, courseID, studentID string) error
	ListCoursesByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	teacher, err := s.userRepo.GetByID(ctx, req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrUserNotFound
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrTeacherRole
	}

	course := &models.Course{
		ID:         uuid.New().String(),
		Name:       req.Name,
		TeacherID:  req.TeacherID,
		CourseType: models.CourseType(req.CourseType),
		CreatedAt:  nowFunc(),
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().
		Str("course_id", course.ID).
		Str("teacher_id", req.TeacherID).
		Str("course_type", req.CourseType).
		Msg("Course created")

	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id string) (*models.CourseWithRoster, error) {
	course, err := s.courseRepo.GetWithRoster(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	return course, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, teacherID, courseID string, req *models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}

	// Consumed credits are priced by the course type, so the type is
	// frozen once any lesson exists.
	if models.CourseType(req.CourseType) != course.CourseType {
		hasLessons, err := s.courseRepo.HasLessons(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to check lessons: %w", err)
		}
		if hasLessons {
			return nil, ErrCourseTypeLocked
		}
	}

	course.Name = req.Name
	course.CourseType = models.CourseType(req.CourseType)

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info().
		Str("course_id", courseID).
		Str("course_type", req.CourseType).
		Msg("Course updated")

	return course, nil
}

func (s *courseService) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return ErrCourseNotFound
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return ErrUserNotFound
	}
	if student.Role != models.RoleStudent {
		return ErrStudentRole
	}

	if err := s.courseRepo.EnrollStudent(ctx, courseID, studentID); err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}

	s.logger.Info().
		Str("course_id", courseID).
		Str("student_id", studentID).
		Msg("Student enrolled")

	return nil
}

func (s *courseService) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	courses, err := s.courseRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}
