package service

import (
	"context"
	"time"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
)

// In-memory fakes for the repository interfaces. Transactional behavior
// (conflict detection, credit consumption, the finalize guard) is
// steered per test through the result fields.

type fakeUserRepo struct {
	users map[string]*models.UserWithBalance

	grantedID    string
	grantedType  models.CourseType
	grantedCount int
}

func newFakeUserRepo(users ...*models.UserWithBalance) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.UserWithBalance)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = &models.UserWithBalance{User: *user}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	user := u.User
	return &user, nil
}

func (f *fakeUserRepo) GetWithBalance(ctx context.Context, id string) (*models.UserWithBalance, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) GrantCredits(ctx context.Context, studentID string, courseType models.CourseType, count int) error {
	f.grantedID = studentID
	f.grantedType = courseType
	f.grantedCount = count
	return nil
}

type fakeCourseRepo struct {
	courses    map[string]*models.Course
	rosters    map[string][]string
	hasLessons map[string]bool
	updated    *models.Course
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{
		courses:    make(map[string]*models.Course),
		rosters:    make(map[string][]string),
		hasLessons: make(map[string]bool),
	}
	for _, c := range courses {
		repo.courses[c.ID] = c
	}
	return repo
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (f *fakeCourseRepo) GetWithRoster(ctx context.Context, id string) (*models.CourseWithRoster, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	return &models.CourseWithRoster{Course: *c, StudentIDs: f.rosters[id]}, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	f.updated = course
	return nil
}

func (f *fakeCourseRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.TeacherID == teacherID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	f.rosters[courseID] = append(f.rosters[courseID], studentID)
	return nil
}

func (f *fakeCourseRepo) IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	for _, id := range f.rosters[courseID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) HasLessons(ctx context.Context, id string) (bool, error) {
	return f.hasLessons[id], nil
}

func (f *fakeCourseRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.courses[id]
	return ok, nil
}

type fakeLessonRepo struct {
	lessons map[string]*models.Lesson

	scheduleResult *repository.ScheduleResult
	scheduleErr    error
	scheduled      *models.Lesson

	rescheduleConflict bool

	clicked     []models.RosterMember
	clicks      map[string][]string
	joins       map[string][]string
	finalized   *repository.FinalizeParams
	applyResult bool
	corrections []*models.LessonCorrection
	deletedID   string
	paymentSum  int64
}

func newFakeLessonRepo(lessons ...*models.Lesson) *fakeLessonRepo {
	repo := &fakeLessonRepo{
		lessons:     make(map[string]*models.Lesson),
		clicks:      make(map[string][]string),
		joins:       make(map[string][]string),
		applyResult: true,
	}
	for _, l := range lessons {
		repo.lessons[l.ID] = l
	}
	return repo
}

func (f *fakeLessonRepo) Schedule(ctx context.Context, lesson *models.Lesson, courseType models.CourseType, windowStart, windowEnd time.Time) (*repository.ScheduleResult, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	if f.scheduleResult != nil {
		return f.scheduleResult, nil
	}
	f.scheduled = lesson
	f.lessons[lesson.ID] = lesson
	return &repository.ScheduleResult{}, nil
}

func (f *fakeLessonRepo) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, nil
	}
	return l, nil
}

func (f *fakeLessonRepo) GetWithDetails(ctx context.Context, id string) (*models.LessonWithDetails, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, nil
	}
	return &models.LessonWithDetails{Lesson: *l}, nil
}

func (f *fakeLessonRepo) Reschedule(ctx context.Context, lesson *models.Lesson, windowStart, windowEnd time.Time) (bool, error) {
	if f.rescheduleConflict {
		return true, nil
	}
	f.lessons[lesson.ID] = lesson
	return false, nil
}

func (f *fakeLessonRepo) Delete(ctx context.Context, id string) error {
	delete(f.lessons, id)
	f.deletedID = id
	return nil
}

func (f *fakeLessonRepo) AddClick(ctx context.Context, lessonID, userID string) error {
	f.clicks[lessonID] = append(f.clicks[lessonID], userID)
	return nil
}

func (f *fakeLessonRepo) GetClickedRoster(ctx context.Context, lessonID string) ([]models.RosterMember, error) {
	return f.clicked, nil
}

func (f *fakeLessonRepo) RecordJoin(ctx context.Context, lessonID, userID string) error {
	for _, id := range f.joins[lessonID] {
		if id == userID {
			return nil
		}
	}
	f.joins[lessonID] = append(f.joins[lessonID], userID)
	return nil
}

func (f *fakeLessonRepo) GetParticipants(ctx context.Context, lessonID string) ([]string, error) {
	return f.joins[lessonID], nil
}

func (f *fakeLessonRepo) Finalize(ctx context.Context, params *repository.FinalizeParams) (bool, error) {
	f.finalized = params
	return f.applyResult, nil
}

func (f *fakeLessonRepo) CreateCorrection(ctx context.Context, correction *models.LessonCorrection) error {
	f.corrections = append(f.corrections, correction)
	return nil
}

func (f *fakeLessonRepo) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.LessonWithDetails, int, error) {
	return nil, 0, nil
}

func (f *fakeLessonRepo) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.LessonWithDetails, int, error) {
	return nil, 0, nil
}

func (f *fakeLessonRepo) PaymentSum(ctx context.Context, teacherID string, month, year int) (int64, error) {
	return f.paymentSum, nil
}

type fakeEarningsRepo struct {
	earnings map[string]*models.TeacherEarning
}

func newFakeEarningsRepo() *fakeEarningsRepo {
	return &fakeEarningsRepo{earnings: make(map[string]*models.TeacherEarning)}
}

func earningsKey(teacherID string, month, year int) string {
	return teacherID + "/" + time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (f *fakeEarningsRepo) Upsert(ctx context.Context, earning *models.TeacherEarning) error {
	f.earnings[earningsKey(earning.TeacherID, earning.Month, earning.Year)] = earning
	return nil
}

func (f *fakeEarningsRepo) Get(ctx context.Context, teacherID string, month, year int) (*models.TeacherEarning, error) {
	e, ok := f.earnings[earningsKey(teacherID, month, year)]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (f *fakeEarningsRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherEarning, error) {
	var out []models.TeacherEarning
	for _, e := range f.earnings {
		if e.TeacherID == teacherID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeAvailabilityRepo struct {
	saved []*models.Availability
}

func (f *fakeAvailabilityRepo) Upsert(ctx context.Context, availability *models.Availability) error {
	for i, a := range f.saved {
		if a.UserID == availability.UserID && a.Day.Equal(availability.Day) {
			f.saved[i] = availability
			return nil
		}
	}
	f.saved = append(f.saved, availability)
	return nil
}

func (f *fakeAvailabilityRepo) Get(ctx context.Context, userID string, day time.Time) (*models.Availability, error) {
	for _, a := range f.saved {
		if a.UserID == userID && a.Day.Equal(day) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAvailabilityRepo) ListByUser(ctx context.Context, userID string) ([]models.Availability, error) {
	var out []models.Availability
	for _, a := range f.saved {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakePublisher struct {
	scheduledEvents []*models.LessonScheduledEvent
	feedbackEvents  []*models.FeedbackSubmittedEvent
}

func (f *fakePublisher) PublishLessonScheduled(ctx context.Context, event *models.LessonScheduledEvent) error {
	f.scheduledEvents = append(f.scheduledEvents, event)
	return nil
}

func (f *fakePublisher) PublishFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error {
	f.feedbackEvents = append(f.feedbackEvents, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
