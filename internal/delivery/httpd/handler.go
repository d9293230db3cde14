package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/service"
)

type Handler struct {
	userService         service.UserService
	courseService       service.CourseService
	ledgerService       service.LedgerService
	schedulerService    service.SchedulerService
	feedbackService     service.FeedbackService
	earningsService     service.EarningsService
	availabilityService service.AvailabilityService
	validate            *validator.Validate
	logger              zerolog.Logger
}

func NewHandler(
	userService service.UserService,
	courseService service.CourseService,
	ledgerService service.LedgerService,
	schedulerService service.SchedulerService,
	feedbackService service.FeedbackService,
	earningsService service.EarningsService,
	availabilityService service.AvailabilityService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		userService:         userService,
		courseService:       courseService,
		ledgerService:       ledgerService,
		schedulerService:    schedulerService,
		feedbackService:     feedbackService,
		earningsService:     earningsService,
		availabilityService: availabilityService,
		validate:            validator.New(),
		logger:              logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
		})

		api.Route("/courses", func(r chi.Router) {
			r.Post("/", h.CreateCourse)
			r.Get("/", h.ListCourses)
			r.Get("/{id}", h.GetCourse)
			r.Put("/{id}", h.UpdateCourse)
			r.Post("/{id}/students", h.EnrollStudent)
		})

		api.Route("/lessons", func(r chi.Router) {
			r.Post("/", h.CreateLesson)
			r.Get("/", h.ListLessons)
			r.Get("/{id}", h.GetLesson)
			r.Put("/{id}", h.UpdateLesson)
			r.Delete("/{id}", h.DeleteLesson)
			r.Post("/{id}/clicks", h.RecordClick)
			r.Post("/{id}/participants", h.RecordJoin)
			r.Post("/{id}/feedback", h.SubmitFeedback)
			r.Post("/{id}/corrections", h.CorrectLesson)
		})

		api.Route("/students", func(r chi.Router) {
			r.Post("/{id}/credits", h.GrantCredits)
			r.Get("/{id}/balance", h.GetBalance)
		})

		api.Route("/teachers", func(r chi.Router) {
			r.Get("/{id}/earnings", h.GetEarnings)
			r.Post("/{id}/payouts", h.RecordPayout)
			r.Get("/{id}/payouts", h.GetPayouts)
		})

		api.Route("/availability", func(r chi.Router) {
			r.Put("/", h.SetAvailability)
			r.Get("/", h.GetAvailability)
			r.Get("/list", h.ListAvailability)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "schoolweb",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// callerID extracts the authenticated principal set upstream by the
// identity collaborator.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTooSoon),
		errors.Is(err, service.ErrEditWindowClosed),
		errors.Is(err, service.ErrDayOutOfRange),
		errors.Is(err, service.ErrCourseTypeLocked),
		errors.Is(err, service.ErrStudentRole),
		errors.Is(err, service.ErrTeacherRole),
		errors.Is(err, service.ErrNotFinalized):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSchedulingConflict),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrEmailTaken),
		service.IsInsufficientCredit(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
