package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	course, err := h.courseService.CreateCourse(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(courseID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	ctx := r.Context()
	course, err := h.courseService.GetCourse(ctx, courseID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(courseID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	teacherID := callerID(r)
	if teacherID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	var req models.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	course, err := h.courseService.UpdateCourse(ctx, teacherID, courseID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(courseID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	var req models.EnrollStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.courseService.EnrollStudent(ctx, courseID, req.StudentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Student enrolled successfully",
	})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	teacherID := r.URL.Query().Get("teacher_id")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "teacher_id query parameter is required")
		return
	}
	if _, err := uuid.Parse(teacherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher_id format")
		return
	}

	ctx := r.Context()
	courses, err := h.courseService.ListCoursesByTeacher(ctx, teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, courses)
}
