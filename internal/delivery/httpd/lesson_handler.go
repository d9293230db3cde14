package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	teacherID := callerID(r)
	if teacherID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	var req models.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	lesson, err := h.schedulerService.CreateLesson(ctx, teacherID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    lesson,
	})
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(lessonID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID format")
		return
	}

	ctx := r.Context()
	lesson, err := h.schedulerService.GetLesson(ctx, lessonID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, lesson)
}

func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(lessonID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID format")
		return
	}

	teacherID := callerID(r)
	if teacherID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	var req models.UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	lesson, err := h.schedulerService.EditLesson(ctx, teacherID, lessonID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, lesson)
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(lessonID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID format")
		return
	}

	teacherID := callerID(r)
	if teacherID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	ctx := r.Context()
	if err := h.schedulerService.DeleteLesson(ctx, teacherID, lessonID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Lesson deleted successfully",
	})
}

func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	teacherID := r.URL.Query().Get("teacher_id")
	studentID := r.URL.Query().Get("student_id")

	ctx := r.Context()

	switch {
	case teacherID != "":
		if _, err := uuid.Parse(teacherID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid teacher_id format")
			return
		}
		response, err := h.schedulerService.ListLessonsByTeacher(ctx, teacherID, page, limit)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, response)
	case studentID != "":
		if _, err := uuid.Parse(studentID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid student_id format")
			return
		}
		response, err := h.schedulerService.ListLessonsByStudent(ctx, studentID, page, limit)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, response)
	default:
		writeError(w, http.StatusBadRequest, "teacher_id or student_id query parameter is required")
	}
}
