package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(lessonID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID format")
		return
	}

	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	ctx := r.Context()
	if err := h.feedbackService.RecordClick(ctx, lessonID, userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Click recorded",
	})
}

func (h *Handler) RecordJoin(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(lessonID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID format")
		return
	}

	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	ctx := r.Context()
	if err := h.feedbackService.RecordJoin(ctx, lessonID, userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Join recorded",
	})
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
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

	var req models.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	response, err := h.feedbackService.SubmitFeedback(ctx, teacherID, lessonID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) CorrectLesson(w http.ResponseWriter, r *http.Request) {
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

	var req models.CorrectLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	correction, err := h.feedbackService.CorrectLesson(ctx, teacherID, lessonID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    correction,
	})
}
