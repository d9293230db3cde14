package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	user, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	ctx := r.Context()
	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) GrantCredits(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student ID format")
		return
	}

	var req models.GrantCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.ledgerService.GrantCredits(ctx, studentID, models.CourseType(req.CourseType), req.Count); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Credits granted successfully",
	})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student ID format")
		return
	}

	ctx := r.Context()
	user, err := h.ledgerService.BalanceOf(ctx, studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, user.CreditBalance)
}
