package httpd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusForbidden, "Missing caller identity")
		return
	}

	var req models.SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	availability, err := h.availabilityService.SetAvailability(ctx, userID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, availability)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id format")
		return
	}

	day, err := time.Parse("2006-01-02", r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be in YYYY-MM-DD format")
		return
	}

	ctx := r.Context()
	availability, err := h.availabilityService.GetAvailability(ctx, userID, day)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if availability == nil {
		writeError(w, http.StatusNotFound, "Availability not found")
		return
	}

	writeSuccess(w, availability)
}

func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id format")
		return
	}

	ctx := r.Context()
	availabilities, err := h.availabilityService.ListAvailability(ctx, userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, availabilities)
}
