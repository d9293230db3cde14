package httpd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(teacherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher ID format")
		return
	}

	ctx := r.Context()

	if r.URL.Query().Get("scope") == "lifetime" {
		total, err := h.earningsService.LifetimeEarnings(ctx, teacherID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, map[string]interface{}{
			"teacher_id": teacherID,
			"total":      total,
		})
		return
	}

	now := time.Now()
	month := getIntQueryParam(r, "month", int(now.Month()))
	year := getIntQueryParam(r, "year", now.Year())
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	statement, err := h.earningsService.PeriodEarnings(ctx, teacherID, month, year)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, statement)
}

func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(teacherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher ID format")
		return
	}

	var req models.RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	earning, err := h.earningsService.RecordPayout(ctx, teacherID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    earning,
	})
}

func (h *Handler) GetPayouts(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(teacherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher ID format")
		return
	}

	ctx := r.Context()

	month := getIntQueryParam(r, "month", 0)
	year := getIntQueryParam(r, "year", 0)
	if month != 0 && year != 0 {
		earning, err := h.earningsService.GetPayout(ctx, teacherID, month, year)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		if earning == nil {
			writeError(w, http.StatusNotFound, "Payout not found")
			return
		}
		writeSuccess(w, earning)
		return
	}

	earnings, err := h.earningsService.ListPayouts(ctx, teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, earnings)
}
