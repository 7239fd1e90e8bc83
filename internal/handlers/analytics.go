package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"veda-backend/internal/models"
	"veda-backend/internal/notify"
	"veda-backend/internal/repository"

	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

type AnalyticsHandler struct {
	repo     *repository.AnalyticsRepo
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAnalyticsHandler(repo *repository.AnalyticsRepo, notifier notify.Notifier, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "analytics_handler")),
	}
}

type RateRequest struct {
	ID     string `json:"id"`
	Rating string `json:"rating"`
}

// --- POST /api/analytics ---

func (h *AnalyticsHandler) AppendRecord(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.Append(r.Context(), &rec); err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("error appending analytics entry", zap.String("id", rec.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save analytics entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      rec.ID,
	})
}

// --- GET /api/analytics ---

func (h *AnalyticsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("error reading analytics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read analytics")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// --- POST /api/analytics/rate ---

func (h *AnalyticsHandler) RateRecord(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rating, err := models.ParseRating(req.Rating)
	if req.ID == "" || err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id or rating")
		return
	}

	if err := h.repo.UpdateRating(r.Context(), req.ID, rating); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalid):
			writeError(w, http.StatusBadRequest, "Invalid id or rating")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Entry not found")
		default:
			h.logger.Error("error updating rating", zap.String("id", req.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save rating")
		}
		return
	}

	// Notify in the background; the rating is already stored.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.Publish(ctx, notify.RatingMessage(req.ID, rating)); err != nil {
			h.logger.Warn("error publishing rating notification", zap.String("id", req.ID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
