// Package api exposes the HTTP surface of the tinyurl service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NehaKotwal/tinyurl/internal/model"
	"github.com/NehaKotwal/tinyurl/internal/service"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Handler serves the link management API and the redirect route.
type Handler struct {
	svc     *service.URLService
	logger  *zap.Logger
	started time.Time
}

// NewHandler creates a Handler around the given service.
func NewHandler(svc *service.URLService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:     svc,
		logger:  logger,
		started: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeServiceError maps service sentinels onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Short URL not found")
	case errors.Is(err, service.ErrExpired):
		writeError(w, http.StatusGone, "Short URL has expired")
	case errors.Is(err, service.ErrAliasTaken):
		writeError(w, http.StatusConflict, "Custom alias already in use")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Shorten handles POST /api/shorten.
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp, err := h.svc.Shorten(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Redirect handles GET /{shortCode} with a 307 to the original URL.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortCode")

	target, err := h.svc.ResolveRedirect(code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// List handles GET /api/urls.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := listLimit(r)
	offset := queryInt(r, "offset", 0)
	userID := r.URL.Query().Get("user_id")

	urls, err := h.svc.List(limit, offset, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

// Stats handles GET /api/urls/{shortCode}/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(chi.URLParam(r, "shortCode"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Update handles PUT /api/urls/{shortCode}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp, err := h.svc.Update(chi.URLParam(r, "shortCode"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/urls/{shortCode}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Delete(chi.URLParam(r, "shortCode"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Short URL not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/stats.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.SummaryStats(r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.started) / time.Second),
	})
}

// listLimit clamps the page size into [1, 1000].
func listLimit(r *http.Request) int {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
