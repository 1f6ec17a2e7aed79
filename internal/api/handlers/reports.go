package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/history"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/pkg/logger"
)

// RunHistory is the read side of history.Repository
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]history.RunSummary, error)
	GetRun(ctx context.Context, id int64) (*contracts.Report, error)
}

// ReportsHandler serves stored reports
type ReportsHandler struct {
	store   *reports.Store
	history RunHistory
	logger  *logger.Logger
}

// NewReportsHandler creates a new reports handler; history may be nil
func NewReportsHandler(store *reports.Store, runs RunHistory, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		store:   store,
		history: runs,
		logger:  log,
	}
}

// GetLatest returns the latest report snapshot
// GET /api/reports/latest
func (h *ReportsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	report, found, err := h.store.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest report")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "no report available")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ListRuns returns recent run summaries
// GET /api/runs?limit=20
func (h *ReportsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	limit := history.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = l
	}

	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one stored run
// GET /api/runs/{id}
func (h *ReportsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	report, err := h.history.GetRun(r.Context(), id)
	if errors.Is(err, history.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
