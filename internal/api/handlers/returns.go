package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/pkg/logger"
)

const (
	maxRequestBody = 1 << 20
	// MaxWorkers caps the per-request worker count
	MaxWorkers = 64
)

// ReturnsHandler computes annualized returns on request
// ⭐ SSOT: 수익률 계산 API 핸들러는 이 구조체에서만
type ReturnsHandler struct {
	engine         *portfolio.Engine
	publisher      *reports.Publisher
	defaultWorkers int
	logger         *logger.Logger
}

// NewReturnsHandler creates a new returns handler; publisher may be nil
func NewReturnsHandler(engine *portfolio.Engine, publisher *reports.Publisher, defaultWorkers int, log *logger.Logger) *ReturnsHandler {
	return &ReturnsHandler{
		engine:         engine,
		publisher:      publisher,
		defaultWorkers: defaultWorkers,
		logger:         log,
	}
}

// ComputeRequest is the body of POST /api/returns
type ComputeRequest struct {
	Trades  []contracts.Trade `json:"trades"`
	EndDate string            `json:"endDate"`
	Workers int               `json:"workers,omitempty"`
	Save    bool              `json:"save,omitempty"`
}

// ComputeResponse is the report plus the stored run id when saved
type ComputeResponse struct {
	*contracts.Report
	RunID int64 `json:"runId,omitempty"`
}

// Compute runs a batch for the posted trades
// POST /api/returns
func (h *ReturnsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ComputeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	endDate, workers, err := h.validate(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.engine.Run(ctx, req.Trades, endDate, workers)
	if errors.Is(err, portfolio.ErrBatchCancelled) {
		respondError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute returns")
		respondError(w, http.StatusInternalServerError, "Failed to compute returns")
		return
	}

	resp := ComputeResponse{Report: report}
	if req.Save && h.publisher != nil {
		runID, err := h.publisher.Publish(ctx, report)
		if err != nil {
			h.logger.WithError(err).Error("Failed to publish report")
			respondError(w, http.StatusInternalServerError, "Failed to save report")
			return
		}
		resp.RunID = runID
	}

	respondJSON(w, http.StatusOK, resp)
}

// validate returns the parsed end date and the worker count to use
func (h *ReturnsHandler) validate(req *ComputeRequest) (time.Time, int, error) {
	if req.EndDate == "" {
		return time.Time{}, 0, errors.New("endDate is required")
	}
	endDate, err := contracts.ParseDate(req.EndDate)
	if err != nil {
		return time.Time{}, 0, err
	}

	for i, trade := range req.Trades {
		if err := trade.Validate(); err != nil {
			return time.Time{}, 0, fmt.Errorf("trade #%d: %w", i, err)
		}
	}

	workers := req.Workers
	switch {
	case workers == 0:
		workers = h.defaultWorkers
	case workers < 0 || workers > MaxWorkers:
		return time.Time{}, 0, fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	}

	return endDate, workers, nil
}
