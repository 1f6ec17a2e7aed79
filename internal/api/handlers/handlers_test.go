package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/history"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/pkg/logger"
	"github.com/wonny/qmoney/pkg/redis"
)

// stubQuotes returns a two-candle series 100 -> sell for every symbol but XYZ
type stubQuotes struct {
	sell  map[string]float64
	delay time.Duration
}

func (s *stubQuotes) Name() string { return "stub" }

func (s *stubQuotes) GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	sell, ok := s.sell[symbol]
	if !ok {
		return nil, fmt.Errorf("unexpected status code: 404")
	}
	return []contracts.Candle{
		{Date: from, Open: 100, Close: 100},
		{Date: to, Open: sell, Close: sell},
	}, nil
}

func newReturnsHandler(q *stubQuotes, cfg portfolio.EngineConfig) *ReturnsHandler {
	engine := portfolio.NewEngine(q, cfg, logger.Nop())
	return NewReturnsHandler(engine, reports.NewPublisher(nil, nil, logger.Nop()), 2, logger.Nop())
}

func postReturns(h *ReturnsHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/returns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Compute(rec, req)
	return rec
}

func TestReturnsHandler_Compute(t *testing.T) {
	h := newReturnsHandler(&stubQuotes{sell: map[string]float64{"AAPL": 130, "MSFT": 150}}, portfolio.EngineConfig{})

	rec := postReturns(h, `{
		"endDate": "2020-01-01",
		"trades": [
			{"symbol": "AAPL", "purchaseDate": "2019-01-01"},
			{"symbol": "XYZ", "purchaseDate": "2019-01-01"},
			{"symbol": "MSFT", "purchaseDate": "2019-01-01"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Provider string                       `json:"provider"`
		Results  []contracts.AnnualizedReturn `json:"results"`
		Failures []contracts.TaskFailure      `json:"failures"`
		RunID    int64                        `json:"runId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "stub", resp.Provider)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "MSFT", resp.Results[0].Symbol)
	assert.Equal(t, "AAPL", resp.Results[1].Symbol)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, contracts.FailureServiceError, resp.Failures[0].Kind)
	assert.Zero(t, resp.RunID)
}

func TestReturnsHandler_Compute_BadRequest(t *testing.T) {
	h := newReturnsHandler(&stubQuotes{}, portfolio.EngineConfig{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing end date", `{"trades": []}`},
		{"bad end date", `{"endDate": "01/01/2020", "trades": []}`},
		{"trade without symbol", `{"endDate": "2020-01-01", "trades": [{"purchaseDate": "2019-01-01"}]}`},
		{"negative workers", `{"endDate": "2020-01-01", "trades": [], "workers": -1}`},
		{"too many workers", `{"endDate": "2020-01-01", "trades": [], "workers": 1000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postReturns(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestReturnsHandler_Compute_Timeout(t *testing.T) {
	q := &stubQuotes{sell: map[string]float64{"AAPL": 130}, delay: 5 * time.Second}
	h := newReturnsHandler(q, portfolio.EngineConfig{BatchTimeout: 30 * time.Millisecond, ShutdownGrace: time.Second})

	rec := postReturns(h, `{"endDate": "2020-01-01", "trades": [{"symbol": "AAPL", "purchaseDate": "2019-01-01"}]}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.NotContains(t, rec.Body.String(), "results")
}

func TestReportsHandler_GetLatest(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	report := &contracts.Report{
		EndDate:  contracts.Date(2020, 1, 1),
		Provider: "tiingo",
		Results:  []contracts.AnnualizedReturn{{Symbol: "MSFT", AnnualizedReturn: 0.5, TotalReturn: 0.5}},
		Failures: []contracts.TaskFailure{},
	}
	data, _ := json.Marshal(report)
	mock.ExpectGet("qmoney:report:latest").SetVal(string(data))
	mock.ExpectGet("qmoney:report:latest").RedisNil()

	h := NewReportsHandler(reports.NewStore(redis.Wrap(rdb)), nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"MSFT"`)

	rec = httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeHistory struct {
	runs    []history.RunSummary
	reports map[int64]*contracts.Report
	limit   int
}

func (f *fakeHistory) ListRuns(ctx context.Context, limit int) ([]history.RunSummary, error) {
	f.limit = limit
	return f.runs, nil
}

func (f *fakeHistory) GetRun(ctx context.Context, id int64) (*contracts.Report, error) {
	if r, ok := f.reports[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %d", history.ErrRunNotFound, id)
}

func TestReportsHandler_ListRuns(t *testing.T) {
	fh := &fakeHistory{runs: []history.RunSummary{{ID: 7, Provider: "tiingo"}}}
	h := NewReportsHandler(nil, fh, logger.Nop())

	rec := httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, fh.limit)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportsHandler_NoHistory(t *testing.T) {
	h := NewReportsHandler(nil, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReportsHandler_GetRun(t *testing.T) {
	fh := &fakeHistory{reports: map[int64]*contracts.Report{3: {Provider: "alphavantage"}}}
	h := NewReportsHandler(nil, fh, logger.Nop())

	tests := []struct {
		id   string
		want int
	}{
		{"3", http.StatusOK},
		{"4", http.StatusNotFound},
		{"x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/runs/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			h.GetRun(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthHandler_Check(t *testing.T) {
	h := NewHealthHandler(nil, nil, "tiingo")

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"provider":"tiingo"`)
}
