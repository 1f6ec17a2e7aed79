package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/qmoney/internal/api/handlers"
	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/pkg/config"
	"github.com/wonny/qmoney/pkg/logger"
	"github.com/wonny/qmoney/pkg/redis"
)

type flatQuotes struct{}

func (flatQuotes) Name() string { return "flat" }

func (flatQuotes) GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error) {
	return []contracts.Candle{{Date: from, Open: 10, Close: 10}, {Date: to, Open: 11, Close: 11}}, nil
}

func newTestRouter(t *testing.T, apiCfg config.APIConfig) http.Handler {
	t.Helper()

	rc, err := redis.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	engine := portfolio.NewEngine(flatQuotes{}, portfolio.EngineConfig{}, logger.Nop())
	return NewRouter(Handlers{
		Health:  handlers.NewHealthHandler(nil, rc, "flat"),
		Returns: handlers.NewReturnsHandler(engine, nil, 2, logger.Nop()),
		Reports: handlers.NewReportsHandler(reports.NewStore(rc), nil, logger.Nop()),
	}, apiCfg, logger.Nop())
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t, config.APIConfig{RateLimit: 100, RateBurst: 100})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"POST", "/api/returns", `{"endDate":"2020-01-01","trades":[{"symbol":"A","purchaseDate":"2019-01-01"}]}`, http.StatusOK},
		{"GET", "/api/returns", "", http.StatusMethodNotAllowed},
		{"GET", "/api/reports/latest", "", http.StatusNotFound},
		{"GET", "/api/runs", "", http.StatusServiceUnavailable},
		{"GET", "/api/runs/abc", "", http.StatusNotFound},
		{"GET", "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	router := newTestRouter(t, config.APIConfig{RateLimit: 0.001, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/latest", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)

	// health is outside the limiter
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
