package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/qmoney/internal/api/handlers"
	"github.com/wonny/qmoney/pkg/config"
	"github.com/wonny/qmoney/pkg/logger"
)

// Handlers groups the endpoint handlers wired into the router
type Handlers struct {
	Health  *handlers.HealthHandler
	Returns *handlers.ReturnsHandler
	Reports *handlers.ReportsHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, cfg config.APIConfig, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check (not rate limited)
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst), log))

	// Returns
	api.HandleFunc("/returns", h.Returns.Compute).Methods("POST")

	// Stored reports
	api.HandleFunc("/reports/latest", h.Reports.GetLatest).Methods("GET")
	api.HandleFunc("/runs", h.Reports.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id:[0-9]+}", h.Reports.GetRun).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}
