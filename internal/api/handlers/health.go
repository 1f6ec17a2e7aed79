package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/qmoney/pkg/database"
	"github.com/wonny/qmoney/pkg/redis"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports service and dependency health
type HealthHandler struct {
	db       *database.DB
	redis    *redis.Client
	provider string
}

// NewHealthHandler creates a new health handler; db may be nil
func NewHealthHandler(db *database.DB, rc *redis.Client, provider string) *HealthHandler {
	return &HealthHandler{db: db, redis: rc, provider: provider}
}

// Check returns 200 when every configured dependency answers, 503 otherwise
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]interface{}{
		"status":   "ok",
		"service":  "qmoney-api",
		"provider": h.provider,
	}

	if h.db != nil {
		dbStatus := h.db.HealthCheck(ctx)
		body["database"] = dbStatus
		if !dbStatus.Healthy {
			status = http.StatusServiceUnavailable
		}
	}

	if h.redis != nil && h.redis.Enabled() {
		if err := h.redis.Ping(ctx); err != nil {
			body["redis"] = map[string]interface{}{"healthy": false, "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			body["redis"] = map[string]interface{}{"healthy": true}
		}
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	respondJSON(w, status, body)
}
