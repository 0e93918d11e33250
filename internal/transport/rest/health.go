package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type HealthHandler struct {
	db    *sql.DB
	redis *redis.Client
}

// NewHealthHandler checks db and, when non-nil, the redis used by the
// distributed rate limiter.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Ping just says the service is up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Check reports readiness of every backing service.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"postgres": check(ctx, func(ctx context.Context) (map[string]any, error) {
			if err := h.db.PingContext(ctx); err != nil {
				return nil, err
			}
			stats := h.db.Stats()
			return map[string]any{"open_connections": stats.OpenConnections, "in_use": stats.InUse}, nil
		}),
	}
	if h.redis != nil {
		components["redis"] = check(ctx, func(ctx context.Context) (map[string]any, error) {
			return nil, h.redis.Ping(ctx).Err()
		})
	}

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: components,
	}
	for _, c := range components {
		if c.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, resp)
}

func check(ctx context.Context, probe func(context.Context) (map[string]any, error)) CheckEntry {
	start := time.Now()
	details, err := probe(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    details,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
