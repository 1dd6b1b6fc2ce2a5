package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus reports the service health with one entry per check
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker verifies the service can reach its database and that the
// subscription store is queryable.
type HealthChecker struct {
	dbPool *pgxpool.Pool
}

// NewHealthChecker creates a new HealthChecker
func NewHealthChecker(dbPool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{
		dbPool: dbPool,
	}
}

// Check runs every health check and returns the combined status. The
// subscriptions probe verifies the schema is in place, not just that the
// database answers pings; an empty table is healthy.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overallStatus := "healthy"

	if h.dbPool == nil {
		checks["database"] = "not configured"
		return HealthStatus{Status: overallStatus, Timestamp: time.Now().UTC(), Checks: checks}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.dbPool.Ping(dbCtx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"

		var one int
		err := h.dbPool.QueryRow(dbCtx, `SELECT 1 FROM subscriptions LIMIT 1`).Scan(&one)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			checks["subscriptions"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["subscriptions"] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}
