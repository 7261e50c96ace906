package handlers

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler answers liveness and readiness probes. Liveness never
// touches dependencies; readiness pings each backing store.
type HealthHandler struct {
	probes []probe
}

type probe struct {
	name  string
	check func(ctx context.Context) error
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{}
	if db != nil {
		h.probes = append(h.probes, probe{"database", db.Ping})
	}
	if rdb != nil {
		h.probes = append(h.probes, probe{"redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return h
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.probes))
	ready := true
	for _, p := range h.probes {
		if err := p.check(r.Context()); err != nil {
			checks[p.name] = "unhealthy: " + err.Error()
			ready = false
			continue
		}
		checks[p.name] = "ok"
	}

	status, label := http.StatusOK, "ok"
	if !ready {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}
	writeJSON(w, status, map[string]interface{}{"status": label, "checks": checks})
}
