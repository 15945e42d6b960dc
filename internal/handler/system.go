package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"devtrack/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	db          Pinger
	redisClient *redis.Client
	logger      logger.Logger
	startTime   time.Time
	pingTimeout time.Duration
}

// NewSystemHandler builds the health/readiness handler. redisClient may be nil
// when Redis is not configured.
func NewSystemHandler(db Pinger, redisClient *redis.Client, log logger.Logger) *SystemHandler {
	return &SystemHandler{
		db:          db,
		redisClient: redisClient,
		logger:      log,
		startTime:   time.Now(),
		pingTimeout: 2 * time.Second,
	}
}

type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // operational, outage
	LatencyMs int64  `json:"latency_ms"`
}

type ReadinessResponse struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "devtrack"})
}

// Ready handles GET /ready: 200 when every configured dependency answers a ping.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
	defer cancel()

	deps := []DependencyStatus{h.check(ctx, "postgres", h.db.PingContext)}
	if h.redisClient != nil {
		deps = append(deps, h.check(ctx, "redis", func(ctx context.Context) error {
			return h.redisClient.Ping(ctx).Err()
		}))
	}

	resp := ReadinessResponse{
		Status:        "ready",
		Service:       "devtrack",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Dependencies:  deps,
	}
	status := http.StatusOK
	for _, d := range deps {
		if d.Status != "operational" {
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, resp)
}

func (h *SystemHandler) check(ctx context.Context, name string, ping func(context.Context) error) DependencyStatus {
	start := time.Now()
	err := ping(ctx)
	dep := DependencyStatus{
		Name:      name,
		Status:    "operational",
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		dep.Status = "outage"
		h.logger.Error("Dependency ping failed", map[string]interface{}{
			"dependency": name,
			"error":      err.Error(),
		})
	}
	return dep
}

func (h *SystemHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}
