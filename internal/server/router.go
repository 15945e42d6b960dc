// Package server wires handlers and middleware into the HTTP interface.
package server

import (
	"net/http"

	"devtrack/internal/handler"
	"devtrack/internal/middleware"
	"devtrack/pkg/logger"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the router needs. RateLimiter and
// Idempotency are optional and left nil when Redis is not configured.
type Dependencies struct {
	Devices     *handler.DeviceHandler
	Docs        *handler.DocsHandler
	System      *handler.SystemHandler
	Logger      logger.Logger
	RateLimiter *middleware.RateLimiter
	Idempotency *middleware.IdempotencyMiddleware
	CORSOrigins []string
}

// NewRouter returns the full handler chain: global middleware around the
// gorilla/mux router.
func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/register", deps.Devices.Register).Methods(http.MethodPost)
	r.HandleFunc("/devices", deps.Devices.List).Methods(http.MethodGet)
	r.HandleFunc("/devices/{serial_number}", deps.Devices.Get).Methods(http.MethodGet)
	r.HandleFunc("/devices/{serial_number}", deps.Devices.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/take", deps.Devices.Take).Methods(http.MethodPost)
	r.HandleFunc("/release/{serial_number}", deps.Devices.Release).Methods(http.MethodDelete)

	r.HandleFunc("/docs", deps.Docs.UI).Methods(http.MethodGet)
	r.HandleFunc("/docs/swagger-init.js", deps.Docs.InitScript).Methods(http.MethodGet)
	r.HandleFunc("/docs/openapi.json", deps.Docs.JSON).Methods(http.MethodGet)
	r.HandleFunc("/docs/openapi.yaml", deps.Docs.YAML).Methods(http.MethodGet)

	if deps.System != nil {
		r.HandleFunc("/health", deps.System.Health).Methods(http.MethodGet)
		r.HandleFunc("/ready", deps.System.Ready).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	// mux only runs r.Use middleware on matched routes, so the global chain
	// wraps the router itself and also covers the 404 fallback.
	var h http.Handler = r
	if deps.Idempotency != nil {
		h = deps.Idempotency.Replay(h)
	}
	if deps.RateLimiter != nil {
		h = deps.RateLimiter.Limit(h)
	}
	h = middleware.CORS(deps.CORSOrigins)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.URIEncoding(h)
	h = middleware.Recovery(deps.Logger)(h)
	h = middleware.NewLoggingMiddleware(deps.Logger).Log(h)
	h = middleware.CorrelationID(h)
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not found", http.StatusNotFound)
}
