// Package middleware provides shared HTTP middleware utilities.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	dterrors "devtrack/pkg/errors"
	"devtrack/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const idempotencyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays the stored response of a POST or DELETE that
// carried the same Idempotency-Key. Requests without the header are untouched.
type IdempotencyMiddleware struct {
	cache    *redis.Client
	ttl      time.Duration
	logger   logger.Logger
	pollWait time.Duration
	polls    int
}

// NewIdempotencyMiddleware constructs an IdempotencyMiddleware with a TTL.
func NewIdempotencyMiddleware(cache *redis.Client, ttl time.Duration, log logger.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		cache:    cache,
		ttl:      ttl,
		logger:   log,
		pollWait: 100 * time.Millisecond,
		polls:    50,
	}
}

// Replay wraps unsafe methods with lock-then-cache semantics per key.
func (m *IdempotencyMiddleware) Replay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyHeader)
		if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodDelete) {
			next.ServeHTTP(w, r)
			return
		}

		dataKey := fmt.Sprintf("idempotency:data:%s:%s:%s", r.Method, r.URL.Path, key)
		lockKey := fmt.Sprintf("idempotency:lock:%s:%s:%s", r.Method, r.URL.Path, key)

		// Fast path: cached response exists
		if m.replayCached(w, r, dataKey) {
			return
		}

		ok, err := m.cache.SetNX(r.Context(), lockKey, RequestIDFromContext(r.Context()), m.ttl).Result()
		if err != nil {
			m.logger.Warn("Idempotency store unavailable", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
			next.ServeHTTP(w, r)
			return
		}

		if !ok {
			// Another request with this key is in flight; wait for its response.
			for i := 0; i < m.polls; i++ {
				select {
				case <-r.Context().Done():
					return
				case <-time.After(m.pollWait):
				}
				if m.replayCached(w, r, dataKey) {
					return
				}
			}
			jsonError(w, http.StatusConflict, dterrors.ErrDuplicateRequest.Error())
			return
		}
		defer m.cache.Del(context.WithoutCancel(r.Context()), lockKey)

		cw := newCaptureWriter(w, 1<<20) // 1MB cap
		next.ServeHTTP(cw, r)

		if err := m.cacheResponse(r, dataKey, cw); err != nil {
			m.logger.Warn("Failed to store idempotent response", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
		}
	})
}

type capturedResponse struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers"`
}

func (m *IdempotencyMiddleware) replayCached(w http.ResponseWriter, r *http.Request, dataKey string) bool {
	payload, err := m.cache.Get(r.Context(), dataKey).Bytes()
	if err != nil {
		return false
	}

	var cr capturedResponse
	if err := json.Unmarshal(payload, &cr); err != nil {
		return false
	}

	// The correlation id belongs to the current request, not the stored one.
	for k, v := range cr.Headers {
		if http.CanonicalHeaderKey(k) == requestIDHeader {
			continue
		}
		w.Header().Set(k, v)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cr.Status)
	_, _ = w.Write(cr.Body)
	return true
}

func (m *IdempotencyMiddleware) cacheResponse(r *http.Request, dataKey string, cw *captureWriter) error {
	// 5xx and truncated responses are not stored.
	if cw.status == 0 || cw.status >= http.StatusInternalServerError || cw.truncated {
		return nil
	}

	payload, err := json.Marshal(capturedResponse{
		Status:  cw.status,
		Body:    cw.buf,
		Headers: cw.headers,
	})
	if err != nil {
		return err
	}

	return m.cache.Set(context.WithoutCancel(r.Context()), dataKey, payload, m.ttl).Err()
}

type captureWriter struct {
	http.ResponseWriter
	buf       []byte
	limit     int
	status    int
	truncated bool
	headers   map[string]string
}

func newCaptureWriter(w http.ResponseWriter, limit int) *captureWriter {
	return &captureWriter{
		ResponseWriter: w,
		buf:            make([]byte, 0, 1024),
		limit:          limit,
		headers:        make(map[string]string),
	}
}

func (w *captureWriter) WriteHeader(statusCode int) {
	if w.status != 0 {
		return
	}
	w.status = statusCode
	for k, v := range w.ResponseWriter.Header() {
		if len(v) > 0 {
			w.headers[k] = v[0]
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	space := w.limit - len(w.buf)
	if len(p) > space {
		w.truncated = true
		if space > 0 {
			w.buf = append(w.buf, p[:space]...)
		}
	} else {
		w.buf = append(w.buf, p...)
	}
	return w.ResponseWriter.Write(p)
}
