package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devtrack/internal/device"
	"devtrack/internal/device/devicetest"
	"devtrack/internal/handler"
	"devtrack/pkg/config"
	"devtrack/pkg/logger"
	"devtrack/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func newTestRouter(t *testing.T, repo *devicetest.MemoryRepository) http.Handler {
	t.Helper()
	log := logger.NewNop()
	docs, err := handler.NewDocsHandler()
	require.NoError(t, err)

	return NewRouter(Dependencies{
		Devices: handler.NewDeviceHandler(device.NewService(repo, log), validator.New(), log),
		Docs:    docs,
		System:  handler.NewSystemHandler(fakePinger{}, nil, log),
		Logger:  log,
	})
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_RegisterTakeScenario(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	w := do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Laptop-1", "serial_number": "SN001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"device_name":"Laptop-1","serial_number":"SN001"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/take", map[string]string{"user_name": "alice", "serial_number": "SN001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"device_name":"Laptop-1","serial_number":"SN001","user_name":"alice"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/take", map[string]string{"user_name": "bob", "serial_number": "SN001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Device already taken"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/devices/SN001", nil)
	assert.JSONEq(t, `{"device_name":"Laptop-1","user_name":"alice"}`, w.Body.String())
}

func TestRouter_DuplicateRegistrationKeepsFirstRow(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Laptop-1", "serial_number": "SN001"})
	w := do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Laptop-2", "serial_number": "SN001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Device already registered"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/devices", nil)
	assert.JSONEq(t, `[{"device_name":"Laptop-1","serial_number":"SN001"}]`, w.Body.String())
}

func TestRouter_FreshDeviceHasNullUser(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Phone", "serial_number": "SN002"})
	w := do(t, h, http.MethodGet, "/devices/SN002", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"device_name":"Phone","user_name":null}`, w.Body.String())
}

func TestRouter_ReleaseRoundTrip(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())
	do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Tablet", "serial_number": "SN003"})

	w := do(t, h, http.MethodDelete, "/release/SN003", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Device is not assigned to any user"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/take", map[string]string{"user_name": "alice", "serial_number": "SN003"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/release/SN003", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Device released successfully","device":{"device_name":"Tablet","serial_number":"SN003","user_name":null}}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/take", map[string]string{"user_name": "bob", "serial_number": "SN003"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"device_name":"Tablet","serial_number":"SN003","user_name":"bob"}`, w.Body.String())
}

func TestRouter_DeleteThenGet(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())
	do(t, h, http.MethodPost, "/register", map[string]string{"device_name": "Camera", "serial_number": "SN004"})

	w := do(t, h, http.MethodDelete, "/devices/SN004", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Device deleted successfully"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/devices/SN004", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Device not found"}`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/devices/SN004", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_NotFoundCases(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	w := do(t, h, http.MethodGet, "/devices/SN999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Device not found"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/take", map[string]string{"user_name": "alice", "serial_number": "SN999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/release/SN999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_FallbackIsPlainText404(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/unknown"},
		{http.MethodPut, "/devices/SN001"},
		{http.MethodGet, "/take"},
		{http.MethodGet, "/devices/"},
	} {
		w := do(t, h, tc.method, tc.target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.target)
		assert.Equal(t, "Not found", strings.TrimSpace(w.Body.String()))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestRouter_BadURIEncoding(t *testing.T) {
	repo := devicetest.NewMemoryRepository()
	h := newTestRouter(t, repo)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/devices?filter=%zz"},
		{http.MethodGet, "/devices?x=%C0"},
		{http.MethodGet, "/devices/%C0"},
		{http.MethodDelete, "/devices/%C0"},
		{http.MethodDelete, "/release/%FF%FE"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"message":"Bad URI Encoding"}`, w.Body.String())
		})
	}

	// The store is never consulted, so a failing store cannot turn these into 500s.
	repo.Fail = errors.New("invalid byte sequence for encoding \"UTF8\"")
	w := do(t, h, http.MethodGet, "/devices/%C0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_StoreFailureIsGeneric500(t *testing.T) {
	repo := devicetest.NewMemoryRepository()
	repo.Fail = errors.New("pq: connection refused")
	h := newTestRouter(t, repo)

	for _, tc := range []struct {
		method, target string
		body           interface{}
	}{
		{http.MethodGet, "/devices", nil},
		{http.MethodGet, "/devices/SN001", nil},
		{http.MethodDelete, "/devices/SN001", nil},
		{http.MethodDelete, "/release/SN001", nil},
		{http.MethodPost, "/register", map[string]string{"device_name": "x", "serial_number": "SN001"}},
		{http.MethodPost, "/take", map[string]string{"user_name": "x", "serial_number": "SN001"}},
	} {
		w := do(t, h, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, tc.method+" "+tc.target)
		assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())
	}
}

func TestRouter_EmptyListIsArray(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	w := do(t, h, http.MethodGet, "/devices", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_DocsAndHealth(t *testing.T) {
	h := newTestRouter(t, devicetest.NewMemoryRepository())

	w := do(t, h, http.MethodGet, "/docs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "unpkg.com")

	w = do(t, h, http.MethodGet, "/docs/openapi.json", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/release/{serial_number}"`)

	w = do(t, h, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"healthy","service":"devtrack"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadyReportsDatabaseOutage(t *testing.T) {
	log := logger.NewNop()
	docs, err := handler.NewDocsHandler()
	require.NoError(t, err)
	h := NewRouter(Dependencies{
		Devices: handler.NewDeviceHandler(device.NewService(devicetest.NewMemoryRepository(), log), validator.New(), log),
		Docs:    docs,
		System:  handler.NewSystemHandler(fakePinger{err: errors.New("down")}, nil, log),
		Logger:  log,
	})

	w := do(t, h, http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"outage"`)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := newTestRouter(t, devicetest.NewMemoryRepository())
	srv := New(config.ServerConfig{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}, h, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/devices")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
