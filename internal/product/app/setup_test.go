package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/productstore/internal/product/config"
	pkgconfig "github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type product struct {
	PID   int64   `json:"pid"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, deps *Dependencies) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(SetupHttpHandler(deps))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(bytes.TrimSpace(raw))
}

func readProduct(t *testing.T, srv *httptest.Server, pid string) product {
	t.Helper()
	code, body := do(t, srv, http.MethodGet, "/products/"+pid, "")
	require.Equal(t, http.StatusOK, code, body)
	var p product
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestProductLifecycle(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))

	// when / then
	code, body := do(t, srv, http.MethodPost, "/products", `{"pid":1,"name":"Widget","price":9.99}`)
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "1", body)

	assert.Equal(t, product{PID: 1, Name: "Widget", Price: 9.99}, readProduct(t, srv, "1"))

	code, body = do(t, srv, http.MethodPatch, "/products/1", `{"price":12.5}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pid":1,"name":"Widget","price":12.5}`, body)
	assert.Equal(t, product{PID: 1, Name: "Widget", Price: 12.5}, readProduct(t, srv, "1"))

	code, body = do(t, srv, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)

	code, body = do(t, srv, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Product with id 1 doesn't exist."}`, body)
}

func TestCreate_ConflictLeavesRecordUnchanged(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))
	code, _ := do(t, srv, http.MethodPost, "/products", `{"pid":7,"name":"Original","price":1}`)
	require.Equal(t, http.StatusAccepted, code)

	// when
	code, body := do(t, srv, http.MethodPost, "/products", `{"pid":7,"name":"Impostor","price":2}`)

	// then
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `{"error":"Product with id 7 already exists."}`, body)
	assert.Equal(t, product{PID: 7, Name: "Original", Price: 1}, readProduct(t, srv, "7"))
}

func TestMissingProduct(t *testing.T) {
	testCases := []struct {
		method string
		body   string
	}{
		{method: http.MethodGet},
		{method: http.MethodPatch, body: `{"name":"Nope"}`},
		{method: http.MethodDelete},
	}

	for _, tc := range testCases {
		t.Run(tc.method, func(t *testing.T) {
			// given
			srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))

			// when
			code, body := do(t, srv, tc.method, "/products/42", tc.body)

			// then
			assert.Equal(t, http.StatusNotFound, code)
			assert.JSONEq(t, `{"error":"Product with id 42 doesn't exist."}`, body)
			code, _ = do(t, srv, http.MethodGet, "/products/42", "")
			assert.Equal(t, http.StatusNotFound, code, "patch must never create")
		})
	}
}

func TestUpdate_Upsert(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))

	// when: absent pid is inserted
	code, body := do(t, srv, http.MethodPut, "/products/3", `{"name":"Gadget","price":4}`)

	// then
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pid":3,"name":"Gadget","price":4}`, body)
	assert.Equal(t, product{PID: 3, Name: "Gadget", Price: 4}, readProduct(t, srv, "3"))

	// when: existing pid is replaced and a body pid cannot move it
	code, _ = do(t, srv, http.MethodPut, "/products/3", `{"pid":99,"name":"Gadget v2","price":5}`)

	// then
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, product{PID: 3, Name: "Gadget v2", Price: 5}, readProduct(t, srv, "3"))
	code, _ = do(t, srv, http.MethodGet, "/products/99", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPatch_OnlySuppliedFields(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))
	code, _ := do(t, srv, http.MethodPost, "/products", `{"pid":5,"name":"Widget","price":9.99}`)
	require.Equal(t, http.StatusAccepted, code)

	// when
	code, _ = do(t, srv, http.MethodPatch, "/products/5", `{"name":"Gizmo"}`)

	// then
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, product{PID: 5, Name: "Gizmo", Price: 9.99}, readProduct(t, srv, "5"))

	// when: explicit null is rejected and nothing changes
	code, body := do(t, srv, http.MethodPatch, "/products/5", `{"price":null}`)

	// then
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"validation_errors":{"Price":"failed on rule: notnull"}}`, body)
	assert.Equal(t, product{PID: 5, Name: "Gizmo", Price: 9.99}, readProduct(t, srv, "5"))
}

func TestValuesAreNotConstrained(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))
	longName := strings.Repeat("n", 101)

	// when
	code, body := do(t, srv, http.MethodPost, "/products", `{"pid":10,"name":"`+longName+`","price":-1}`)

	// then
	require.Equal(t, http.StatusAccepted, code, body)
	assert.Equal(t, product{PID: 10, Name: longName, Price: -1}, readProduct(t, srv, "10"))

	// when
	code, body = do(t, srv, http.MethodPut, "/products/11", `{"name":"Rebate","price":-2.5}`)

	// then
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, product{PID: 11, Name: "Rebate", Price: -2.5}, readProduct(t, srv, "11"))
}

func TestInvalidPID(t *testing.T) {
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))

	code, body := do(t, srv, http.MethodGet, "/products/abc", "")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"error":"Invalid pid: abc"}`, body)
}

func TestRequestIDEchoed(t *testing.T) {
	// given
	srv := newTestServer(t, SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{}))
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-123")

	// when
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// then
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
}

func TestRateLimit(t *testing.T) {
	// given
	deps := SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 2})
	srv := newTestServer(t, deps)

	// when
	first, _ := do(t, srv, http.MethodGet, "/products/1", "")
	second, _ := do(t, srv, http.MethodGet, "/products/1", "")
	third, body := do(t, srv, http.MethodGet, "/products/1", "")

	// then
	assert.Equal(t, http.StatusNotFound, first)
	assert.Equal(t, http.StatusNotFound, second)
	assert.Equal(t, http.StatusTooManyRequests, third)
	assert.JSONEq(t, `{"error":"Too Many Requests"}`, body)
}

func TestMetricsEndpoint(t *testing.T) {
	// given
	previous := otel.GetMeterProvider()
	mp, metricsHandler, err := telemetry.NewMeterProvider("product")
	require.NoError(t, err)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	srv := newTestServer(t, SetupDependencies(discardLogger(), metricsHandler, pkgconfig.RateLimitConfig{}))
	code, _ := do(t, srv, http.MethodPost, "/products", `{"pid":1,"name":"Widget","price":9.99}`)
	require.Equal(t, http.StatusAccepted, code)
	require.NotNil(t, mp)

	// when
	code, body := do(t, srv, http.MethodGet, "/metrics", "")

	// then
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "products_created")
	assert.Contains(t, body, "products_stored")
}

func TestSetupGrpcServer(t *testing.T) {
	deps := SetupDependencies(discardLogger(), nil, pkgconfig.RateLimitConfig{})

	grpcServer, healthServer := SetupGrpcServer(deps, true)
	t.Cleanup(grpcServer.Stop)

	require.NotNil(t, healthServer)
	info := grpcServer.GetServiceInfo()
	assert.Contains(t, info, grpc_health_v1.Health_ServiceDesc.ServiceName)
	assert.Contains(t, info, "grpc.reflection.v1.ServerReflection")
}

func TestSetupHttpServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTPServer.Port = 8081
	cfg.HTTPServer.MaxHeaderBytes = 1 << 20

	srv := SetupHttpServer(SetupDependencies(discardLogger(), nil, cfg.RateLimit), cfg)

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
}
