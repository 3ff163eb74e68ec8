package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewHTTPServer(t *testing.T) {
	// given
	var cfg config.HTTPConfig
	cfg.Port = 8080
	cfg.MaxHeaderBytes = 1 << 20
	cfg.Timeout.Read = 5 * time.Second
	cfg.Timeout.Write = 10 * time.Second
	cfg.Timeout.Idle = 60 * time.Second
	cfg.Timeout.ReadHeader = 2 * time.Second

	// when
	srv := NewHTTPServer(cfg, http.NotFoundHandler(), discardLogger)

	// then
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	assert.NotNil(t, srv.ErrorLog)
}

func TestNewChiRouter(t *testing.T) {
	// given
	mux := NewChiRouter(discardLogger)
	mux.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	mux.Get("/ok", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	testCases := []struct {
		name         string
		method       string
		path         string
		expectedCode int
		expectedBody string
	}{
		{name: "ok", method: http.MethodGet, path: "/ok", expectedCode: http.StatusOK},
		{name: "panic is recovered", method: http.MethodGet, path: "/panic", expectedCode: http.StatusInternalServerError},
		{name: "unknown route", method: http.MethodGet, path: "/missing", expectedCode: http.StatusNotFound, expectedBody: `{"error":"Not Found"}`},
		{name: "unknown method", method: http.MethodPost, path: "/ok", expectedCode: http.StatusMethodNotAllowed, expectedBody: `{"error":"Method Not Allowed"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
