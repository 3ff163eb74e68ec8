package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/web"
	"github.com/go-chi/chi/v5"
)

// NewHTTPServer builds an http.Server from the server section of the service config.
// Errors from net/http itself (TLS handshakes, bad requests) are routed to logger.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// NewChiRouter creates a chi router with request id, request logging and panic recovery.
// Unknown routes and methods answer with the same JSON error envelope as the handlers.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		web.RespondError(w, logger, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		web.RespondError(w, logger, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})
	return mux
}
