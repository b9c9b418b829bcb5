package infra

import (
	"context"
	"net/http"
	"time"
)

// Render requests hold the connection open while the upstream engine is
// polled, so write timeouts must cover a full poll budget while header
// reads stay tight.
const readHeaderTimeout = 5 * time.Second

// HTTPServer wraps http.Server with startup and graceful shutdown helpers.
type HTTPServer struct {
	server *http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Start blocks serving requests until Shutdown is called or the listener fails.
func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

// Addr returns the address the server listens on.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
