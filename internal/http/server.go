package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-logr/logr"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const shutdownTimeout = 1 * time.Second

// Version is reported by /healthz; set at build time.
var Version = "dev"

type (
	// Handlers registers routes on a router.
	Handlers interface {
		AddHandlers(*mux.Router)
	}

	// ServerConfig is the http server config
	ServerConfig struct {
		EnableRequestLogging bool
		// APIKeys, if non-empty, are required on every route added by
		// Handlers.
		APIKeys []string
		// Gatherer serves /metrics. Defaults to the prometheus default
		// registry.
		Gatherer prometheus.Gatherer

		// Handlers are subject to APIKeys; PublicHandlers are not.
		Handlers       []Handlers
		PublicHandlers []Handlers
	}

	// Server is the spellbook http server
	Server struct {
		logr.Logger
		ServerConfig

		server *http.Server
	}
)

// NewServer constructs the http server
func NewServer(logger logr.Logger, cfg ServerConfig) *Server {
	r := mux.NewRouter()

	// Catch panics and return 500s
	r.Use(gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true)))

	// Redirect paths with a trailing slash to path without, e.g. /cards/ ->
	// /cards.
	r.StrictSlash(true)
	r.UseEncodedPath()

	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, struct {
			Version string `json:"version"`
		}{Version: Version})
	})

	for _, h := range cfg.PublicHandlers {
		h.AddHandlers(r)
	}

	// Subrouter for service routes, subject to authentication
	svcRouter := r.NewRoute().Subrouter()
	if len(cfg.APIKeys) > 0 {
		svcRouter.Use(APIKeyMiddleware(cfg.APIKeys))
	}
	for _, h := range cfg.Handlers {
		h.AddHandlers(svcRouter)
	}

	// Optionally log every request
	if cfg.EnableRequestLogging {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				m := httpsnoop.CaptureMetrics(next, w, r)
				logger.Info("request",
					"duration", fmt.Sprintf("%dms", m.Duration.Milliseconds()),
					"status", m.Code,
					"method", r.Method,
					"path", fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery))
			})
		})
	}

	return &Server{
		Logger:       logger,
		ServerConfig: cfg,
		server:       &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second},
	}
}

// Handler returns the root handler, for use in tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start starts serving http traffic on the given listener and waits until the
// server exits due to error or the context is cancelled.
func (s *Server) Start(ctx context.Context, ln net.Listener) error {
	errch := make(chan error, 1)

	go func() {
		errch <- s.server.Serve(ln)
	}()

	s.Info("started server", "address", ln.Addr().String(), "auth", len(s.APIKeys) > 0)

	// Block until server stops listening or context is cancelled.
	select {
	case err := <-errch:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Info("gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return s.server.Close()
		}
		return nil
	}
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}
