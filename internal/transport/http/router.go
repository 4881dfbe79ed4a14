// Package httptransport serves the GraphQL API over plain HTTP for local and
// container deployments.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"volunteermatch/internal/platform/logger"
	"volunteermatch/internal/platform/middleware"
)

// RouterOptions controls router construction. Schema is required.
type RouterOptions struct {
	Schema *graphql.Schema

	// Metrics serves /metrics when set.
	Metrics http.Handler

	Logger *slog.Logger

	// RequestTimeout bounds each request; zero disables the timeout.
	RequestTimeout time.Duration

	// CORSOptions replaces DefaultCORSOptions when set.
	CORSOptions *cors.Options
}

// DefaultCORSOptions allows any origin. The API is called from a static
// frontend hosted on a different origin and carries no cookies.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// NewRouter mounts /graphql, /health and optionally /metrics.
func NewRouter(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	r.Get("/health", handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))
		}
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Use(ClaimsRequest)
		r.Method(http.MethodPost, "/graphql", &relay.Handler{Schema: opts.Schema})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
