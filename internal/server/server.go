package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/postpata/pata/internal/api/rest"
	v1 "github.com/postpata/pata/internal/api/v1"
	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/config"
	"github.com/postpata/pata/internal/ratelimit"
	"github.com/postpata/pata/internal/server/middleware"
	"github.com/postpata/pata/internal/server/respond"
	"github.com/postpata/pata/internal/validate"
)

// Pinger is a dependency probed by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router needs. Checks and MediaDir are optional.
// MediaURL is the path prefix media files are served under.
type Deps struct {
	Translator *respond.Translator
	Verifier   middleware.TokenVerifier
	Limiter    ratelimit.Limiter
	Accounts   v1.AccountService
	REST       *rest.Handlers
	Checks     map[string]Pinger
	MediaDir   string
	MediaURL   string
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired.
func New(cfg *config.Config, d Deps) *Server {
	router := chi.NewRouter()
	out := d.Translator

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(hlog.NewHandler(log.Logger))
	router.Use(hlog.AccessHandler(accessLog))
	router.Use(middleware.Recover(out))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	router.Use(middleware.RateLimit(d.Limiter, out))

	router.NotFound(out.Handle(func(http.ResponseWriter, *http.Request) error {
		return apperr.New(apperr.NotFound, "Route not found")
	}))
	router.MethodNotAllowed(out.Handle(func(http.ResponseWriter, *http.Request) error {
		return apperr.New(apperr.NotFound, "Route not found")
	}))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}

	v1.UseEnvelopeErrors(out)
	gate := middleware.NewGate(d.Verifier, out)
	pipe := validate.New(out)

	router.Route("/api", func(r chi.Router) {
		// Account routes are described by huma; public and authenticated
		// operations live on separate APIs so the gate wraps only the latter.
		r.Group(func(r chi.Router) {
			authConfig := huma.DefaultConfig("Pata Accounts API", "1.0.0")
			authConfig.Servers = []*huma.Server{{URL: "/api"}}
			v1.RegisterAuthRoutes(humachi.New(r, authConfig), d.Accounts)
		})
		r.Group(func(r chi.Router) {
			r.Use(gate.Authorize(middleware.RequireRoles()))
			userConfig := huma.DefaultConfig("Pata Users API", "1.0.0")
			userConfig.Servers = []*huma.Server{{URL: "/api"}}
			userConfig.OpenAPIPath = ""
			userConfig.DocsPath = ""
			userConfig.SchemasPath = ""
			v1.RegisterUserRoutes(humachi.New(r, userConfig), d.Accounts)
		})

		d.REST.Routes(r, gate, pipe)
	})

	router.Get("/health", out.Handle(health(out, d.Checks)))

	// Images are served locally only when their public URL is a path on
	// this host.
	if d.MediaDir != "" && strings.HasPrefix(d.MediaURL, "/") {
		prefix := strings.TrimRight(d.MediaURL, "/")
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(d.MediaDir)))
		router.Handle(prefix+"/*", files)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	level := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(level).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
