package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/gameops/remoteconfig/internal/logging"
	"github.com/gameops/remoteconfig/internal/store"
	"github.com/gameops/remoteconfig/internal/telemetry"
)

// Server wires the store into the HTTP surface: the public fetch endpoint and
// the admin CRUD endpoints for configurations and rules.
type Server struct {
	store             store.Store
	env               string
	adminAPIKey       string
	rateLimitPerIP    int
	allowDebugInstant bool
	log               zerolog.Logger
}

// Options configures a Server beyond its required dependencies.
type Options struct {
	Env               string
	AdminAPIKey       string
	RateLimitPerIP    int
	AllowDebugInstant bool
	Logger            zerolog.Logger
}

// NewServer creates an API server over the given store.
func NewServer(st store.Store, opts Options) *Server {
	return &Server{
		store:             st,
		env:               opts.Env,
		adminAPIKey:       opts.AdminAPIKey,
		rateLimitPerIP:    opts.RateLimitPerIP,
		allowDebugInstant: opts.AllowDebugInstant,
		log:               opts.Logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(logging.Middleware(s.log))
	r.Use(telemetry.Middleware)
	if s.rateLimitPerIP > 0 {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public: client fetch
	r.Get("/v1/configs/{gameID}/{key}", s.handleResolve)

	// admin (protected)
	r.Group(func(r chi.Router) {
		r.Use(s.authAdmin)
		r.Get("/v1/configs/{gameID}", s.handleListConfigs)
		r.Post("/v1/configs", s.handleUpsertConfig)
		r.Delete("/v1/configs/{gameID}/{key}", s.handleDeleteConfig)
		r.Get("/v1/configs/{gameID}/{key}/rules", s.handleListRules)
		r.Post("/v1/configs/{gameID}/{key}/rules", s.handleCreateRule)
		r.Put("/v1/configs/{gameID}/{key}/rules/{ruleID}", s.handleUpdateRule)
		r.Delete("/v1/configs/{gameID}/{key}/rules/{ruleID}", s.handleDeleteRule)
	})

	return r
}

// envParam returns the effective environment for a request: the ?env= query
// parameter when present, the server default otherwise.
func (s *Server) envParam(r *http.Request) string {
	if env := strings.TrimSpace(r.URL.Query().Get("env")); env != "" {
		return env
	}
	return s.env
}

func (s *Server) authAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			writeError(w, r, http.StatusForbidden, ErrCodeForbidden, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
