package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	rbacapi "github.com/tendant/simple-rbac/pkg/rbac/api"
)

// Config holds the handlers needed to setup routes
type Config struct {
	// Prefix the RBAC routes are mounted under, e.g. /api/rbac
	Prefix string

	Handle *rbacapi.Handle

	// TokenAuth guards the RBAC routes when set
	TokenAuth *jwtauth.JWTAuth

	// MetricsHandler is served at /metrics when set
	MetricsHandler http.Handler
}

// SetupRoutes mounts the RBAC routes on the provided router
func SetupRoutes(router chi.Router, cfg Config) {
	if cfg.MetricsHandler != nil {
		router.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.TokenAuth == nil {
		slog.Warn("RBAC routes mounted without authentication", "prefix", cfg.Prefix)
		router.Mount(cfg.Prefix, rbacapi.Handler(cfg.Handle))
		return
	}

	router.Mount(cfg.Prefix, rbacapi.SecureHandler(cfg.Handle, cfg.TokenAuth))
}
