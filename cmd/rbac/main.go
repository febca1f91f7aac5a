// Package main runs the RBAC service over HTTP.
//
// Storage is chosen with RBAC_PERSISTENCE (postgres, file or memory). With the
// memory backend all data is lost when the server stops.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-rbac/pkg/bootstrap"
	"github.com/tendant/simple-rbac/pkg/config"
	"github.com/tendant/simple-rbac/pkg/metrics"
	"github.com/tendant/simple-rbac/pkg/rbac"
	"github.com/tendant/simple-rbac/pkg/router"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	deletePolicy, err := rbac.ParseDeletePolicy(cfg.RBAC.RoleDeletePolicy)
	if err != nil {
		slog.Error("Invalid role delete policy", "error", err)
		os.Exit(1)
	}

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		dbConfig := cfg.Database.ToDbConfig()
		pool, err = dbutils.NewDbPool(context.Background(), dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User, "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		slog.Error("Failed registering metrics", "error", err)
		os.Exit(1)
	}

	components, err := router.NewComponents(router.Options{
		Persistence:      cfg.Store.Persistence,
		Pool:             pool,
		DataDir:          cfg.Store.DataDir,
		DeletePolicy:     deletePolicy,
		BatchConcurrency: cfg.RBAC.BatchConcurrency,
		Metrics:          m,
		Logger:           logger,
		SeedUsers:        cfg.RBAC.SeedUsers,
	})
	if err != nil {
		slog.Error("Failed wiring RBAC service", "error", err)
		os.Exit(1)
	}

	if _, err := bootstrap.EnsureRoles(context.Background(), components.Service, cfg.RBAC.BootstrapRoles); err != nil {
		slog.Error("Failed bootstrapping roles", "error", err)
		os.Exit(1)
	}

	var tokenAuth *jwtauth.JWTAuth
	if cfg.RBAC.JWTSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(cfg.RBAC.JWTSecret), nil)
	}

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	router.SetupRoutes(server.R, router.Config{
		Prefix:         cfg.RBAC.APIPrefix,
		Handle:         components.Handle,
		TokenAuth:      tokenAuth,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	slog.Info("RBAC service ready",
		"persistence", cfg.Store.Persistence,
		"prefix", cfg.RBAC.APIPrefix,
		"delete_policy", deletePolicy,
		"auth", tokenAuth != nil,
	)

	server.Run()
}
