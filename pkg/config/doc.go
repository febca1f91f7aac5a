// Package config loads the simple-rbac server configuration from the environment.
//
// Values are read with cleanenv into Config and then validated:
//
//	cfg, err := config.Load()
//	if err != nil {
//		slog.Error("invalid configuration", "error", err)
//		os.Exit(1)
//	}
//
// # Environment Variables
//
//	RBAC_PG_HOST, RBAC_PG_PORT, RBAC_PG_DATABASE,
//	RBAC_PG_USER, RBAC_PG_PASSWORD, RBAC_PG_SCHEMA   PostgreSQL connection
//	RBAC_PERSISTENCE         postgres | file | memory (default memory)
//	RBAC_DATA_DIR            directory for the file backend (default ./data)
//	RBAC_ROLE_DELETE_POLICY  orphan | reject | detach (default orphan)
//	RBAC_BATCH_CONCURRENCY   cap on concurrent batch attempts, 0 = unlimited
//	RBAC_API_PREFIX          route prefix (default /api/rbac)
//	RBAC_JWT_SECRET          HS256 secret; routes are unauthenticated when empty
//	RBAC_SEED_USERS          comma separated emails seeded into the memory user store
//
// HTTP server settings come from chi-demo's app.AppConfig.
package config
