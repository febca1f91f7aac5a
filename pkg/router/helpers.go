package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/rbac"
	rbacapi "github.com/tendant/simple-rbac/pkg/rbac/api"
	"github.com/tendant/simple-rbac/pkg/role"
	"github.com/tendant/simple-rbac/pkg/userlink"
)

// Options contains the configuration for wiring the RBAC stores and service
type Options struct {
	// Persistence is postgres, file or memory
	Persistence string
	// Pool is required for postgres
	Pool *pgxpool.Pool
	// DataDir is required for file
	DataDir string

	DeletePolicy     rbac.DeletePolicy
	BatchConcurrency int
	Metrics          rbac.Recorder
	Logger           *slog.Logger

	// SeedUsers are emails added to a memory or file user store on startup
	SeedUsers []string
}

// Components holds the wired RBAC service and its HTTP handle
type Components struct {
	Permissions *permission.PermissionService
	Roles       *role.RoleService
	UserLinks   *userlink.UserLinkService
	Service     *rbac.Service
	Handle      *rbacapi.Handle
}

// NewComponents creates the repositories for opts.Persistence and wires the services on top
func NewComponents(opts Options) (*Components, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	permissionRepo, err := permission.NewPermissionRepository(opts.Persistence, permission.RepositoryConfig{Pool: opts.Pool, DataDir: opts.DataDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create permission repository: %w", err)
	}
	roleRepo, err := role.NewRoleRepository(opts.Persistence, role.RepositoryConfig{Pool: opts.Pool, DataDir: opts.DataDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create role repository: %w", err)
	}
	userRepo, err := userlink.NewUserLinkRepository(opts.Persistence, userlink.RepositoryConfig{Pool: opts.Pool, DataDir: opts.DataDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create user link repository: %w", err)
	}

	if err := seedUsers(userRepo, opts.SeedUsers, logger); err != nil {
		return nil, err
	}

	permissions := permission.NewPermissionService(permissionRepo)
	userLinks := userlink.NewUserLinkService(userRepo)
	roles := role.NewRoleService(roleRepo,
		role.WithPermissionLookup(permissions),
		role.WithUserLister(userLinks),
	)

	service := rbac.NewService(roles, permissions, userLinks,
		rbac.WithDeletePolicy(opts.DeletePolicy),
		rbac.WithBatchConcurrency(opts.BatchConcurrency),
		rbac.WithMetrics(opts.Metrics),
		rbac.WithLogger(logger),
	)

	return &Components{
		Permissions: permissions,
		Roles:       roles,
		UserLinks:   userLinks,
		Service:     service,
		Handle:      rbacapi.NewHandle(service),
	}, nil
}

func seedUsers(repo userlink.UserLinkRepository, emails []string, logger *slog.Logger) error {
	if len(emails) == 0 {
		return nil
	}

	var seed func(userlink.User) (userlink.User, error)
	switch r := repo.(type) {
	case *userlink.InMemoryUserLinkRepository:
		seed = func(u userlink.User) (userlink.User, error) { return r.SeedUser(u), nil }
	case *userlink.FileUserLinkRepository:
		seed = r.SeedUser
	default:
		logger.Warn("Seed users ignored; users are owned by the identity database", "count", len(emails))
		return nil
	}

	existing, err := repo.FindUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, u := range existing {
		known[u.Email] = true
	}

	for _, email := range emails {
		if known[email] {
			continue
		}
		u, err := seed(userlink.User{Email: email})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		known[email] = true
		logger.Info("Seeded user", "user_id", u.ID, "email", email)
	}
	return nil
}
