package config

import (
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
)

// Supported persistence types
var persistenceTypes = []string{"postgres", "postgresql", "file", "memory", "inmem"}

// Supported role delete policies; empty means the default
var deletePolicies = []string{"", "orphan", "reject", "detach"}

// StoreConfig selects the storage backend shared by all stores
type StoreConfig struct {
	Persistence string `env:"RBAC_PERSISTENCE" env-default:"memory"`
	DataDir     string `env:"RBAC_DATA_DIR" env-default:"./data"`
}

// RBACConfig holds the association service and HTTP binding settings
type RBACConfig struct {
	RoleDeletePolicy string   `env:"RBAC_ROLE_DELETE_POLICY" env-default:"orphan"`
	BatchConcurrency int      `env:"RBAC_BATCH_CONCURRENCY" env-default:"0"`
	APIPrefix        string   `env:"RBAC_API_PREFIX" env-default:"/api/rbac"`
	JWTSecret        string   `env:"RBAC_JWT_SECRET"`
	SeedUsers        []string `env:"RBAC_SEED_USERS" env-separator:","`
	BootstrapRoles   []string `env:"RBAC_BOOTSTRAP_ROLES" env-separator:","`
}

// Config is the complete server configuration
type Config struct {
	Database  DatabaseConfig
	Store     StoreConfig
	RBAC      RBACConfig
	AppConfig app.AppConfig
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Store.Persistence = strings.ToLower(strings.TrimSpace(c.Store.Persistence))
	c.RBAC.RoleDeletePolicy = strings.ToLower(strings.TrimSpace(c.RBAC.RoleDeletePolicy))

	c.RBAC.SeedUsers = trimAll(c.RBAC.SeedUsers)
	c.RBAC.BootstrapRoles = trimAll(c.RBAC.BootstrapRoles)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// UsesPostgres reports whether the stores are backed by PostgreSQL
func (c Config) UsesPostgres() bool {
	return c.Store.Persistence == "postgres" || c.Store.Persistence == "postgresql"
}

// Validate checks the configuration for values the server cannot start with
func (c Config) Validate() error {
	return Validate(
		func() ValidationErrors {
			return CollectErrors(
				RequireOneOf("RBAC_PERSISTENCE", c.Store.Persistence, persistenceTypes),
				RequireOneOf("RBAC_ROLE_DELETE_POLICY", c.RBAC.RoleDeletePolicy, deletePolicies),
				RequireNonNegative("RBAC_BATCH_CONCURRENCY", c.RBAC.BatchConcurrency),
				RequirePrefix("RBAC_API_PREFIX", c.RBAC.APIPrefix),
			)
		},
		func() ValidationErrors {
			if c.Store.Persistence != "file" {
				return nil
			}
			return CollectErrors(RequireNonEmpty("RBAC_DATA_DIR", c.Store.DataDir))
		},
		func() ValidationErrors {
			if !c.UsesPostgres() {
				return nil
			}
			return c.Database.validate()
		},
	)
}
