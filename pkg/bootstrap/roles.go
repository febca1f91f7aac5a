// Package bootstrap prepares a fresh RBAC store on startup.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-rbac/pkg/role"
)

// RoleCatalog is the part of the RBAC service needed to ensure roles exist
type RoleCatalog interface {
	ListRoles(ctx context.Context) ([]role.RoleSummary, error)
	CreateRole(ctx context.Context, name string) (role.Role, error)
}

// RoleInfo describes one bootstrapped role
type RoleInfo struct {
	ID      uuid.UUID
	Name    string
	Created bool
}

// EnsureRoles creates every named role that does not exist yet.
// Names are matched case-insensitively; blank and repeated names are skipped.
func EnsureRoles(ctx context.Context, catalog RoleCatalog, names []string) ([]RoleInfo, error) {
	if catalog == nil {
		return nil, fmt.Errorf("role catalog is required")
	}
	if len(names) == 0 {
		return nil, nil
	}

	existing, err := catalog.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find existing roles: %w", err)
	}

	byName := make(map[string]uuid.UUID, len(existing))
	for _, r := range existing {
		byName[strings.ToLower(r.Name)] = r.ID
	}

	infos := make([]RoleInfo, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if key == "" {
			continue
		}

		if id, ok := byName[key]; ok {
			if !seen(infos, id) {
				slog.Info("Role already exists", "role", name, "id", id)
				infos = append(infos, RoleInfo{ID: id, Name: name})
			}
			continue
		}

		created, err := catalog.CreateRole(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to create role %s: %w", name, err)
		}
		byName[key] = created.ID

		slog.Info("Role created", "role", name, "id", created.ID)
		infos = append(infos, RoleInfo{ID: created.ID, Name: created.Name, Created: true})
	}

	slog.Info("Role bootstrap completed", "roles", len(infos), "created", countCreated(infos))
	return infos, nil
}

func seen(infos []RoleInfo, id uuid.UUID) bool {
	for _, info := range infos {
		if info.ID == id {
			return true
		}
	}
	return false
}

func countCreated(infos []RoleInfo) int {
	n := 0
	for _, info := range infos {
		if info.Created {
			n++
		}
	}
	return n
}
