package role

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrRoleNotFound is returned when no role has the requested id
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotAssigned is returned by RemovePermission when the edge does not exist
	ErrPermissionNotAssigned = errors.New("permission not assigned to role")
	// ErrUnknownPermission is returned by ReplacePermissions when a permission id has no row
	ErrUnknownPermission = errors.New("unknown permission")
)

// RoleRepository stores roles and their permission set.
// ReplacePermissions and RemovePermission must each apply atomically per role.
type RoleRepository interface {
	CreateRole(ctx context.Context, name string) (Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (Role, error)
	FindRoles(ctx context.Context) ([]Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	// FindRolePermissionIDs returns the permission set of one role
	FindRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error)
	// FindAllRolePermissionIDs returns role id -> permission set for every role with edges
	FindAllRolePermissionIDs(ctx context.Context) (map[uuid.UUID][]uuid.UUID, error)
	// ReplacePermissions makes the role's permission set exactly permissionIDs
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
	// RemovePermission deletes one edge
	RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error
}

func sortRoles(roles []Role) {
	slices.SortFunc(roles, func(a, b Role) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
