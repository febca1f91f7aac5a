package permission

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
)

// ErrPermissionNotFound is returned by repositories when no permission has the requested id
var ErrPermissionNotFound = errors.New("permission not found")

// PermissionRepository defines the storage operations for permissions
type PermissionRepository interface {
	CreatePermission(ctx context.Context, params CreatePermissionParams) (Permission, error)
	GetPermission(ctx context.Context, id uuid.UUID) (Permission, error)
	FindPermissions(ctx context.Context) ([]Permission, error)
	// FindPermissionsByIDs returns the stored permissions among ids; unknown ids are skipped
	FindPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]Permission, error)
	// FindMissing returns the ids in ids that have no stored permission
	FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// SortPermissions orders permissions by name, then id
func SortPermissions(perms []Permission) {
	slices.SortFunc(perms, func(a, b Permission) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
