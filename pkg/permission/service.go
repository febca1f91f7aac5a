package permission

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/utils"
)

// PermissionService provides the Permission Store operations
type PermissionService struct {
	repo PermissionRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(repo PermissionRepository) *PermissionService {
	return &PermissionService{
		repo: repo,
	}
}

// CreatePermission validates and persists a new permission.
// Metadata is stored as given; a nil map is stored as empty.
func (s *PermissionService) CreatePermission(ctx context.Context, name string, metadata Metadata) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, rbacerrors.MissingRequired("permission name")
	}

	p, err := s.repo.CreatePermission(ctx, CreatePermissionParams{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		return Permission{}, rbacerrors.InternalWrap(err, "failed to create permission")
	}
	return p, nil
}

// ListPermissions returns all permissions
func (s *PermissionService) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms, err := s.repo.FindPermissions(ctx)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to list permissions")
	}
	return perms, nil
}

// GetPermission retrieves a permission by ID
func (s *PermissionService) GetPermission(ctx context.Context, id uuid.UUID) (Permission, error) {
	p, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			return Permission{}, NotFoundError(id)
		}
		return Permission{}, rbacerrors.InternalWrap(err, "failed to get permission")
	}
	return p, nil
}

// GetPermissions returns the permissions among ids that exist, ordered by name
func (s *PermissionService) GetPermissions(ctx context.Context, ids []uuid.UUID) ([]Permission, error) {
	perms, err := s.repo.FindPermissionsByIDs(ctx, utils.UniqueUUIDs(ids))
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to get permissions")
	}
	return perms, nil
}

// FindMissing returns the ids among ids that do not reference a stored permission.
// Duplicates in ids are reported once.
func (s *PermissionService) FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	missing, err := s.repo.FindMissing(ctx, utils.UniqueUUIDs(ids))
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to check permissions")
	}
	return missing, nil
}

// NotFoundError builds the structured not-found error for a permission id
func NotFoundError(id uuid.UUID) error {
	return rbacerrors.Wrapf(ErrPermissionNotFound, rbacerrors.ErrCodePermissionNotFound, "no permission with id %s", id).
		WithDetail("permission_id", id.String())
}
