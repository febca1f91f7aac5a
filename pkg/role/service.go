package role

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/userlink"
	"github.com/tendant/simple-rbac/pkg/utils"
)

// PermissionLookup resolves permission ids. *permission.PermissionService satisfies it.
type PermissionLookup interface {
	GetPermissions(ctx context.Context, ids []uuid.UUID) ([]permission.Permission, error)
	FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// UserLister answers the computed users relation. *userlink.UserLinkService satisfies it.
type UserLister interface {
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]userlink.User, error)
	CountByRole(ctx context.Context) (map[uuid.UUID]int, error)
}

// Option configures a RoleService
type Option func(*RoleService)

// WithPermissionLookup sets the permission resolver used for reference checks and the permissions relation
func WithPermissionLookup(lookup PermissionLookup) Option {
	return func(s *RoleService) {
		s.permissions = lookup
	}
}

// WithUserLister sets the source of the users relation and of users counts
func WithUserLister(users UserLister) Option {
	return func(s *RoleService) {
		s.users = users
	}
}

// RoleService provides the Role Store operations
type RoleService struct {
	repo        RoleRepository
	permissions PermissionLookup
	users       UserLister
}

// NewRoleService creates a new role service
func NewRoleService(repo RoleRepository, opts ...Option) *RoleService {
	s := &RoleService{
		repo: repo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRole creates a role with an empty permission set
func (s *RoleService) CreateRole(ctx context.Context, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, rbacerrors.MissingRequired("role name")
	}

	role, err := s.repo.CreateRole(ctx, name)
	if err != nil {
		return Role{}, rbacerrors.InternalWrap(err, "failed to create role")
	}
	return role, nil
}

// GetRole retrieves a role and the requested relations
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID, rel Relations) (Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, mapError(err, id)
	}

	if rel.Permissions {
		if s.permissions == nil {
			return Role{}, rbacerrors.Internal("permission lookup not configured")
		}
		ids, err := s.repo.FindRolePermissionIDs(ctx, id)
		if err != nil {
			return Role{}, mapError(err, id)
		}
		perms, err := s.permissions.GetPermissions(ctx, ids)
		if err != nil {
			return Role{}, err
		}
		role.Permissions = perms
	}

	if rel.Users {
		if s.users == nil {
			return Role{}, rbacerrors.Internal("user lister not configured")
		}
		users, err := s.users.ListByRole(ctx, id)
		if err != nil {
			return Role{}, err
		}
		role.Users = users
	}

	return role, nil
}

// ListRoles returns every role with its permission names and number of holders
func (s *RoleService) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	roles, err := s.repo.FindRoles(ctx)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to list roles")
	}

	edges, err := s.repo.FindAllRolePermissionIDs(ctx)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to list role permissions")
	}

	names := map[uuid.UUID]string{}
	if s.permissions != nil && len(edges) > 0 {
		var all []uuid.UUID
		for _, ids := range edges {
			all = append(all, ids...)
		}
		perms, err := s.permissions.GetPermissions(ctx, all)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			names[p.ID] = p.Name
		}
	}

	counts := map[uuid.UUID]int{}
	if s.users != nil {
		counts, err = s.users.CountByRole(ctx)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]RoleSummary, 0, len(roles))
	for _, r := range roles {
		permissionNames := []string{}
		for _, pid := range edges[r.ID] {
			if name, ok := names[pid]; ok {
				permissionNames = append(permissionNames, name)
			}
		}
		slices.Sort(permissionNames)

		summaries = append(summaries, RoleSummary{
			ID:              r.ID,
			Name:            r.Name,
			CreatedAt:       r.CreatedAt,
			PermissionNames: permissionNames,
			UsersCount:      counts[r.ID],
		})
	}
	return summaries, nil
}

// ReplacePermissions makes the role's permission set exactly permissionIDs.
// Duplicates collapse; any unknown id rejects the whole call and leaves the set unchanged.
func (s *RoleService) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (Role, error) {
	ids := utils.UniqueUUIDs(permissionIDs)

	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return Role{}, mapError(err, roleID)
	}

	if s.permissions != nil && len(ids) > 0 {
		missing, err := s.permissions.FindMissing(ctx, ids)
		if err != nil {
			return Role{}, err
		}
		if len(missing) > 0 {
			return Role{}, unknownPermissionsError(missing)
		}
	}

	if err := s.repo.ReplacePermissions(ctx, roleID, ids); err != nil {
		return Role{}, mapError(err, roleID)
	}

	return s.GetRole(ctx, roleID, Relations{Permissions: s.permissions != nil})
}

// RemovePermission deletes the edge between roleID and permissionID
func (s *RoleService) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	err := s.repo.RemovePermission(ctx, roleID, permissionID)
	if errors.Is(err, ErrPermissionNotAssigned) {
		return rbacerrors.Wrapf(err, rbacerrors.ErrCodeNotFound, "permission %s is not assigned to role %s", permissionID, roleID).
			WithDetails(map[string]interface{}{
				"role_id":       roleID.String(),
				"permission_id": permissionID.String(),
			})
	}
	if err != nil {
		return mapError(err, roleID)
	}
	return nil
}

// DeleteRole deletes the role and its permission edges. Users are not touched.
func (s *RoleService) DeleteRole(ctx context.Context, roleID uuid.UUID) error {
	if err := s.repo.DeleteRole(ctx, roleID); err != nil {
		return mapError(err, roleID)
	}
	return nil
}

// RoleExists reports whether a role with id is stored
func (s *RoleService) RoleExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetRole(ctx, id)
	if errors.Is(err, ErrRoleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, rbacerrors.InternalWrap(err, "failed to get role")
	}
	return true, nil
}

// NotFoundError builds the structured not-found error for a role id
func NotFoundError(id uuid.UUID) error {
	return rbacerrors.Wrapf(ErrRoleNotFound, rbacerrors.ErrCodeRoleNotFound, "no role with id %s", id).
		WithDetail("role_id", id.String())
}

func unknownPermissionsError(missing []uuid.UUID) error {
	return rbacerrors.Wrapf(ErrUnknownPermission, rbacerrors.ErrCodeUnknownReference, "unknown permission ids: %s",
		strings.Join(utils.UUIDStrings(missing), ", ")).
		WithDetail("missing_permission_ids", utils.UUIDStrings(missing))
}

func mapError(err error, roleID uuid.UUID) error {
	switch {
	case errors.Is(err, ErrRoleNotFound):
		return NotFoundError(roleID)
	case errors.Is(err, ErrUnknownPermission):
		return rbacerrors.Wrap(err, rbacerrors.ErrCodeUnknownReference, "permission set references a missing permission")
	default:
		return rbacerrors.InternalWrap(err, "role store failure")
	}
}
