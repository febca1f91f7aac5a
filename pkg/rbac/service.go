package rbac

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/metrics"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/role"
	"github.com/tendant/simple-rbac/pkg/userlink"
	"golang.org/x/sync/errgroup"
)

// RoleStore is the subset of *role.RoleService used here
type RoleStore interface {
	CreateRole(ctx context.Context, name string) (role.Role, error)
	GetRole(ctx context.Context, id uuid.UUID, rel role.Relations) (role.Role, error)
	ListRoles(ctx context.Context) ([]role.RoleSummary, error)
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (role.Role, error)
	RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	DeleteRole(ctx context.Context, roleID uuid.UUID) error
	RoleExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PermissionStore is the subset of *permission.PermissionService used here
type PermissionStore interface {
	CreatePermission(ctx context.Context, name string, metadata permission.Metadata) (permission.Permission, error)
	ListPermissions(ctx context.Context) ([]permission.Permission, error)
}

// UserLinks is the subset of *userlink.UserLinkService used here
type UserLinks interface {
	SetRole(ctx context.Context, userID, roleID uuid.UUID) (userlink.User, error)
	ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error
	ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error)
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]userlink.User, error)
	ListUsers(ctx context.Context) ([]userlink.User, error)
}

// Service coordinates roles, permissions and user links
type Service struct {
	roles       RoleStore
	permissions PermissionStore
	users       UserLinks

	deletePolicy     DeletePolicy
	batchConcurrency int
	metrics          Recorder
	logger           *slog.Logger
}

// NewService creates a new RBAC service
func NewService(roles RoleStore, permissions PermissionStore, users UserLinks, opts ...Option) *Service {
	s := &Service{
		roles:        roles,
		permissions:  permissions,
		users:        users,
		deletePolicy: DeletePolicyOrphan,
		metrics:      noopRecorder{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRole creates a role with no permissions
func (s *Service) CreateRole(ctx context.Context, name string) (role.Role, error) {
	r, err := s.roles.CreateRole(ctx, name)
	if err != nil {
		return role.Role{}, err
	}
	s.logger.Info("role created", "role_id", r.ID, "name", r.Name)
	return r, nil
}

// GetRole returns the role with its permissions and users
func (s *Service) GetRole(ctx context.Context, roleID uuid.UUID) (role.Role, error) {
	return s.roles.GetRole(ctx, roleID, role.AllRelations)
}

// ListRoles returns every role with permission names and users count
func (s *Service) ListRoles(ctx context.Context) ([]role.RoleSummary, error) {
	return s.roles.ListRoles(ctx)
}

// DeleteRole deletes a role according to the configured DeletePolicy
func (s *Service) DeleteRole(ctx context.Context, roleID uuid.UUID) error {
	switch s.deletePolicy {
	case DeletePolicyReject:
		holders, err := s.users.ListByRole(ctx, roleID)
		if err != nil {
			return err
		}
		if len(holders) > 0 {
			return rbacerrors.Newf(rbacerrors.ErrCodeRoleInUse, "role %s is held by %d users", roleID, len(holders)).
				WithDetails(map[string]interface{}{
					"role_id":     roleID.String(),
					"users_count": len(holders),
				})
		}
		if err := s.roles.DeleteRole(ctx, roleID); err != nil {
			return err
		}
		// holders are checked and the role deleted in separate calls; report late associations
		late, err := s.users.ListByRole(ctx, roleID)
		if err != nil {
			s.logger.Warn("role deleted, holder recheck failed", "role_id", roleID, "error", err)
			return nil
		}
		if len(late) > 0 {
			s.logger.Warn("role deleted with users associated during delete", "role_id", roleID, "orphaned_users", len(late))
			return nil
		}
		s.logger.Info("role deleted", "role_id", roleID)
		return nil

	case DeletePolicyDetach:
		if err := s.requireRole(ctx, roleID); err != nil {
			return err
		}
		n, err := s.users.ClearRoleForAll(ctx, roleID)
		if err != nil {
			return err
		}
		if err := s.roles.DeleteRole(ctx, roleID); err != nil {
			return err
		}
		s.logger.Info("role deleted", "role_id", roleID, "detached_users", n)
		return nil

	default:
		holders, err := s.users.ListByRole(ctx, roleID)
		if err != nil {
			return err
		}
		if err := s.roles.DeleteRole(ctx, roleID); err != nil {
			return err
		}
		if len(holders) > 0 {
			s.logger.Warn("role deleted with users still referencing it", "role_id", roleID, "orphaned_users", len(holders))
		} else {
			s.logger.Info("role deleted", "role_id", roleID)
		}
		return nil
	}
}

// CreatePermission creates a permission for route. The route becomes the single metadata key.
func (s *Service) CreatePermission(ctx context.Context, name, route string) (permission.Permission, error) {
	metadata := permission.Metadata{}
	if route = strings.TrimSpace(route); route != "" {
		metadata[route] = true
	}
	return s.permissions.CreatePermission(ctx, name, metadata)
}

// ListPermissions returns all permissions
func (s *Service) ListPermissions(ctx context.Context) ([]permission.Permission, error) {
	return s.permissions.ListPermissions(ctx)
}

// AssignPermissions replaces the role's permission set
func (s *Service) AssignPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (role.Role, error) {
	r, err := s.roles.ReplacePermissions(ctx, roleID, permissionIDs)
	if err != nil {
		return role.Role{}, err
	}
	s.metrics.PermissionChange(metrics.OpReplace)
	return r, nil
}

// RemovePermissionFromRole removes one permission from the role
func (s *Service) RemovePermissionFromRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if err := s.roles.RemovePermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.metrics.PermissionChange(metrics.OpRemove)
	return nil
}

// AssociateUsers points every user in userIDs at roleID. Each id is attempted on its
// own; item failures are reported in the result and never fail the call.
func (s *Service) AssociateUsers(ctx context.Context, roleID uuid.UUID, userIDs []string) (BatchResult, error) {
	if userIDs == nil {
		return BatchResult{}, rbacerrors.MissingRequired("user ids")
	}
	if err := s.requireRole(ctx, roleID); err != nil {
		return BatchResult{}, err
	}

	items := make([]batchItem, len(userIDs))

	var g errgroup.Group
	if s.batchConcurrency > 0 {
		g.SetLimit(s.batchConcurrency)
	}
	for i, raw := range userIDs {
		g.Go(func() error {
			userID, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				items[i].err = rbacerrors.Newf(rbacerrors.ErrCodeInvalidFormat, "invalid user id %q", raw)
				return nil
			}
			items[i].user, items[i].err = s.users.SetRole(ctx, userID, roleID)
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{
		Successes: []userlink.User{},
		Failures:  []BatchFailure{},
	}
	for i, item := range items {
		if item.err != nil {
			failure := newBatchFailure(userIDs[i], item.err)
			result.Failures = append(result.Failures, failure)
			s.metrics.UserAssociation(metrics.OutcomeFailure)
			s.logger.Warn("user association failed", "role_id", roleID, "user_id", failure.ID, "reason", failure.Reason, "error", item.err)
			continue
		}
		result.Successes = append(result.Successes, item.user)
		s.metrics.UserAssociation(metrics.OutcomeSuccess)
	}

	s.logger.Info("users associated", "role_id", roleID, "successes", len(result.Successes), "failures", len(result.Failures))
	return result, nil
}

// DisassociateUser clears the user's role, provided the user currently holds roleID
func (s *Service) DisassociateUser(ctx context.Context, roleID, userID uuid.UUID) error {
	if err := s.requireRole(ctx, roleID); err != nil {
		return err
	}
	return s.users.ClearRole(ctx, userID, roleID)
}

// ListUsers returns all users
func (s *Service) ListUsers(ctx context.Context) ([]userlink.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *Service) requireRole(ctx context.Context, roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return rbacerrors.MissingRequired("role id")
	}
	exists, err := s.roles.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return role.NotFoundError(roleID)
	}
	return nil
}
