package userlink

import (
	"context"
	"errors"

	"github.com/google/uuid"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
)

// UserLinkService is the narrow adapter over the external user entity
type UserLinkService struct {
	repo UserLinkRepository
}

// NewUserLinkService creates a new user link service
func NewUserLinkService(repo UserLinkRepository) *UserLinkService {
	return &UserLinkService{
		repo: repo,
	}
}

// SetRole points the user's role_id at roleID, superseding any previous role
func (s *UserLinkService) SetRole(ctx context.Context, userID, roleID uuid.UUID) (User, error) {
	user, err := s.repo.SetRole(ctx, userID, roleID)
	if err != nil {
		return User{}, mapError(err, userID, roleID)
	}
	return user, nil
}

// ClearRole nulls the user's role_id, but only while the user still holds expectedRoleID
func (s *UserLinkService) ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error {
	if err := s.repo.ClearRole(ctx, userID, expectedRoleID); err != nil {
		return mapError(err, userID, expectedRoleID)
	}
	return nil
}

// ClearRoleForAll nulls role_id for every holder of roleID
func (s *UserLinkService) ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error) {
	n, err := s.repo.ClearRoleForAll(ctx, roleID)
	if err != nil {
		return 0, rbacerrors.InternalWrap(err, "failed to clear role holders")
	}
	return n, nil
}

// ListByRole returns all users whose role_id equals roleID
func (s *UserLinkService) ListByRole(ctx context.Context, roleID uuid.UUID) ([]User, error) {
	users, err := s.repo.FindUsersByRole(ctx, roleID)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to list role users")
	}
	return users, nil
}

// CountByRole returns the number of users holding each role
func (s *UserLinkService) CountByRole(ctx context.Context) (map[uuid.UUID]int, error) {
	counts, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to count role users")
	}
	return counts, nil
}

// ListUsers returns every user known to the identity store
func (s *UserLinkService) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.FindUsers(ctx)
	if err != nil {
		return nil, rbacerrors.InternalWrap(err, "failed to list users")
	}
	return users, nil
}

func mapError(err error, userID, roleID uuid.UUID) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return rbacerrors.Wrapf(err, rbacerrors.ErrCodeUserNotFound, "no user with id %s", userID).
			WithDetail("user_id", userID.String())
	case errors.Is(err, ErrRoleNotAssigned):
		return rbacerrors.Wrapf(err, rbacerrors.ErrCodeRoleNotAssigned, "user %s does not hold role %s", userID, roleID).
			WithDetails(map[string]interface{}{
				"user_id": userID.String(),
				"role_id": roleID.String(),
			})
	default:
		return rbacerrors.InternalWrap(err, "user store failure")
	}
}
