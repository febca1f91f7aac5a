package userlink

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user has the requested id
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotAssigned is returned by ClearRole when the user holds a different role or none
	ErrRoleNotAssigned = errors.New("user does not currently hold this role")
)

// UserLinkRepository reads users and writes their role_id column
type UserLinkRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	FindUsers(ctx context.Context) ([]User, error)
	FindUsersByRole(ctx context.Context, roleID uuid.UUID) ([]User, error)
	CountUsersByRole(ctx context.Context) (map[uuid.UUID]int, error)
	SetRole(ctx context.Context, userID, roleID uuid.UUID) (User, error)
	// ClearRole nulls role_id only when it currently equals expectedRoleID
	ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error
	// ClearRoleForAll nulls role_id on every holder of roleID and returns how many changed
	ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error)
}

func sortUsers(users []User) {
	slices.SortFunc(users, func(a, b User) int {
		if c := cmp.Compare(a.Email, b.Email); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
