package userlink

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryUserLinkRepository implements UserLinkRepository using in-memory storage
type InMemoryUserLinkRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewInMemoryUserLinkRepository creates a new in-memory user link repository
func NewInMemoryUserLinkRepository() *InMemoryUserLinkRepository {
	return &InMemoryUserLinkRepository{
		users: make(map[uuid.UUID]User),
	}
}

// GetUser retrieves a user by ID
func (r *InMemoryUserLinkRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user.clone(), nil
}

// FindUsers returns all users
func (r *InMemoryUserLinkRepository) FindUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user.clone())
	}
	sortUsers(users)
	return users, nil
}

// FindUsersByRole returns the users whose role_id equals roleID
func (r *InMemoryUserLinkRepository) FindUsersByRole(ctx context.Context, roleID uuid.UUID) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []User{}
	for _, user := range r.users {
		if user.HasRole(roleID) {
			users = append(users, user.clone())
		}
	}
	sortUsers(users)
	return users, nil
}

// CountUsersByRole returns the number of holders per role id
func (r *InMemoryUserLinkRepository) CountUsersByRole(ctx context.Context) (map[uuid.UUID]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, user := range r.users {
		if user.RoleID != nil {
			counts[*user.RoleID]++
		}
	}
	return counts, nil
}

// SetRole sets the user's role_id
func (r *InMemoryUserLinkRepository) SetRole(ctx context.Context, userID, roleID uuid.UUID) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	id := roleID
	user.RoleID = &id
	r.users[userID] = user
	return user.clone(), nil
}

// ClearRole nulls the user's role_id if it equals expectedRoleID
func (r *InMemoryUserLinkRepository) ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !user.HasRole(expectedRoleID) {
		return ErrRoleNotAssigned
	}
	user.RoleID = nil
	r.users[userID] = user
	return nil
}

// ClearRoleForAll nulls role_id on every holder of roleID
func (r *InMemoryUserLinkRepository) ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := 0
	for id, user := range r.users {
		if user.HasRole(roleID) {
			user.RoleID = nil
			r.users[id] = user
			cleared++
		}
	}
	return cleared, nil
}

// SeedUser adds a user directly (for testing/initialization).
// Users belong to the identity subsystem, so this is the only way to create one here.
func (r *InMemoryUserLinkRepository) SeedUser(user User) User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user.clone()
	return user.clone()
}
