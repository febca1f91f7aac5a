package role

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRoleRepository implements RoleRepository using in-memory storage
type InMemoryRoleRepository struct {
	mu              sync.RWMutex
	roles           map[uuid.UUID]Role
	rolePermissions map[uuid.UUID]map[uuid.UUID]struct{} // roleID -> permission set
}

// NewInMemoryRoleRepository creates a new in-memory role repository
func NewInMemoryRoleRepository() *InMemoryRoleRepository {
	return &InMemoryRoleRepository{
		roles:           make(map[uuid.UUID]Role),
		rolePermissions: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// CreateRole creates a new role with an empty permission set
func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := Role{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	r.roles[role.ID] = role
	r.rolePermissions[role.ID] = make(map[uuid.UUID]struct{})
	return role, nil
}

// GetRole retrieves a role by ID
func (r *InMemoryRoleRepository) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// FindRoles returns all roles
func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sortRoles(roles)
	return roles, nil
}

// DeleteRole deletes a role and its permission edges
func (r *InMemoryRoleRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[id]; !ok {
		return ErrRoleNotFound
	}
	delete(r.roles, id)
	delete(r.rolePermissions, id)
	return nil
}

// FindRolePermissionIDs returns the permission set of one role
func (r *InMemoryRoleRepository) FindRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.roles[roleID]; !ok {
		return nil, ErrRoleNotFound
	}
	return setToSlice(r.rolePermissions[roleID]), nil
}

// FindAllRolePermissionIDs returns the permission set of every role
func (r *InMemoryRoleRepository) FindAllRolePermissionIDs(ctx context.Context) (map[uuid.UUID][]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uuid.UUID][]uuid.UUID, len(r.rolePermissions))
	for roleID, set := range r.rolePermissions {
		if len(set) > 0 {
			result[roleID] = setToSlice(set)
		}
	}
	return result, nil
}

// ReplacePermissions swaps the whole permission set under the write lock
func (r *InMemoryRoleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	r.rolePermissions[roleID] = sliceToSet(permissionIDs)
	return nil
}

// RemovePermission deletes one edge
func (r *InMemoryRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	set := r.rolePermissions[roleID]
	if _, ok := set[permissionID]; !ok {
		return ErrPermissionNotAssigned
	}
	delete(set, permissionID)
	return nil
}

// SeedRole adds a role directly (for testing/initialization)
func (r *InMemoryRoleRepository) SeedRole(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.ID] = Role{ID: role.ID, Name: role.Name, CreatedAt: role.CreatedAt}
	if r.rolePermissions[role.ID] == nil {
		r.rolePermissions[role.ID] = make(map[uuid.UUID]struct{})
	}
}

func sliceToSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setToSlice(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
