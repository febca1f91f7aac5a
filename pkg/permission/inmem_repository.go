package permission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryPermissionRepository implements PermissionRepository using in-memory storage
type InMemoryPermissionRepository struct {
	mu          sync.RWMutex
	permissions map[uuid.UUID]Permission
}

// NewInMemoryPermissionRepository creates a new in-memory permission repository
func NewInMemoryPermissionRepository() *InMemoryPermissionRepository {
	return &InMemoryPermissionRepository{
		permissions: make(map[uuid.UUID]Permission),
	}
}

// CreatePermission creates a new permission
func (r *InMemoryPermissionRepository) CreatePermission(ctx context.Context, params CreatePermissionParams) (Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := Permission{
		ID:        uuid.New(),
		Name:      params.Name,
		Metadata:  cloneMetadata(params.Metadata),
		CreatedAt: time.Now().UTC(),
	}
	r.permissions[p.ID] = p
	return p.Clone(), nil
}

// GetPermission retrieves a permission by ID
func (r *InMemoryPermissionRepository) GetPermission(ctx context.Context, id uuid.UUID) (Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.permissions[id]
	if !ok {
		return Permission{}, ErrPermissionNotFound
	}
	return p.Clone(), nil
}

// FindPermissions returns all permissions
func (r *InMemoryPermissionRepository) FindPermissions(ctx context.Context) ([]Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perms := make([]Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		perms = append(perms, p.Clone())
	}
	SortPermissions(perms)
	return perms, nil
}

// FindPermissionsByIDs returns the stored permissions among ids
func (r *InMemoryPermissionRepository) FindPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perms := make([]Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.permissions[id]; ok {
			perms = append(perms, p.Clone())
		}
	}
	SortPermissions(perms)
	return perms, nil
}

// FindMissing returns the ids that have no stored permission
func (r *InMemoryPermissionRepository) FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := r.permissions[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// SeedPermission adds a permission directly (for testing/initialization)
func (r *InMemoryPermissionRepository) SeedPermission(p Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permissions[p.ID] = p.Clone()
}
