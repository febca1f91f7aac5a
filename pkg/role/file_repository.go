package role

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-rbac/pkg/utils"
)

// fileRoleData represents all role data stored in the file
type fileRoleData struct {
	Roles           map[uuid.UUID]Role        `json:"roles"`            // keyed by role ID
	RolePermissions map[uuid.UUID][]uuid.UUID `json:"role_permissions"` // role ID -> permission IDs
}

// FileRoleRepository implements RoleRepository using file-based storage
type FileRoleRepository struct {
	dataDir string
	data    *fileRoleData
	mutex   sync.RWMutex
}

// NewFileRoleRepository creates a new file-based role repository
func NewFileRoleRepository(dataDir string) (*FileRoleRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRoleRepository{
		dataDir: dataDir,
		data: &fileRoleData{
			Roles:           make(map[uuid.UUID]Role),
			RolePermissions: make(map[uuid.UUID][]uuid.UUID),
		},
	}

	if err := utils.LoadJSONFile(repo.path(), repo.data); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if repo.data.Roles == nil {
		repo.data.Roles = make(map[uuid.UUID]Role)
	}
	if repo.data.RolePermissions == nil {
		repo.data.RolePermissions = make(map[uuid.UUID][]uuid.UUID)
	}

	return repo, nil
}

func (r *FileRoleRepository) path() string {
	return filepath.Join(r.dataDir, "roles.json")
}

func (r *FileRoleRepository) save() error {
	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

// CreateRole creates a new role with an empty permission set
func (r *FileRoleRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	role := Role{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	r.data.Roles[role.ID] = role

	if err := r.save(); err != nil {
		// Rollback
		delete(r.data.Roles, role.ID)
		return Role{}, err
	}
	return role, nil
}

// GetRole retrieves a role by ID
func (r *FileRoleRepository) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	role, ok := r.data.Roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// FindRoles returns all roles
func (r *FileRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	roles := make([]Role, 0, len(r.data.Roles))
	for _, role := range r.data.Roles {
		roles = append(roles, role)
	}
	sortRoles(roles)
	return roles, nil
}

// DeleteRole deletes a role and its permission edges
func (r *FileRoleRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	role, ok := r.data.Roles[id]
	if !ok {
		return ErrRoleNotFound
	}
	perms, hadPerms := r.data.RolePermissions[id]

	delete(r.data.Roles, id)
	delete(r.data.RolePermissions, id)

	if err := r.save(); err != nil {
		// Rollback
		r.data.Roles[id] = role
		if hadPerms {
			r.data.RolePermissions[id] = perms
		}
		return err
	}
	return nil
}

// FindRolePermissionIDs returns the permission set of one role
func (r *FileRoleRepository) FindRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if _, ok := r.data.Roles[roleID]; !ok {
		return nil, ErrRoleNotFound
	}
	return append([]uuid.UUID{}, r.data.RolePermissions[roleID]...), nil
}

// FindAllRolePermissionIDs returns the permission set of every role
func (r *FileRoleRepository) FindAllRolePermissionIDs(ctx context.Context) (map[uuid.UUID][]uuid.UUID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[uuid.UUID][]uuid.UUID, len(r.data.RolePermissions))
	for roleID, ids := range r.data.RolePermissions {
		if len(ids) > 0 {
			result[roleID] = append([]uuid.UUID{}, ids...)
		}
	}
	return result, nil
}

// ReplacePermissions swaps the whole permission set; the file is rewritten once
func (r *FileRoleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.data.Roles[roleID]; !ok {
		return ErrRoleNotFound
	}

	previous, hadPrevious := r.data.RolePermissions[roleID]
	r.data.RolePermissions[roleID] = utils.UniqueUUIDs(permissionIDs)

	if err := r.save(); err != nil {
		// Rollback
		if hadPrevious {
			r.data.RolePermissions[roleID] = previous
		} else {
			delete(r.data.RolePermissions, roleID)
		}
		return err
	}
	return nil
}

// RemovePermission deletes one edge
func (r *FileRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.data.Roles[roleID]; !ok {
		return ErrRoleNotFound
	}

	previous := r.data.RolePermissions[roleID]
	remaining := make([]uuid.UUID, 0, len(previous))
	for _, id := range previous {
		if id != permissionID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == len(previous) {
		return ErrPermissionNotAssigned
	}
	r.data.RolePermissions[roleID] = remaining

	if err := r.save(); err != nil {
		// Rollback
		r.data.RolePermissions[roleID] = previous
		return err
	}
	return nil
}
