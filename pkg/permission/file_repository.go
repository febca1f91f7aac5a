package permission

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

// filePermissionData represents all permission data stored in the file
type filePermissionData struct {
	Permissions map[uuid.UUID]Permission `json:"permissions"`
}

// FilePermissionRepository implements PermissionRepository using file-based storage
type FilePermissionRepository struct {
	dataDir string
	data    *filePermissionData
	mutex   sync.RWMutex
}

// NewFilePermissionRepository creates a new file-based permission repository
func NewFilePermissionRepository(dataDir string) (*FilePermissionRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FilePermissionRepository{
		dataDir: dataDir,
		data: &filePermissionData{
			Permissions: make(map[uuid.UUID]Permission),
		},
	}

	if err := utils.LoadJSONFile(repo.path(), repo.data); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if repo.data.Permissions == nil {
		repo.data.Permissions = make(map[uuid.UUID]Permission)
	}

	return repo, nil
}

func (r *FilePermissionRepository) path() string {
	return filepath.Join(r.dataDir, "permissions.json")
}

// CreatePermission creates a new permission
func (r *FilePermissionRepository) CreatePermission(ctx context.Context, params CreatePermissionParams) (Permission, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p := Permission{
		ID:        uuid.New(),
		Name:      params.Name,
		Metadata:  cloneMetadata(params.Metadata),
		CreatedAt: time.Now().UTC(),
	}
	r.data.Permissions[p.ID] = p

	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		// Rollback
		delete(r.data.Permissions, p.ID)
		return Permission{}, fmt.Errorf("failed to save: %w", err)
	}

	return p.Clone(), nil
}

// GetPermission retrieves a permission by ID
func (r *FilePermissionRepository) GetPermission(ctx context.Context, id uuid.UUID) (Permission, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, ok := r.data.Permissions[id]
	if !ok {
		return Permission{}, ErrPermissionNotFound
	}
	return p.Clone(), nil
}

// FindPermissions returns all permissions
func (r *FilePermissionRepository) FindPermissions(ctx context.Context) ([]Permission, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	perms := make([]Permission, 0, len(r.data.Permissions))
	for _, p := range r.data.Permissions {
		perms = append(perms, p.Clone())
	}
	SortPermissions(perms)
	return perms, nil
}

// FindPermissionsByIDs returns the stored permissions among ids
func (r *FilePermissionRepository) FindPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]Permission, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	perms := make([]Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.data.Permissions[id]; ok {
			perms = append(perms, p.Clone())
		}
	}
	SortPermissions(perms)
	return perms, nil
}

// FindMissing returns the ids that have no stored permission
func (r *FilePermissionRepository) FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := r.data.Permissions[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
