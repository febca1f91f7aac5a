package userlink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-rbac/pkg/utils"
)

// fileUserData represents all user data stored in the file
type fileUserData struct {
	Users map[uuid.UUID]User `json:"users"`
}

// FileUserLinkRepository implements UserLinkRepository using file-based storage
type FileUserLinkRepository struct {
	dataDir string
	data    *fileUserData
	mutex   sync.RWMutex
}

// NewFileUserLinkRepository creates a new file-based user link repository
func NewFileUserLinkRepository(dataDir string) (*FileUserLinkRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileUserLinkRepository{
		dataDir: dataDir,
		data: &fileUserData{
			Users: make(map[uuid.UUID]User),
		},
	}

	if err := utils.LoadJSONFile(repo.path(), repo.data); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if repo.data.Users == nil {
		repo.data.Users = make(map[uuid.UUID]User)
	}

	return repo, nil
}

func (r *FileUserLinkRepository) path() string {
	return filepath.Join(r.dataDir, "users.json")
}

// GetUser retrieves a user by ID
func (r *FileUserLinkRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, ok := r.data.Users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user.clone(), nil
}

// FindUsers returns all users
func (r *FileUserLinkRepository) FindUsers(ctx context.Context) ([]User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]User, 0, len(r.data.Users))
	for _, user := range r.data.Users {
		users = append(users, user.clone())
	}
	sortUsers(users)
	return users, nil
}

// FindUsersByRole returns the users whose role_id equals roleID
func (r *FileUserLinkRepository) FindUsersByRole(ctx context.Context, roleID uuid.UUID) ([]User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := []User{}
	for _, user := range r.data.Users {
		if user.HasRole(roleID) {
			users = append(users, user.clone())
		}
	}
	sortUsers(users)
	return users, nil
}

// CountUsersByRole returns the number of holders per role id
func (r *FileUserLinkRepository) CountUsersByRole(ctx context.Context) (map[uuid.UUID]int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, user := range r.data.Users {
		if user.RoleID != nil {
			counts[*user.RoleID]++
		}
	}
	return counts, nil
}

// SetRole sets the user's role_id
func (r *FileUserLinkRepository) SetRole(ctx context.Context, userID, roleID uuid.UUID) (User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.data.Users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}

	previous := user.clone()
	id := roleID
	user.RoleID = &id
	r.data.Users[userID] = user

	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		// Rollback
		r.data.Users[userID] = previous
		return User{}, fmt.Errorf("failed to save: %w", err)
	}
	return user.clone(), nil
}

// ClearRole nulls the user's role_id if it equals expectedRoleID
func (r *FileUserLinkRepository) ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.data.Users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !user.HasRole(expectedRoleID) {
		return ErrRoleNotAssigned
	}

	previous := user.clone()
	user.RoleID = nil
	r.data.Users[userID] = user

	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		// Rollback
		r.data.Users[userID] = previous
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

// ClearRoleForAll nulls role_id on every holder of roleID
func (r *FileUserLinkRepository) ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var cleared []uuid.UUID
	for id, user := range r.data.Users {
		if user.HasRole(roleID) {
			user.RoleID = nil
			r.data.Users[id] = user
			cleared = append(cleared, id)
		}
	}
	if len(cleared) == 0 {
		return 0, nil
	}

	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		// Rollback
		for _, id := range cleared {
			user := r.data.Users[id]
			rid := roleID
			user.RoleID = &rid
			r.data.Users[id] = user
		}
		return 0, fmt.Errorf("failed to save: %w", err)
	}
	return len(cleared), nil
}

// SeedUser adds a user directly (for testing/initialization)
func (r *FileUserLinkRepository) SeedUser(user User) (User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.data.Users[user.ID] = user.clone()

	if err := utils.SaveJSONFileAtomic(r.path(), r.data); err != nil {
		delete(r.data.Users, user.ID)
		return User{}, fmt.Errorf("failed to save: %w", err)
	}
	return user.clone(), nil
}
