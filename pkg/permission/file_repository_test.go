package permission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePermissionRepository_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewFilePermissionRepository(dir)
	require.NoError(t, err)

	created, err := repo.CreatePermission(ctx, CreatePermissionParams{
		Name:     "products",
		Metadata: Metadata{"/products": true},
	})
	require.NoError(t, err)
	assert.FileExists(t, repo.path())

	// Reload from disk
	reloaded, err := NewFilePermissionRepository(dir)
	require.NoError(t, err)

	p, err := reloaded.GetPermission(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "products", p.Name)
	assert.Equal(t, Metadata{"/products": true}, p.Metadata)

	perms, err := reloaded.FindPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestFilePermissionRepository_NotFound(t *testing.T) {
	repo, err := NewFilePermissionRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.GetPermission(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestFilePermissionRepository_FindMissing(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFilePermissionRepository(t.TempDir())
	require.NoError(t, err)

	p, err := repo.CreatePermission(ctx, CreatePermissionParams{Name: "orders"})
	require.NoError(t, err)

	unknown := uuid.New()
	missing, err := repo.FindMissing(ctx, []uuid.UUID{p.ID, unknown})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{unknown}, missing)
}
