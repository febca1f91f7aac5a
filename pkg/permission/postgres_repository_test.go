package permission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-rbac/pkg/testutil"
)

func TestPostgresPermissionRepository(t *testing.T) {
	pool := testutil.SetupTestDatabase(t)
	repo := NewPostgresPermissionRepository(pool)
	ctx := context.Background()

	products, err := repo.CreatePermission(ctx, CreatePermissionParams{
		Name:     "products",
		Metadata: Metadata{"/products": true},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, products.ID)
	assert.Equal(t, Metadata{"/products": true}, products.Metadata)

	orders, err := repo.CreatePermission(ctx, CreatePermissionParams{Name: "orders"})
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, orders.Metadata)

	t.Run("GetPermission", func(t *testing.T) {
		p, err := repo.GetPermission(ctx, products.ID)
		require.NoError(t, err)
		assert.Equal(t, "products", p.Name)
		assert.True(t, p.Metadata["/products"])

		_, err = repo.GetPermission(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrPermissionNotFound)
	})

	t.Run("FindPermissions", func(t *testing.T) {
		perms, err := repo.FindPermissions(ctx)
		require.NoError(t, err)
		require.Len(t, perms, 2)
		assert.Equal(t, "orders", perms[0].Name)
		assert.Equal(t, "products", perms[1].Name)
	})

	t.Run("FindPermissionsByIDs", func(t *testing.T) {
		perms, err := repo.FindPermissionsByIDs(ctx, []uuid.UUID{products.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, perms, 1)
		assert.Equal(t, products.ID, perms[0].ID)
	})

	t.Run("FindMissing", func(t *testing.T) {
		unknown := uuid.New()
		missing, err := repo.FindMissing(ctx, []uuid.UUID{products.ID, unknown, orders.ID})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{unknown}, missing)

		missing, err = repo.FindMissing(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, missing)
	})
}
