package role

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/testutil"
)

func TestPostgresRoleRepository(t *testing.T) {
	pool := testutil.SetupTestDatabase(t)
	repo := NewPostgresRoleRepository(pool)
	permissions := permission.NewPostgresPermissionRepository(pool)
	ctx := context.Background()

	read, err := permissions.CreatePermission(ctx, permission.CreatePermissionParams{Name: "read"})
	require.NoError(t, err)
	write, err := permissions.CreatePermission(ctx, permission.CreatePermissionParams{Name: "write"})
	require.NoError(t, err)

	editor, err := repo.CreateRole(ctx, "editor")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, editor.ID)

	t.Run("GetRole", func(t *testing.T) {
		role, err := repo.GetRole(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, "editor", role.Name)

		_, err = repo.GetRole(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("ReplacePermissions", func(t *testing.T) {
		require.NoError(t, repo.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID, write.ID}))
		ids, err := repo.FindRolePermissionIDs(ctx, editor.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{read.ID, write.ID}, ids)

		require.NoError(t, repo.ReplacePermissions(ctx, editor.ID, []uuid.UUID{write.ID}))
		ids, err = repo.FindRolePermissionIDs(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{write.ID}, ids)
	})

	t.Run("ReplacePermissions rolls back on unknown permission", func(t *testing.T) {
		err := repo.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID, uuid.New()})
		assert.ErrorIs(t, err, ErrUnknownPermission)

		ids, err := repo.FindRolePermissionIDs(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{write.ID}, ids)
	})

	t.Run("ReplacePermissions unknown role", func(t *testing.T) {
		err := repo.ReplacePermissions(ctx, uuid.New(), []uuid.UUID{read.ID})
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("FindRolePermissionIDs", func(t *testing.T) {
		viewer, err := repo.CreateRole(ctx, "viewer")
		require.NoError(t, err)

		ids, err := repo.FindRolePermissionIDs(ctx, viewer.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)

		_, err = repo.FindRolePermissionIDs(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRoleNotFound)

		all, err := repo.FindAllRolePermissionIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[uuid.UUID][]uuid.UUID{editor.ID: {write.ID}}, all)
	})

	t.Run("RemovePermission", func(t *testing.T) {
		require.NoError(t, repo.RemovePermission(ctx, editor.ID, write.ID))
		assert.ErrorIs(t, repo.RemovePermission(ctx, editor.ID, write.ID), ErrPermissionNotAssigned)
		assert.ErrorIs(t, repo.RemovePermission(ctx, uuid.New(), write.ID), ErrRoleNotFound)
	})

	t.Run("DeleteRole", func(t *testing.T) {
		require.NoError(t, repo.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID}))
		require.NoError(t, repo.DeleteRole(ctx, editor.ID))
		assert.ErrorIs(t, repo.DeleteRole(ctx, editor.ID), ErrRoleNotFound)

		all, err := repo.FindAllRolePermissionIDs(ctx)
		require.NoError(t, err)
		assert.NotContains(t, all, editor.ID)
	})

	t.Run("FindRoles", func(t *testing.T) {
		roles, err := repo.FindRoles(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, "viewer", roles[0].Name)
	})
}
