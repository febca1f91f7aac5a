package role

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/userlink"
)

type testFixture struct {
	service     *RoleService
	repo        *InMemoryRoleRepository
	permissions *permission.PermissionService
	users       *userlink.InMemoryUserLinkRepository
	userLinks   *userlink.UserLinkService
}

func setupService(t *testing.T) testFixture {
	t.Helper()
	repo := NewInMemoryRoleRepository()
	permissions := permission.NewPermissionService(permission.NewInMemoryPermissionRepository())
	users := userlink.NewInMemoryUserLinkRepository()
	userLinks := userlink.NewUserLinkService(users)

	return testFixture{
		service:     NewRoleService(repo, WithPermissionLookup(permissions), WithUserLister(userLinks)),
		repo:        repo,
		permissions: permissions,
		users:       users,
		userLinks:   userLinks,
	}
}

func (f testFixture) createPermission(t *testing.T, name string) permission.Permission {
	t.Helper()
	p, err := f.permissions.CreatePermission(context.Background(), name, permission.Metadata{"/" + name: true})
	require.NoError(t, err)
	return p
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	tests := []struct {
		name     string
		roleName string
		wantName string
		wantCode rbacerrors.ErrorCode
	}{
		{name: "valid name", roleName: "editor", wantName: "editor"},
		{name: "name is trimmed", roleName: "  viewer ", wantName: "viewer"},
		{name: "empty name", roleName: "", wantCode: rbacerrors.ErrCodeMissingRequired},
		{name: "blank name", roleName: "   ", wantCode: rbacerrors.ErrCodeMissingRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := f.service.CreateRole(ctx, tt.roleName)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, rbacerrors.IsCode(err, tt.wantCode))
				assert.True(t, rbacerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, role.ID)
			assert.Equal(t, tt.wantName, role.Name)

			ids, err := f.repo.FindRolePermissionIDs(ctx, role.ID)
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestGetRole(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	read := f.createPermission(t, "read")
	write := f.createPermission(t, "write")
	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)
	_, err = f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{write.ID, read.ID})
	require.NoError(t, err)
	alice := f.users.SeedUser(userlink.User{Email: "alice@example.com", RoleID: &editor.ID})

	t.Run("no relations", func(t *testing.T) {
		role, err := f.service.GetRole(ctx, editor.ID, Relations{})
		require.NoError(t, err)
		assert.Equal(t, "editor", role.Name)
		assert.Nil(t, role.Permissions)
		assert.Nil(t, role.Users)
	})

	t.Run("all relations", func(t *testing.T) {
		role, err := f.service.GetRole(ctx, editor.ID, AllRelations)
		require.NoError(t, err)
		require.Len(t, role.Permissions, 2)
		assert.Equal(t, "read", role.Permissions[0].Name)
		assert.Equal(t, "write", role.Permissions[1].Name)
		require.Len(t, role.Users, 1)
		assert.Equal(t, alice.ID, role.Users[0].ID)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.service.GetRole(ctx, uuid.New(), AllRelations)
		require.Error(t, err)
		assert.True(t, rbacerrors.IsCode(err, rbacerrors.ErrCodeRoleNotFound))
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("relations without resolvers", func(t *testing.T) {
		bare := NewRoleService(f.repo)
		_, err := bare.GetRole(ctx, editor.ID, Relations{Permissions: true})
		require.Error(t, err)
		assert.Equal(t, rbacerrors.ErrCodeInternal, rbacerrors.GetCode(err))
	})
}

func TestReplacePermissions(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	read := f.createPermission(t, "read")
	write := f.createPermission(t, "write")
	publish := f.createPermission(t, "publish")
	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)

	t.Run("replaces whole set", func(t *testing.T) {
		_, err := f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID, write.ID})
		require.NoError(t, err)

		role, err := f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{publish.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{publish.ID}, role.PermissionIDs())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		role, err := f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID, read.ID, write.ID})
		require.NoError(t, err)
		assert.Len(t, role.Permissions, 2)
		assert.ElementsMatch(t, []uuid.UUID{read.ID, write.ID}, role.PermissionIDs())
	})

	t.Run("empty set clears", func(t *testing.T) {
		role, err := f.service.ReplacePermissions(ctx, editor.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, role.Permissions)
	})

	t.Run("unknown id rejects whole call", func(t *testing.T) {
		_, err := f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID})
		require.NoError(t, err)

		unknown := uuid.New()
		_, err = f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{write.ID, unknown})
		require.Error(t, err)
		assert.True(t, rbacerrors.IsValidation(err))
		assert.True(t, rbacerrors.IsCode(err, rbacerrors.ErrCodeUnknownReference))
		assert.Equal(t, []string{unknown.String()}, rbacerrors.GetDetails(err)["missing_permission_ids"])

		ids, err := f.repo.FindRolePermissionIDs(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{read.ID}, ids)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.service.ReplacePermissions(ctx, uuid.New(), []uuid.UUID{read.ID})
		require.Error(t, err)
		assert.True(t, rbacerrors.IsNotFound(err))
	})
}

func TestRemovePermission(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	read := f.createPermission(t, "read")
	write := f.createPermission(t, "write")
	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)
	_, err = f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{read.ID, write.ID})
	require.NoError(t, err)

	tests := []struct {
		name         string
		roleID       uuid.UUID
		permissionID uuid.UUID
		wantCode     rbacerrors.ErrorCode
	}{
		{name: "removes edge", roleID: editor.ID, permissionID: read.ID},
		{name: "edge already gone", roleID: editor.ID, permissionID: read.ID, wantCode: rbacerrors.ErrCodeNotFound},
		{name: "unknown role", roleID: uuid.New(), permissionID: write.ID, wantCode: rbacerrors.ErrCodeRoleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.RemovePermission(ctx, tt.roleID, tt.permissionID)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, rbacerrors.GetCode(err))
				assert.True(t, rbacerrors.IsNotFound(err))
				return
			}
			require.NoError(t, err)
		})
	}

	ids, err := f.repo.FindRolePermissionIDs(ctx, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{write.ID}, ids)
}

func TestListRoles(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	read := f.createPermission(t, "read")
	write := f.createPermission(t, "write")
	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)
	viewer, err := f.service.CreateRole(ctx, "viewer")
	require.NoError(t, err)

	_, err = f.service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{write.ID, read.ID})
	require.NoError(t, err)
	_, err = f.service.ReplacePermissions(ctx, viewer.ID, []uuid.UUID{read.ID})
	require.NoError(t, err)

	f.users.SeedUser(userlink.User{Email: "a@example.com", RoleID: &editor.ID})
	f.users.SeedUser(userlink.User{Email: "b@example.com", RoleID: &editor.ID})
	f.users.SeedUser(userlink.User{Email: "c@example.com"})

	summaries, err := f.service.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "editor", summaries[0].Name)
	assert.Equal(t, []string{"read", "write"}, summaries[0].PermissionNames)
	assert.Equal(t, 2, summaries[0].UsersCount)

	assert.Equal(t, "viewer", summaries[1].Name)
	assert.Equal(t, []string{"read"}, summaries[1].PermissionNames)
	assert.Equal(t, 0, summaries[1].UsersCount)
}

func TestDeleteRole(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)
	holder := f.users.SeedUser(userlink.User{Email: "holder@example.com", RoleID: &editor.ID})

	require.NoError(t, f.service.DeleteRole(ctx, editor.ID))

	exists, err := f.service.RoleExists(ctx, editor.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Users are left alone
	user, err := f.users.GetUser(ctx, holder.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole(editor.ID))

	err = f.service.DeleteRole(ctx, editor.ID)
	require.Error(t, err)
	assert.True(t, rbacerrors.IsCode(err, rbacerrors.ErrCodeRoleNotFound))
}

func TestRoleExists(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	editor, err := f.service.CreateRole(ctx, "editor")
	require.NoError(t, err)

	exists, err := f.service.RoleExists(ctx, editor.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.service.RoleExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRoleRepository(t *testing.T) {
	tests := []struct {
		name            string
		persistenceType string
		config          RepositoryConfig
		wantErr         bool
	}{
		{name: "memory", persistenceType: "memory"},
		{name: "inmem alias", persistenceType: "inmem"},
		{name: "file", persistenceType: "file", config: RepositoryConfig{DataDir: t.TempDir()}},
		{name: "file without dir", persistenceType: "file", wantErr: true},
		{name: "postgres without pool", persistenceType: "postgres", wantErr: true},
		{name: "unknown", persistenceType: "mongo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewRoleRepository(tt.persistenceType, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, repo)
		})
	}
}
