package permission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
)

func TestCreatePermission(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	tests := []struct {
		name     string
		permName string
		metadata Metadata
		wantName string
		wantErr  bool
	}{
		{
			name:     "with route metadata",
			permName: "products",
			metadata: Metadata{"/products": true},
			wantName: "products",
		},
		{
			name:     "nil metadata",
			permName: "orders",
			wantName: "orders",
		},
		{
			name:     "name is trimmed",
			permName: "  reports ",
			wantName: "reports",
		},
		{
			name:     "empty name",
			permName: "",
			wantErr:  true,
		},
		{
			name:     "blank name",
			permName: "   ",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := service.CreatePermission(ctx, tt.permName, tt.metadata)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, rbacerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, p.ID)
			assert.Equal(t, tt.wantName, p.Name)
			assert.NotNil(t, p.Metadata)
			for k, v := range tt.metadata {
				assert.Equal(t, v, p.Metadata[k])
			}
		})
	}
}

func TestCreatePermission_MetadataIsCopied(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	metadata := Metadata{"/products": true}
	p, err := service.CreatePermission(ctx, "products", metadata)
	require.NoError(t, err)

	metadata["/orders"] = true

	stored, err := service.GetPermission(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Metadata{"/products": true}, stored.Metadata)
}

func TestGetPermission(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	created, err := service.CreatePermission(ctx, "products", Metadata{"/products": true})
	require.NoError(t, err)

	t.Run("existing", func(t *testing.T) {
		p, err := service.GetPermission(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, p.ID)
		assert.Equal(t, "products", p.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := service.GetPermission(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, rbacerrors.IsNotFound(err))
		assert.ErrorIs(t, err, ErrPermissionNotFound)
	})
}

func TestListPermissions(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	perms, err := service.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, perms)

	for _, name := range []string{"orders", "customers", "products"} {
		_, err := service.CreatePermission(ctx, name, nil)
		require.NoError(t, err)
	}

	perms, err = service.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 3)
	assert.Equal(t, "customers", perms[0].Name)
	assert.Equal(t, "orders", perms[1].Name)
	assert.Equal(t, "products", perms[2].Name)
}

func TestFindMissing(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	p, err := service.CreatePermission(ctx, "products", nil)
	require.NoError(t, err)
	unknown := uuid.New()

	missing, err := service.FindMissing(ctx, []uuid.UUID{p.ID, unknown, unknown})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{unknown}, missing)

	missing, err = service.FindMissing(ctx, []uuid.UUID{p.ID})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGetPermissions(t *testing.T) {
	ctx := context.Background()
	service := NewPermissionService(NewInMemoryPermissionRepository())

	products, err := service.CreatePermission(ctx, "products", nil)
	require.NoError(t, err)
	orders, err := service.CreatePermission(ctx, "orders", nil)
	require.NoError(t, err)

	perms, err := service.GetPermissions(ctx, []uuid.UUID{products.ID, uuid.New(), orders.ID, products.ID})
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, orders.ID, perms[0].ID)
	assert.Equal(t, products.ID, perms[1].ID)
}

func TestNewPermissionRepository(t *testing.T) {
	repo, err := NewPermissionRepository("memory", RepositoryConfig{})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryPermissionRepository{}, repo)

	repo, err = NewPermissionRepository("file", RepositoryConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FilePermissionRepository{}, repo)

	_, err = NewPermissionRepository("postgres", RepositoryConfig{})
	assert.Error(t, err)

	_, err = NewPermissionRepository("mongo", RepositoryConfig{})
	assert.Error(t, err)
}
