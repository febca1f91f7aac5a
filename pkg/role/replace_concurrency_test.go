package role

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/testutil"
	"golang.org/x/sync/errgroup"
)

func permissionSetKey(ids []uuid.UUID) string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}

// assertReplaceIsAtomic races writers that each replace the role's permissions
// with their own set against readers, and checks that every read returns one
// complete submitted set.
func assertReplaceIsAtomic(t *testing.T, repo RoleRepository, roleID uuid.UUID, sets [][]uuid.UUID, rounds int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.ReplacePermissions(ctx, roleID, sets[0]))

	allowed := make(map[string]bool, len(sets))
	for _, set := range sets {
		allowed[permissionSetKey(set)] = true
	}

	var writersDone atomic.Bool
	var reads atomic.Int64

	var writers errgroup.Group
	for _, set := range sets {
		writers.Go(func() error {
			for i := 0; i < rounds; i++ {
				if err := repo.ReplacePermissions(ctx, roleID, set); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var readers errgroup.Group
	for r := 0; r < 4; r++ {
		readers.Go(func() error {
			for {
				ids, err := repo.FindRolePermissionIDs(ctx, roleID)
				if err != nil {
					return err
				}
				if key := permissionSetKey(ids); !allowed[key] {
					return fmt.Errorf("observed partial permission set %q", key)
				}
				reads.Add(1)
				if writersDone.Load() {
					return nil
				}
			}
		})
	}

	writerErr := writers.Wait()
	writersDone.Store(true)
	require.NoError(t, writerErr)
	require.NoError(t, readers.Wait())
	assert.Positive(t, reads.Load())

	final, err := repo.FindRolePermissionIDs(ctx, roleID)
	require.NoError(t, err)
	assert.True(t, allowed[permissionSetKey(final)])
}

func disjointSets(n, size int) [][]uuid.UUID {
	sets := make([][]uuid.UUID, n)
	for i := range sets {
		for j := 0; j < size; j++ {
			sets[i] = append(sets[i], uuid.New())
		}
	}
	return sets
}

func TestInMemoryRoleRepository_ReplaceIsAtomic(t *testing.T) {
	repo := NewInMemoryRoleRepository()
	editor, err := repo.CreateRole(context.Background(), "editor")
	require.NoError(t, err)

	assertReplaceIsAtomic(t, repo, editor.ID, disjointSets(4, 5), 200)
}

func TestFileRoleRepository_ReplaceIsAtomic(t *testing.T) {
	repo, err := NewFileRoleRepository(t.TempDir())
	require.NoError(t, err)
	editor, err := repo.CreateRole(context.Background(), "editor")
	require.NoError(t, err)

	assertReplaceIsAtomic(t, repo, editor.ID, disjointSets(4, 5), 25)
}

func TestPostgresRoleRepository_ReplaceIsAtomic(t *testing.T) {
	pool := testutil.SetupTestDatabase(t)
	repo := NewPostgresRoleRepository(pool)
	permissions := permission.NewPostgresPermissionRepository(pool)
	ctx := context.Background()

	sets := make([][]uuid.UUID, 4)
	for i := range sets {
		for j := 0; j < 3; j++ {
			p, err := permissions.CreatePermission(ctx, permission.CreatePermissionParams{Name: fmt.Sprintf("perm-%d-%d", i, j)})
			require.NoError(t, err)
			sets[i] = append(sets[i], p.ID)
		}
	}

	editor, err := repo.CreateRole(ctx, "editor")
	require.NoError(t, err)

	assertReplaceIsAtomic(t, repo, editor.ID, sets, 10)
}
