// Package role provides the Role Store: named roles, their permission sets and
// the read-time views built from them.
//
// This package manages roles with PostgreSQL, file-based and in-memory storage
// backends through the RoleRepository interface.
//
// # Overview
//
// The role package provides:
//   - Role lifecycle management (create, get, list, delete)
//   - Full-replace permission assignment with reference validation
//   - Single permission removal
//   - Role summaries with permission names and holder counts
//
// # Basic Usage
//
//	import "github.com/tendant/simple-rbac/pkg/role"
//
//	repo := role.NewInMemoryRoleRepository()
//	service := role.NewRoleService(repo,
//		role.WithPermissionLookup(permissionService),
//		role.WithUserLister(userLinkService),
//	)
//
//	// Create a role
//	editor, err := service.CreateRole(ctx, "editor")
//
//	// Replace its permission set
//	editor, err = service.ReplacePermissions(ctx, editor.ID, []uuid.UUID{readID, writeID})
//
//	// Load the role with permissions and holders
//	editor, err = service.GetRole(ctx, editor.ID, role.AllRelations)
//
// # Permission Sets
//
// A role's permissions form a set. ReplacePermissions collapses duplicate ids
// and rejects the whole call when any id is unknown:
//
//	_, err := service.ReplacePermissions(ctx, roleID, ids)
//	if rbacerrors.IsCode(err, rbacerrors.ErrCodeUnknownReference) {
//		missing := rbacerrors.GetDetails(err)["missing_permission_ids"]
//		...
//	}
//
// # Related Packages
//
//   - pkg/permission - Permission Store
//   - pkg/userlink - User role link
//   - pkg/rbac - Association service built on this package
package role
