// Package permission provides the Permission Store for simple-rbac.
//
// A Permission is an opaque, immutable capability record: a name plus a
// metadata flag map that the host system matches against routes. This package
// only creates, lists and looks up permissions; roles reference them by id.
//
// # Basic Usage
//
//	repo := permission.NewInMemoryPermissionRepository()
//	service := permission.NewPermissionService(repo)
//
//	p, err := service.CreatePermission(ctx, "products", permission.Metadata{"/products": true})
//
//	// Check references before linking them to a role
//	missing, err := service.FindMissing(ctx, []uuid.UUID{p.ID, otherID})
//
// # Storage
//
// Three repositories implement PermissionRepository: PostgreSQL (pgxpool),
// in-memory and a JSON file. NewPermissionRepository picks one by
// persistence type.
package permission
