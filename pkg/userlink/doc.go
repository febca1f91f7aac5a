// Package userlink adapts the identity subsystem's user records for simple-rbac.
//
// Users are owned elsewhere; this package only reads them and writes the single
// nullable role_id column. A user holds at most one role, and SetRole simply
// overwrites whatever was there (last write wins).
//
// ClearRole is a compare-and-clear: it only nulls role_id while the user still
// holds the role the caller expects, so a stale "remove from role" action can
// never detach a user who was already moved to another role.
//
//	repo := userlink.NewInMemoryUserLinkRepository()
//	alice := repo.SeedUser(userlink.User{Email: "alice@example.com"})
//
//	service := userlink.NewUserLinkService(repo)
//	user, err := service.SetRole(ctx, alice.ID, editorID)
//	err = service.ClearRole(ctx, alice.ID, editorID)
package userlink
