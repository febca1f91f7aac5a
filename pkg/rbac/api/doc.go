// Package api is the HTTP binding of the RBAC service.
//
// Routes, relative to the mount prefix (default /api/rbac):
//
//	GET    /roles                                list roles with permission names and users count
//	POST   /roles                                create role
//	GET    /roles/{id}                           role with permissions and users
//	DELETE /roles/{id}                           delete role
//	PUT    /roles/{id}/permissions               replace the permission set
//	DELETE /roles/{id}/permissions/{permissionId}
//	POST   /roles/{id}/users                     associate users; body is a JSON array of ids
//	DELETE /roles/{id}/users/{userId}            disassociate user
//	GET    /permissions
//	POST   /permissions                          {"name": "...", "route": "/products"}
//	GET    /users
//
// Errors are rendered as {"code", "message", "details"} with the status
// given by the error code.
package api
