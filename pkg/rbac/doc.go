// Package rbac coordinates the role, permission and user link stores.
//
// The Service owns the rules that span stores: full-replace permission
// assignment, batch user association with partial failure reporting,
// guarded disassociation and the role delete policy.
//
// # Basic Usage
//
//	svc := rbac.NewService(roleService, permissionService, userLinkService,
//		rbac.WithDeletePolicy(rbac.DeletePolicyReject),
//		rbac.WithMetrics(m),
//	)
//
//	result, err := svc.AssociateUsers(ctx, roleID, []string{u1, u2})
//	if err != nil {
//		// unknown role or malformed input; no user was touched
//	}
//	for _, f := range result.Failures {
//		fmt.Printf("%s: %s\n", f.ID, f.Reason)
//	}
//
// # Delete Policies
//
//   - orphan (default): users keep a role_id pointing at the deleted role
//   - reject: deletion fails with ROLE_IN_USE while any user holds the role
//   - detach: holders are cleared first, then the role is deleted
package rbac
