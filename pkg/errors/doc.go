// Package errors provides structured error handling with error codes for simple-rbac.
//
// Every service in this module reports failures through the Error type so that
// callers can branch on one of three kinds without string matching:
//
//   - ValidationError: malformed or empty input, unknown permission references
//   - NotFound: a role, permission or user id does not exist
//   - Conflict: a relationship precondition does not hold
//
// Anything else is reported as an internal error and usually wraps the
// underlying store failure.
//
// # Basic Usage
//
//	import rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
//
//	// Create a structured error
//	err := rbacerrors.New(rbacerrors.ErrCodeRoleNotFound, "role not found")
//
//	// Wrap a store failure
//	err := rbacerrors.InternalWrap(dbErr, "failed to list roles")
//
//	// Inspect
//	if rbacerrors.IsNotFound(err) {
//		// ...
//	}
//
// # HTTP Mapping
//
//	status := rbacerrors.MapErrorCodeToHTTPStatus(rbacerrors.GetCode(err))
//
// Validation kinds map to 400, UNAUTHORIZED to 401, not-found kinds to 404,
// conflict kinds to 409 and everything else to 500.
package errors
