package api

import (
	"time"

	"github.com/google/uuid"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/permission"
)

// CreateRoleRequest is the body of POST /roles
type CreateRoleRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreatePermissionRequest is the body of POST /permissions
type CreatePermissionRequest struct {
	Name  string `json:"name" validate:"required"`
	Route string `json:"route"`
}

// AssignPermissionsRequest is the body of PUT /roles/{id}/permissions
type AssignPermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" validate:"required,dive,required"`
}

// PermissionResponse represents a permission
type PermissionResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Metadata  permission.Metadata `json:"metadata"`
	CreatedAt time.Time           `json:"created_at"`
}

// UserResponse represents a user and the role it holds
type UserResponse struct {
	ID     uuid.UUID  `json:"id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	RoleID *uuid.UUID `json:"role_id"`
}

// RoleResponse represents a role with its permissions and users
type RoleResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	CreatedAt   time.Time            `json:"created_at"`
	Permissions []PermissionResponse `json:"permissions"`
	Users       []UserResponse       `json:"users"`
}

// RoleSummaryResponse is one entry of GET /roles
type RoleSummaryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	PermissionNames []string  `json:"permission_names"`
	UsersCount      int       `json:"users_count"`
}

// BatchFailureResponse explains why one id was not associated
type BatchFailureResponse struct {
	ID      string               `json:"id"`
	Reason  rbacerrors.Kind      `json:"reason"`
	Code    rbacerrors.ErrorCode `json:"code"`
	Message string               `json:"message"`
}

// BatchResponse is the body returned by POST /roles/{id}/users
type BatchResponse struct {
	Successes []UserResponse         `json:"successes"`
	Failures  []BatchFailureResponse `json:"failures"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    rbacerrors.ErrorCode   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
