package role

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-rbac/pkg/permission"
	"github.com/tendant/simple-rbac/pkg/userlink"
)

// Role represents a named bundle of permissions.
// Permissions and Users are only filled when the matching relation is requested.
type Role struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	CreatedAt   time.Time               `json:"created_at"`
	Permissions []permission.Permission `json:"permissions,omitempty"`
	Users       []userlink.User         `json:"users,omitempty"`
}

// Relations selects which relations GetRole resolves
type Relations struct {
	Permissions bool
	Users       bool
}

// AllRelations resolves both permissions and users
var AllRelations = Relations{Permissions: true, Users: true}

// RoleSummary is the reporting view returned by ListRoles. It is computed at read time.
type RoleSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	PermissionNames []string  `json:"permission_names"`
	UsersCount      int       `json:"users_count"`
}

// PermissionIDs returns the ids of the loaded permissions
func (r Role) PermissionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Permissions))
	for i, p := range r.Permissions {
		ids[i] = p.ID
	}
	return ids
}
