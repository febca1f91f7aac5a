package userlink

import (
	"github.com/google/uuid"
)

// User is the slice of the identity subsystem's user record this module reads and writes.
// Only RoleID is ever modified here.
type User struct {
	ID     uuid.UUID  `json:"id"`
	Email  string     `json:"email"`
	Name   string     `json:"name,omitempty"`
	RoleID *uuid.UUID `json:"role_id"`
}

// HasRole reports whether the user currently holds roleID
func (u User) HasRole(roleID uuid.UUID) bool {
	return u.RoleID != nil && *u.RoleID == roleID
}

func (u User) clone() User {
	if u.RoleID != nil {
		id := *u.RoleID
		u.RoleID = &id
	}
	return u
}
