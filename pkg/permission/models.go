package permission

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Metadata is an opaque flag map attached to a permission, usually a route
// path mapped to true (e.g. {"/products": true}).
type Metadata map[string]bool

// Permission represents a named capability that can be granted to roles
type Permission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePermissionParams contains parameters for creating a new permission
type CreatePermissionParams struct {
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Clone returns a copy of p that shares no map with the original
func (p Permission) Clone() Permission {
	p.Metadata = cloneMetadata(p.Metadata)
	return p
}

func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}
