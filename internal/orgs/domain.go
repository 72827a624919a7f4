// Package orgs models the tenant hierarchy and computes the set of
// organizations a principal may act within.
package orgs

import (
	"time"

	"github.com/google/uuid"
)

// Organization is one tenant node. Organizations form a forest: ParentID is
// nil for roots and otherwise references an existing node; cycles are a
// configuration error surfaced by the closure resolver.
type Organization struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
