package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role names. Privilege comparisons always use Level, never the name.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleViewer = "Viewer"
)

// Role levels. Seeded once; the ordering is load-bearing for every
// authorization decision in the system.
const (
	LevelViewer = 1
	LevelAdmin  = 2
	LevelOwner  = 3
)

// Role represents one of the three seeded privilege levels.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AtLeast reports whether a principal at level has the required level.
func AtLeast(level, required int) bool {
	return level >= required
}

// StrictlyBelow reports whether a is ranked strictly below b. Used for
// "cannot assign a role at or above your own level".
func StrictlyBelow(a, b int) bool {
	return a < b
}
