// Package audit records who did what to which resource. Records are
// append-only: nothing in the engine mutates or deletes them.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what the actor did.
type Action string

// Audit actions.
const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"
)

// Resource identifies what kind of entity was acted on.
type Resource string

// Audit resources.
const (
	ResourceTask         Resource = "TASK"
	ResourceUser         Resource = "USER"
	ResourceOrganization Resource = "ORGANIZATION"
	ResourceAuth         Resource = "AUTH"
)

// Record is one immutable audit trail entry.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Action     Action     `json:"action"`
	Resource   Resource   `json:"resource"`
	ResourceID *uuid.UUID `json:"resourceId,omitempty"`
	Details    *string    `json:"details,omitempty"`
	IPAddress  *string    `json:"ipAddress,omitempty"`
	UserAgent  *string    `json:"userAgent,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
