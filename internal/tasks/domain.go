package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is the task workflow state.
type Status string

// Task statuses.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority ranks task urgency.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Category buckets tasks for filtering.
type Category string

// Task categories.
const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
	CategoryOther    Category = "Other"
)

// Task is owned by exactly one organization. OrganizationID and CreatedByID
// are set from the creating principal and never from caller input; both are
// immutable after creation.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Category       Category   `json:"category"`
	Priority       Priority   `json:"priority"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	CreatedByID    uuid.UUID  `json:"createdById"`
	AssignedToID   *uuid.UUID `json:"assignedToId,omitempty"`
	SortOrder      int        `json:"sortOrder"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
