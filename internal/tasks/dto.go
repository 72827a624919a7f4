package tasks

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  *string    `json:"description,omitempty"`
	Status       *Status    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	Category     Category   `json:"category" validate:"required,oneof=Work Personal Shopping Health Other"`
	Priority     *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	SortOrder    *int       `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string    `json:"description,omitempty"`
	Status       *Status    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	Category     *Category  `json:"category,omitempty" validate:"omitempty,oneof=Work Personal Shopping Health Other"`
	Priority     *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	SortOrder    *int       `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

// TaskFilter narrows and orders List results. Authorization is applied before
// any of these; they only refine what the closure already allows.
type TaskFilter struct {
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	Category    *Category  `json:"category,omitempty" validate:"omitempty,oneof=Work Personal Shopping Health Other"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedBy   *uuid.UUID `json:"createdById,omitempty"`
	Search      *string    `json:"search,omitempty" validate:"omitempty,max=200"`
	SortBy      string     `json:"sortBy,omitempty" validate:"omitempty,oneof=createdAt updatedAt dueDate title priority status sortOrder"`
	SortOrder   string     `json:"sortOrder,omitempty" validate:"omitempty,oneof=ASC DESC asc desc"`
}
