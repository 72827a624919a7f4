package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a member of exactly one organization holding exactly one role.
// The password hash never serializes; no representation of a user may carry
// password material.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	OrganizationID uuid.UUID `json:"organizationId"`
	RoleID         uuid.UUID `json:"roleId"`
	RoleName       string    `json:"roleName,omitempty"`
	RoleLevel      int       `json:"roleLevel,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
