package auth

import (
	"github.com/google/uuid"

	"github.com/tasktrail/tasktrail/internal/users"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email          string    `json:"email" validate:"required,email,max=254"`
	Password       string    `json:"password" validate:"required,min=8,max=72"`
	FirstName      string    `json:"firstName" validate:"required,max=100"`
	LastName       string    `json:"lastName" validate:"required,max=100"`
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
	RoleID         uuid.UUID `json:"roleId" validate:"required"`
}

// AuthResponse carries the signed access token and the authenticated user.
// The user struct never serializes its password hash.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	User        users.User `json:"user"`
}
