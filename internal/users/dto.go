package users

import "github.com/google/uuid"

type CreateUserRequest struct {
	Email          string    `json:"email" validate:"required,email,max=254"`
	Password       string    `json:"password" validate:"required,min=8,max=72"`
	FirstName      string    `json:"firstName" validate:"required,max=100"`
	LastName       string    `json:"lastName" validate:"required,max=100"`
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
	RoleID         uuid.UUID `json:"roleId" validate:"required"`
}

type UpdateUserRequest struct {
	Email     *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password  *string    `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,max=100"`
	RoleID    *uuid.UUID `json:"roleId,omitempty"`
}
