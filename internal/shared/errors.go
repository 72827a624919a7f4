package shared

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the principal lacks authorization for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation such as a duplicate email.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTreeCycle indicates a cycle in the organization tree. This is a fatal
	// configuration error, not a per-request denial.
	ErrTreeCycle = errors.New("organization tree cycle detected")
)
