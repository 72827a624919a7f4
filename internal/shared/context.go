package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller's context for one request. It is
// reconstructed from a verified access token on every request and passed
// explicitly into every decision function; it is never persisted.
type Principal struct {
	UserID         uuid.UUID
	Email          string
	OrganizationID uuid.UUID
	RoleID         uuid.UUID
	RoleName       string
	RoleLevel      int
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
