package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tasktrail/tasktrail/internal/shared"
	"github.com/tasktrail/tasktrail/internal/users"
)

const issuer = "tasktrail"

// Claims are the JWT claims carried by access tokens. The principal is
// rebuilt from these on every request; the engine trusts a verified token.
type Claims struct {
	Email          string `json:"email"`
	RoleID         string `json:"roleId"`
	RoleName       string `json:"roleName"`
	RoleLevel      int    `json:"roleLevel"`
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate signs a token for the given user.
func (m *TokenManager) Generate(user *users.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:          user.Email,
		RoleID:         user.RoleID.String(),
		RoleName:       user.RoleName,
		RoleLevel:      user.RoleLevel,
		OrganizationID: user.OrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and required claims.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, shared.ErrUnauthorized
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, shared.ErrUnauthorized
	}
	if claims.Subject == "" || claims.OrganizationID == "" {
		return nil, shared.ErrUnauthorized
	}
	return claims, nil
}

// Principal rebuilds the request principal from verified claims.
func (c *Claims) Principal() (*shared.Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	orgID, err := uuid.Parse(c.OrganizationID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	roleID, err := uuid.Parse(c.RoleID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	return &shared.Principal{
		UserID:         userID,
		Email:          c.Email,
		OrganizationID: orgID,
		RoleID:         roleID,
		RoleName:       c.RoleName,
		RoleLevel:      c.RoleLevel,
	}, nil
}
