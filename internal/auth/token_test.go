package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/users"
)

func testUser() *users.User {
	return &users.User{
		ID:             uuid.New(),
		Email:          "admin@turbovets.com",
		OrganizationID: uuid.New(),
		RoleID:         uuid.New(),
		RoleName:       rbac.RoleAdmin,
		RoleLevel:      rbac.LevelAdmin,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	user := testUser()

	token, err := manager.Generate(user)
	require.NoError(t, err)

	claims, err := manager.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, rbac.LevelAdmin, claims.RoleLevel)
	assert.NotEmpty(t, claims.ID)

	principal, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.OrganizationID, principal.OrganizationID)
	assert.Equal(t, user.RoleID, principal.RoleID)
	assert.Equal(t, rbac.LevelAdmin, principal.RoleLevel)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)
	token, err := manager.Generate(testUser())
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	_, err := manager.Parse("not.a.token")
	assert.Error(t, err)
}
