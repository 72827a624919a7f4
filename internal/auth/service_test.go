package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
	"github.com/tasktrail/tasktrail/internal/users"
)

type mockUserRepo struct {
	users map[uuid.UUID]*users.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*users.User)}
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, orgIDs []uuid.UUID) ([]users.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user users.User) error {
	m.users[user.ID] = &user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (m *mockUserRepo) Remove(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

type mockRoleRepo struct {
	roles map[uuid.UUID]*rbac.Role
}

func (m *mockRoleRepo) Get(ctx context.Context, id uuid.UUID) (*rbac.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return role, nil
}

func (m *mockRoleRepo) List(ctx context.Context) ([]rbac.Role, error) {
	return nil, nil
}

type captureRecorder struct {
	records []audit.Record
}

func (c *captureRecorder) Append(ctx context.Context, rec audit.Record) (*audit.Record, error) {
	c.records = append(c.records, rec)
	return &rec, nil
}

func seedLoginUser(t *testing.T, repo *mockUserRepo, password string) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &users.User{
		ID:             uuid.New(),
		Email:          "admin@turbovets.com",
		PasswordHash:   string(hash),
		OrganizationID: uuid.New(),
		RoleID:         uuid.New(),
		RoleName:       rbac.RoleAdmin,
		RoleLevel:      rbac.LevelAdmin,
	}
	repo.users[user.ID] = user
	return user
}

func TestLoginIssuesTokenAndAudits(t *testing.T) {
	repo := newMockUserRepo()
	user := seedLoginUser(t, repo, "Password123!")
	recorder := &captureRecorder{}
	denylist, _ := newTestDenylist(t)
	manager := NewTokenManager("test-secret", time.Hour)
	svc := NewService(repo, &mockRoleRepo{}, manager, denylist, recorder, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@turbovets.com",
		Password: "Password123!",
	}, "203.0.113.7", "test-agent")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := manager.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, audit.ActionLogin, rec.Action)
	assert.Equal(t, audit.ResourceAuth, rec.Resource)
	require.NotNil(t, rec.IPAddress)
	assert.Equal(t, "203.0.113.7", *rec.IPAddress)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	seedLoginUser(t, repo, "Password123!")
	recorder := &captureRecorder{}
	denylist, _ := newTestDenylist(t)
	svc := NewService(repo, &mockRoleRepo{}, NewTokenManager("test-secret", time.Hour), denylist, recorder, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@turbovets.com",
		Password: "wrong",
	}, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
	assert.Empty(t, recorder.records)
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	denylist, _ := newTestDenylist(t)
	svc := NewService(newMockUserRepo(), &mockRoleRepo{}, NewTokenManager("test-secret", time.Hour), denylist, &captureRecorder{}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@turbovets.com",
		Password: "whatever",
	}, "", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestLogoutRevokesTokenAndAudits(t *testing.T) {
	repo := newMockUserRepo()
	user := seedLoginUser(t, repo, "Password123!")
	recorder := &captureRecorder{}
	denylist, _ := newTestDenylist(t)
	manager := NewTokenManager("test-secret", time.Hour)
	svc := NewService(repo, &mockRoleRepo{}, manager, denylist, recorder, nil)

	token, err := manager.Generate(user)
	require.NoError(t, err)
	claims, err := manager.Parse(token)
	require.NoError(t, err)

	principal, err := claims.Principal()
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), principal, claims.ID, claims.ExpiresAt.Time, "", ""))

	revoked, err := denylist.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, audit.ActionLogout, recorder.records[0].Action)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	seedLoginUser(t, repo, "Password123!")
	denylist, _ := newTestDenylist(t)
	svc := NewService(repo, &mockRoleRepo{}, NewTokenManager("test-secret", time.Hour), denylist, &captureRecorder{}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:          "admin@turbovets.com",
		Password:       "Password123!",
		FirstName:      "Dup",
		LastName:       "Licate",
		OrganizationID: uuid.New(),
		RoleID:         uuid.New(),
	})
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	denylist, _ := newTestDenylist(t)
	svc := NewService(newMockUserRepo(), &mockRoleRepo{roles: map[uuid.UUID]*rbac.Role{}}, NewTokenManager("test-secret", time.Hour), denylist, &captureRecorder{}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:          "new@turbovets.com",
		Password:       "Password123!",
		FirstName:      "New",
		LastName:       "User",
		OrganizationID: uuid.New(),
		RoleID:         uuid.New(),
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
