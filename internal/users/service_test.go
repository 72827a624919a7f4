package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
)

type mockUserRepo struct {
	users map[uuid.UUID]*User
	roles map[uuid.UUID]*rbac.Role
}

func newMockUserRepo(roles map[uuid.UUID]*rbac.Role) *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User), roles: roles}
}

func (m *mockUserRepo) withRole(user User) *User {
	if role, ok := m.roles[user.RoleID]; ok {
		user.RoleName = role.Name
		user.RoleLevel = role.Level
	}
	return &user
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m.withRole(*user), nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return m.withRole(*user), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, orgIDs []uuid.UUID) ([]User, error) {
	allowed := make(map[uuid.UUID]struct{}, len(orgIDs))
	for _, id := range orgIDs {
		allowed[id] = struct{}{}
	}
	result := []User{}
	for _, user := range m.users {
		if _, ok := allowed[user.OrganizationID]; ok {
			result = append(result, *m.withRole(*user))
		}
	}
	return result, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: user with this email already exists", shared.ErrConflict)
		}
	}
	m.users[user.ID] = &user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	user, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["email"]; ok {
		user.Email = v.(string)
	}
	if v, ok := updates["role_id"]; ok {
		user.RoleID = v.(uuid.UUID)
	}
	return nil
}

func (m *mockUserRepo) Remove(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
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
	var out []rbac.Role
	for _, role := range m.roles {
		out = append(out, *role)
	}
	return out, nil
}

type mockOrgGetter struct {
	orgs map[uuid.UUID]*orgs.Organization
}

func (m *mockOrgGetter) Get(ctx context.Context, id uuid.UUID) (*orgs.Organization, error) {
	org, ok := m.orgs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return org, nil
}

func (m *mockOrgGetter) ListAll(ctx context.Context) ([]orgs.Organization, error) {
	var out []orgs.Organization
	for _, org := range m.orgs {
		out = append(out, *org)
	}
	return out, nil
}

type stubResolver struct {
	closure orgs.Closure
}

func (s *stubResolver) Closure(ctx context.Context, principal *shared.Principal) (orgs.Closure, error) {
	return s.closure, nil
}

type captureRecorder struct {
	records []audit.Record
}

func (c *captureRecorder) Append(ctx context.Context, rec audit.Record) (*audit.Record, error) {
	c.records = append(c.records, rec)
	return &rec, nil
}

type fixture struct {
	svc        *Service
	repo       *mockUserRepo
	recorder   *captureRecorder
	orgID      uuid.UUID
	ownerRole  *rbac.Role
	adminRole  *rbac.Role
	viewerRole *rbac.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ownerRole := &rbac.Role{ID: uuid.New(), Name: rbac.RoleOwner, Level: rbac.LevelOwner}
	adminRole := &rbac.Role{ID: uuid.New(), Name: rbac.RoleAdmin, Level: rbac.LevelAdmin}
	viewerRole := &rbac.Role{ID: uuid.New(), Name: rbac.RoleViewer, Level: rbac.LevelViewer}
	roles := map[uuid.UUID]*rbac.Role{
		ownerRole.ID:  ownerRole,
		adminRole.ID:  adminRole,
		viewerRole.ID: viewerRole,
	}

	orgID := uuid.New()
	orgRepo := &mockOrgGetter{orgs: map[uuid.UUID]*orgs.Organization{
		orgID: {ID: orgID, Name: "Engineering"},
	}}

	repo := newMockUserRepo(roles)
	recorder := &captureRecorder{}
	closure := orgs.Closure{orgID: {}}
	svc := NewService(repo, &mockRoleRepo{roles: roles}, orgRepo, &stubResolver{closure: closure}, recorder, nil)

	return &fixture{
		svc: svc, repo: repo, recorder: recorder, orgID: orgID,
		ownerRole: ownerRole, adminRole: adminRole, viewerRole: viewerRole,
	}
}

func adminPrincipal(f *fixture) *shared.Principal {
	return &shared.Principal{
		UserID:         uuid.New(),
		OrganizationID: f.orgID,
		RoleID:         f.adminRole.ID,
		RoleLevel:      rbac.LevelAdmin,
	}
}

func TestCreateUserHappyPath(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	created, err := f.svc.Create(context.Background(), CreateUserRequest{
		Email:          "new@turbovets.com",
		Password:       "Password123!",
		FirstName:      "New",
		LastName:       "Hire",
		OrganizationID: f.orgID,
		RoleID:         f.viewerRole.ID,
	}, principal)
	require.NoError(t, err)

	assert.Equal(t, "new@turbovets.com", created.Email)
	assert.Equal(t, rbac.LevelViewer, created.RoleLevel)
	assert.NotEqual(t, "Password123!", created.PasswordHash)

	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, audit.ActionCreate, f.recorder.records[0].Action)
	assert.Equal(t, audit.ResourceUser, f.recorder.records[0].Resource)
}

func TestCreateUserDeniesEqualOrHigherRole(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	for _, roleID := range []uuid.UUID{f.adminRole.ID, f.ownerRole.ID} {
		_, err := f.svc.Create(context.Background(), CreateUserRequest{
			Email:          "escalate@turbovets.com",
			Password:       "Password123!",
			FirstName:      "Sneaky",
			LastName:       "Peer",
			OrganizationID: f.orgID,
			RoleID:         roleID,
		}, principal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	}
	assert.Empty(t, f.repo.users)
}

func TestCreateUserDeniesForeignOrganization(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	foreign := uuid.New()
	f.svc.orgRepo.(*mockOrgGetter).orgs[foreign] = &orgs.Organization{ID: foreign, Name: "Elsewhere"}

	_, err := f.svc.Create(context.Background(), CreateUserRequest{
		Email:          "outside@turbovets.com",
		Password:       "Password123!",
		FirstName:      "Out",
		LastName:       "Side",
		OrganizationID: foreign,
		RoleID:         f.viewerRole.ID,
	}, principal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestCreateUserUnknownOrganizationIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateUserRequest{
		Email:          "ghost@turbovets.com",
		Password:       "Password123!",
		FirstName:      "No",
		LastName:       "Where",
		OrganizationID: uuid.New(),
		RoleID:         f.viewerRole.ID,
	}, adminPrincipal(f))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestUpdateUserDeniesRoleEscalation(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	target := User{ID: uuid.New(), Email: "target@turbovets.com", OrganizationID: f.orgID, RoleID: f.viewerRole.ID}
	f.repo.users[target.ID] = &target

	_, err := f.svc.Update(context.Background(), target.ID, UpdateUserRequest{RoleID: &f.adminRole.ID}, principal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
	assert.Equal(t, f.viewerRole.ID, f.repo.users[target.ID].RoleID)
}

func TestDeleteUserDeniesPeersAndSuperiors(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	peer := User{ID: uuid.New(), Email: "peer@turbovets.com", OrganizationID: f.orgID, RoleID: f.adminRole.ID}
	boss := User{ID: uuid.New(), Email: "boss@turbovets.com", OrganizationID: f.orgID, RoleID: f.ownerRole.ID}
	f.repo.users[peer.ID] = &peer
	f.repo.users[boss.ID] = &boss

	for _, id := range []uuid.UUID{peer.ID, boss.ID} {
		err := f.svc.Delete(context.Background(), id, principal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	}
	assert.Len(t, f.repo.users, 2)
}

func TestDeleteSelfIsDenied(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	// Own role ranks below an Owner principal, so the self check is what trips.
	self := User{ID: principal.UserID, Email: "me@turbovets.com", OrganizationID: f.orgID, RoleID: f.adminRole.ID}
	f.repo.users[self.ID] = &self
	owner := &shared.Principal{UserID: principal.UserID, OrganizationID: f.orgID, RoleLevel: rbac.LevelOwner}

	err := f.svc.Delete(context.Background(), self.ID, owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestDeleteSubordinateSucceedsAndAudits(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	target := User{ID: uuid.New(), Email: "viewer@turbovets.com", OrganizationID: f.orgID, RoleID: f.viewerRole.ID}
	f.repo.users[target.ID] = &target

	err := f.svc.Delete(context.Background(), target.ID, principal)
	require.NoError(t, err)
	assert.Empty(t, f.repo.users)

	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, audit.ActionDelete, f.recorder.records[0].Action)
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	principal := adminPrincipal(f)

	existing := User{ID: uuid.New(), Email: "taken@turbovets.com", OrganizationID: f.orgID, RoleID: f.viewerRole.ID}
	f.repo.users[existing.ID] = &existing

	_, err := f.svc.Create(context.Background(), CreateUserRequest{
		Email:          "taken@turbovets.com",
		Password:       "Password123!",
		FirstName:      "Dup",
		LastName:       "Licate",
		OrganizationID: f.orgID,
		RoleID:         f.viewerRole.ID,
	}, principal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}
