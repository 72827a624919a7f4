package orgs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
)

type mockOrgRepo struct {
	orgs    []Organization
	listErr error
}

func (m *mockOrgRepo) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			return &m.orgs[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockOrgRepo) ListAll(ctx context.Context) ([]Organization, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orgs, nil
}

func principalAt(orgID uuid.UUID, level int) *shared.Principal {
	return &shared.Principal{
		UserID:         uuid.New(),
		OrganizationID: orgID,
		RoleLevel:      level,
	}
}

// buildForest returns root -> (engineering, marketing), engineering -> qa.
func buildForest() (repo *mockOrgRepo, root, engineering, marketing, qa uuid.UUID) {
	root = uuid.New()
	engineering = uuid.New()
	marketing = uuid.New()
	qa = uuid.New()
	repo = &mockOrgRepo{orgs: []Organization{
		{ID: root, Name: "Root"},
		{ID: engineering, Name: "Engineering", ParentID: &root},
		{ID: marketing, Name: "Marketing", ParentID: &root},
		{ID: qa, Name: "QA", ParentID: &engineering},
	}}
	return
}

func TestClosureOwnerSeesEverything(t *testing.T) {
	repo, root, engineering, marketing, qa := buildForest()
	resolver := NewResolver(repo)

	// Owner attached to a leaf still sees the whole forest.
	closure, err := resolver.Closure(context.Background(), principalAt(qa, rbac.LevelOwner))
	require.NoError(t, err)

	assert.Len(t, closure, 4)
	for _, id := range []uuid.UUID{root, engineering, marketing, qa} {
		assert.True(t, closure.Contains(id))
	}
}

func TestClosureAdminSeesOwnSubtree(t *testing.T) {
	repo, root, engineering, marketing, qa := buildForest()
	resolver := NewResolver(repo)

	closure, err := resolver.Closure(context.Background(), principalAt(engineering, rbac.LevelAdmin))
	require.NoError(t, err)

	assert.True(t, closure.Contains(engineering))
	assert.True(t, closure.Contains(qa))
	assert.False(t, closure.Contains(root))
	assert.False(t, closure.Contains(marketing))
}

func TestClosureViewerAtLeafIsSingleton(t *testing.T) {
	repo, _, _, marketing, _ := buildForest()
	resolver := NewResolver(repo)

	closure, err := resolver.Closure(context.Background(), principalAt(marketing, rbac.LevelViewer))
	require.NoError(t, err)

	assert.Len(t, closure, 1)
	assert.True(t, closure.Contains(marketing))
}

func TestClosureUnknownOrganizationYieldsSingleton(t *testing.T) {
	repo, root, _, _, _ := buildForest()
	resolver := NewResolver(repo)

	unknown := uuid.New()
	closure, err := resolver.Closure(context.Background(), principalAt(unknown, rbac.LevelAdmin))
	require.NoError(t, err)

	assert.Len(t, closure, 1)
	assert.True(t, closure.Contains(unknown))
	assert.False(t, closure.Contains(root))
}

func TestClosureDetectsCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	repo := &mockOrgRepo{orgs: []Organization{
		{ID: a, Name: "A", ParentID: &b},
		{ID: b, Name: "B", ParentID: &a},
	}}
	resolver := NewResolver(repo)

	_, err := resolver.Closure(context.Background(), principalAt(a, rbac.LevelAdmin))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrTreeCycle))
}

func TestClosurePropagatesRepositoryError(t *testing.T) {
	repo := &mockOrgRepo{listErr: errors.New("boom")}
	resolver := NewResolver(repo)

	_, err := resolver.Closure(context.Background(), principalAt(uuid.New(), rbac.LevelAdmin))
	require.Error(t, err)
}
