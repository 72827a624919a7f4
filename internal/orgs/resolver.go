package orgs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
)

// Closure is the set of organization ids a principal may act within.
type Closure map[uuid.UUID]struct{}

// Contains reports membership of the given organization id.
func (c Closure) Contains(id uuid.UUID) bool {
	_, ok := c[id]
	return ok
}

// IDs returns the member ids in unspecified order.
func (c Closure) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// Resolver computes organization closures. It is shared by the task and user
// authorization paths so the visibility rule cannot diverge between them.
type Resolver struct {
	repo Repository
}

// NewResolver constructs a Resolver backed by the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Closure returns the complete set of organization ids the principal may
// operate within. Owners see every organization in the system regardless of
// their own node. Everyone else sees their own organization plus all
// transitive descendants. An unknown starting organization yields a singleton
// set of just that id, never the whole forest.
//
// The result is computed fresh per call; callers must not cache it across
// requests since the tree can change between them.
func (r *Resolver) Closure(ctx context.Context, principal *shared.Principal) (Closure, error) {
	all, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("orgs: list organizations: %w", err)
	}

	if principal.RoleLevel == rbac.LevelOwner {
		closure := make(Closure, len(all))
		for _, org := range all {
			closure[org.ID] = struct{}{}
		}
		return closure, nil
	}

	known := make(map[uuid.UUID]struct{}, len(all))
	children := make(map[uuid.UUID][]uuid.UUID, len(all))
	for _, org := range all {
		known[org.ID] = struct{}{}
		if org.ParentID != nil {
			children[*org.ParentID] = append(children[*org.ParentID], org.ID)
		}
	}

	start := principal.OrganizationID
	if _, ok := known[start]; !ok {
		return Closure{start: {}}, nil
	}

	// Worklist traversal bounded by total node count. Each node has at most
	// one parent, so revisiting a node means an ancestor chain loops back.
	closure := Closure{start: {}}
	queue := []uuid.UUID{start}
	for len(queue) > 0 {
		if len(closure) > len(all) {
			return nil, shared.ErrTreeCycle
		}
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if closure.Contains(child) {
				return nil, fmt.Errorf("%w: organization %s", shared.ErrTreeCycle, child)
			}
			closure[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return closure, nil
}
