package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tasktrail/tasktrail/internal/orgs"
)

// NewTreeIntegrityHandler returns an Asynq handler that validates the
// organization forest: every parent reference must resolve and every node
// must be reachable from a root. A node that is neither reachable nor
// dangling sits on a cycle, which would poison closure resolution at
// request time.
func NewTreeIntegrityHandler(repo orgs.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		all, err := repo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("tree integrity: list organizations: %w", err)
		}

		known := make(map[uuid.UUID]struct{}, len(all))
		children := make(map[uuid.UUID][]uuid.UUID, len(all))
		var roots []uuid.UUID
		for _, org := range all {
			known[org.ID] = struct{}{}
		}
		dangling := 0
		for _, org := range all {
			if org.ParentID == nil {
				roots = append(roots, org.ID)
				continue
			}
			if _, ok := known[*org.ParentID]; !ok {
				dangling++
				logger.Warn("organization has dangling parent",
					slog.String("org_id", org.ID.String()),
					slog.String("parent_id", org.ParentID.String()),
				)
				continue
			}
			children[*org.ParentID] = append(children[*org.ParentID], org.ID)
		}

		reachable := make(map[uuid.UUID]struct{}, len(all))
		queue := append([]uuid.UUID(nil), roots...)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if _, seen := reachable[current]; seen {
				continue
			}
			reachable[current] = struct{}{}
			queue = append(queue, children[current]...)
		}

		cyclic := 0
		for _, org := range all {
			if _, ok := reachable[org.ID]; ok {
				continue
			}
			if org.ParentID != nil {
				if _, ok := known[*org.ParentID]; !ok {
					continue
				}
			}
			cyclic++
			logger.Error("organization unreachable from any root, likely on a cycle",
				slog.String("org_id", org.ID.String()),
			)
		}

		logger.Info("tree integrity scan finished",
			slog.Int("organizations", len(all)),
			slog.Int("roots", len(roots)),
			slog.Int("dangling", dangling),
			slog.Int("cyclic", cyclic),
		)
		return nil
	}
}
