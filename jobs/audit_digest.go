package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tasktrail/tasktrail/internal/audit"
)

const defaultDigestWindow = 24 * time.Hour

// NewAuditDigestHandler returns an Asynq handler that logs a per-action
// summary of audit activity over the payload window. Read only; the trail
// itself is never touched.
func NewAuditDigestHandler(repo audit.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditDigestPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return fmt.Errorf("audit digest: decode payload: %w", err)
			}
		}
		window := payload.Window
		if window <= 0 {
			window = defaultDigestWindow
		}

		since := time.Now().UTC().Add(-window)
		counts, err := repo.CountByActionSince(ctx, since)
		if err != nil {
			return fmt.Errorf("audit digest: count records: %w", err)
		}

		total := 0
		attrs := []any{slog.String("window", window.String())}
		for action, count := range counts {
			total += count
			attrs = append(attrs, slog.Int("action_"+string(action), count))
		}
		attrs = append(attrs, slog.Int("total", total))
		logger.Info("audit digest", attrs...)
		return nil
	}
}
