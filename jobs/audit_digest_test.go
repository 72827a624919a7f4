package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail/internal/audit"
)

type stubAuditRepo struct {
	records []audit.Record
	since   time.Time
}

func (s *stubAuditRepo) Insert(ctx context.Context, rec audit.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *stubAuditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	return s.records, nil
}

func (s *stubAuditRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]audit.Record, error) {
	return s.records, nil
}

func (s *stubAuditRepo) CountByActionSince(ctx context.Context, since time.Time) (map[audit.Action]int, error) {
	s.since = since
	counts := make(map[audit.Action]int)
	for _, rec := range s.records {
		if !rec.Timestamp.Before(since) {
			counts[rec.Action]++
		}
	}
	return counts, nil
}

func TestAuditDigestUsesPayloadWindow(t *testing.T) {
	repo := &stubAuditRepo{records: []audit.Record{
		{Action: audit.ActionLogin, Timestamp: time.Now().UTC()},
		{Action: audit.ActionLogin, Timestamp: time.Now().UTC().Add(-48 * time.Hour)},
	}}

	task, err := NewAuditDigestTask(AuditDigestPayload{Window: time.Hour})
	require.NoError(t, err)

	handler := NewAuditDigestHandler(repo, discardLogger())
	require.NoError(t, handler(context.Background(), task))

	assert.WithinDuration(t, time.Now().UTC().Add(-time.Hour), repo.since, time.Minute)
}

func TestAuditDigestDefaultsWindow(t *testing.T) {
	repo := &stubAuditRepo{}
	task, err := NewAuditDigestTask(AuditDigestPayload{})
	require.NoError(t, err)

	handler := NewAuditDigestHandler(repo, discardLogger())
	require.NoError(t, handler(context.Background(), task))

	assert.WithinDuration(t, time.Now().UTC().Add(-defaultDigestWindow), repo.since, time.Minute)
}
