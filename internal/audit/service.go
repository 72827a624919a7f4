package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrail/tasktrail/internal/rbac"
)

// Retrieval caps, matching the retention the dashboard renders.
const (
	listAllLimit     = 100
	listForUserLimit = 50
)

// Recorder is the append-side contract consumed by the task, user and auth
// services. Callers invoke it after their primary write has committed; a
// failed append is reported back but must never roll back or fail the
// primary operation.
type Recorder interface {
	Append(ctx context.Context, rec Record) (*Record, error)
}

// Service coordinates the audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs an audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append stores one record, assigning its id and server timestamp.
func (s *Service) Append(ctx context.Context, rec Record) (*Record, error) {
	if rec.UserID == uuid.Nil {
		return nil, fmt.Errorf("audit: record requires an actor")
	}
	if rec.Action == "" || rec.Resource == "" {
		return nil, fmt.Errorf("audit: record requires action and resource")
	}
	rec.ID = uuid.New()
	rec.Timestamp = time.Now().UTC()
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("audit: append: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("audit",
			slog.String("action", string(rec.Action)),
			slog.String("resource", string(rec.Resource)),
			slog.String("user_id", rec.UserID.String()),
		)
	}
	return &rec, nil
}

// ListAll returns up to the 100 most recent records, newest first. Requesters
// below Admin level get an empty slice rather than an error; the dashboard
// depends on this soft behavior.
func (s *Service) ListAll(ctx context.Context, requesterRoleLevel int) ([]Record, error) {
	if !rbac.AtLeast(requesterRoleLevel, rbac.LevelAdmin) {
		return []Record{}, nil
	}
	records, err := s.repo.ListRecent(ctx, listAllLimit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// ListForUser returns up to the 50 most recent records for one actor, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	records, err := s.repo.ListByUser(ctx, userID, listForUserLimit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

var _ Recorder = (*Service)(nil)
