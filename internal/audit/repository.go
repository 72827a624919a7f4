package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for audit records.
type Repository interface {
	Insert(ctx context.Context, rec Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Record, error)
	CountByActionSince(ctx context.Context, since time.Time) (map[Action]int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const auditColumns = "id, user_id, action, resource, resource_id, details, ip_address, user_agent, occurred_at"

// Insert appends one audit record.
func (r *PGRepository) Insert(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, resource_id, details, ip_address, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.UserID, string(rec.Action), string(rec.Resource),
		optionalUUID(rec.ResourceID), optionalText(rec.Details),
		optionalText(rec.IPAddress), optionalText(rec.UserAgent), rec.Timestamp,
	)
	return err
}

// ListRecent returns the newest records first, capped at limit.
func (r *PGRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+auditColumns+" FROM audit_logs ORDER BY occurred_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByUser returns the newest records for one actor, capped at limit.
func (r *PGRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+auditColumns+" FROM audit_logs WHERE user_id = $1 ORDER BY occurred_at DESC LIMIT $2",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// CountByActionSince aggregates record counts per action from a point in time.
func (r *PGRepository) CountByActionSince(ctx context.Context, since time.Time) (map[Action]int, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT action, COUNT(*) FROM audit_logs WHERE occurred_at >= $1 GROUP BY action", since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Action]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[Action(action)] = count
	}
	return counts, rows.Err()
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var resourceID pgtype.UUID
		var details, ip, ua pgtype.Text
		var occurredAt pgtype.Timestamptz
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.Resource,
			&resourceID, &details, &ip, &ua, &occurredAt); err != nil {
			return nil, err
		}
		if resourceID.Valid {
			id := uuid.UUID(resourceID.Bytes)
			rec.ResourceID = &id
		}
		if details.Valid {
			rec.Details = &details.String
		}
		if ip.Valid {
			rec.IPAddress = &ip.String
		}
		if ua.Valid {
			rec.UserAgent = &ua.String
		}
		rec.Timestamp = occurredAt.Time
		records = append(records, rec)
	}
	return records, rows.Err()
}

func optionalUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
