package orgs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasktrail/tasktrail/internal/shared"
)

// Repository defines persistence operations for organizations.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Organization, error)
	ListAll(ctx context.Context) ([]Organization, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const orgColumns = "id, name, parent_id, created_at, updated_at"

// Get fetches an organization by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+orgColumns+" FROM organizations WHERE id = $1", id)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

// ListAll returns every organization ordered by name. The closure resolver
// walks the tree over this single snapshot instead of issuing per-node lookups.
func (r *PGRepository) ListAll(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+orgColumns+" FROM organizations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *org)
	}
	return result, rows.Err()
}

func scanOrganization(row pgx.Row) (*Organization, error) {
	var org Organization
	var parentID pgtype.UUID
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&org.ID, &org.Name, &parentID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := uuid.UUID(parentID.Bytes)
		org.ParentID = &id
	}
	org.CreatedAt = createdAt.Time
	org.UpdatedAt = updatedAt.Time
	return &org, nil
}

var _ Repository = (*PGRepository)(nil)
