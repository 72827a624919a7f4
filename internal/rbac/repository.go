package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasktrail/tasktrail/internal/shared"
)

// Repository defines persistence operations for roles.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const roleColumns = "id, name, level, description, created_at, updated_at"

// Get fetches a role by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Role, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+roleColumns+" FROM roles WHERE id = $1", id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

// List returns all roles ordered by level descending.
func (r *PGRepository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY level DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	var description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&role.ID, &role.Name, &role.Level, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		role.Description = &description.String
	}
	role.CreatedAt = createdAt.Time
	role.UpdatedAt = updatedAt.Time
	return &role, nil
}

var _ Repository = (*PGRepository)(nil)
