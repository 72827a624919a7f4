package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasktrail/tasktrail/internal/platform/db"
	"github.com/tasktrail/tasktrail/internal/shared"
)

// Repository defines persistence operations for users.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, orgIDs []uuid.UUID) ([]User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name,
	       u.organization_id, u.role_id, r.name, r.level, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// Get fetches a user with the joined role by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, userSelect+" WHERE u.id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail fetches a user with the joined role by email.
func (r *PGRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, userSelect+" WHERE u.email = $1", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users inside the given organizations ordered by email.
func (r *PGRepository) List(ctx context.Context, orgIDs []uuid.UUID) ([]User, error) {
	if len(orgIDs) == 0 {
		return []User{}, nil
	}
	rows, err := r.pool.Query(ctx, userSelect+" WHERE u.organization_id = ANY($1) ORDER BY u.email", orgIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

// Create inserts a new user. Duplicate emails surface as shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, organization_id, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.OrganizationID, user.RoleID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user with this email already exists", shared.ErrConflict)
	}
	return err
}

// Update applies a partial column update to one user.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE users SET updated_at = NOW()"
	var args []interface{}
	argPos := 1
	for _, column := range []string{"email", "password_hash", "first_name", "last_name", "role_id"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.pool.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user with this email already exists", shared.ErrConflict)
	}
	return err
}

// Remove deletes one user together with their task footprint. Assignments
// are detached and created tasks removed in the same transaction so a failed
// delete leaves no half-orphaned rows.
func (r *PGRepository) Remove(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "UPDATE tasks SET assigned_to_id = NULL WHERE assigned_to_id = $1", id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM tasks WHERE created_by_id = $1", id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.OrganizationID, &user.RoleID, &user.RoleName,
		&user.RoleLevel, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
