package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasktrail/tasktrail/internal/shared"
)

// Repository defines persistence operations for tasks.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, orgIDs []uuid.UUID, filter TaskFilter) ([]Task, error)
	Create(ctx context.Context, task Task) error
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

const taskColumns = "id, title, description, status, category, priority, due_date, organization_id, created_by_id, assigned_to_id, sort_order, created_at, updated_at"

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
	"sortOrder": "sort_order",
}

// Get fetches a task by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// List returns tasks inside the given organizations, filtered and sorted.
func (r *PGRepository) List(ctx context.Context, orgIDs []uuid.UUID, filter TaskFilter) ([]Task, error) {
	if len(orgIDs) == 0 {
		return []Task{}, nil
	}

	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, fmt.Sprintf("organization_id = ANY($%d)", argPos))
	args = append(args, orgIDs)
	argPos++

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*filter.Status))
		argPos++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, string(*filter.Category))
		argPos++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argPos))
		args = append(args, string(*filter.Priority))
		argPos++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", argPos))
		args = append(args, *filter.AssignedTo)
		argPos++
	}
	if filter.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("created_by_id = $%d", argPos))
		args = append(args, *filter.CreatedBy)
		argPos++
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	sortColumn := sortColumns["createdAt"]
	if col, ok := sortColumns[filter.SortBy]; ok {
		sortColumn = col
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		direction = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s %s",
		taskColumns, strings.Join(conditions, " AND "), sortColumn, direction)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Create inserts a new task.
func (r *PGRepository) Create(ctx context.Context, task Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, status, category, priority, due_date,
		                   organization_id, created_by_id, assigned_to_id, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
		task.ID, task.Title, optionalText(task.Description), string(task.Status),
		string(task.Category), string(task.Priority), optionalTime(task.DueDate),
		task.OrganizationID, task.CreatedByID, optionalUUID(task.AssignedToID), task.SortOrder,
	)
	return err
}

// Update applies a partial column update to one task.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE tasks SET updated_at = NOW()"
	var args []interface{}
	argPos := 1
	for _, column := range []string{"title", "description", "status", "category", "priority", "due_date", "assigned_to_id", "sort_order"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

// Remove deletes one task.
func (r *PGRepository) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	var description pgtype.Text
	var dueDate pgtype.Timestamptz
	var assignedTo pgtype.UUID
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&task.ID, &task.Title, &description, &task.Status, &task.Category,
		&task.Priority, &dueDate, &task.OrganizationID, &task.CreatedByID,
		&assignedTo, &task.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if assignedTo.Valid {
		id := uuid.UUID(assignedTo.Bytes)
		task.AssignedToID = &id
	}
	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time
	return &task, nil
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func optionalTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func optionalUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
