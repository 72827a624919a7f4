package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
)

// ClosureResolver computes the set of organizations a principal may act within.
type ClosureResolver interface {
	Closure(ctx context.Context, principal *shared.Principal) (orgs.Closure, error)
}

// Service evaluates task authorization rules and performs the resulting
// mutations. Every decision is a pure function of the principal and the
// current entity snapshots; nothing is cached across requests.
type Service struct {
	repo     Repository
	resolver ClosureResolver
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewService constructs a task service.
func NewService(repo Repository, resolver ClosureResolver, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, recorder: recorder, logger: logger}
}

// Create stores a new task. Any authenticated principal may create one; the
// organization and creator are always taken from the principal, never from
// the request, so a task cannot be planted in a foreign tenant.
func (s *Service) Create(ctx context.Context, req CreateTaskRequest, principal *shared.Principal) (*Task, error) {
	task := Task{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		Status:         StatusTodo,
		Category:       req.Category,
		Priority:       PriorityMedium,
		DueDate:        req.DueDate,
		OrganizationID: principal.OrganizationID,
		CreatedByID:    principal.UserID,
		AssignedToID:   req.AssignedToID,
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.SortOrder != nil {
		task.SortOrder = *req.SortOrder
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("tasks: create: %w", err)
	}

	s.record(ctx, principal, audit.ActionCreate, &task.ID, "Created task: "+task.Title)

	return s.repo.Get(ctx, task.ID)
}

// List returns the tasks the principal may see, refined by the filter.
func (s *Service) List(ctx context.Context, filter TaskFilter, principal *shared.Principal) ([]Task, error) {
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.List(ctx, closure.IDs(), filter)
	if err != nil {
		return nil, fmt.Errorf("tasks: list: %w", err)
	}

	s.record(ctx, principal, audit.ActionRead, nil, fmt.Sprintf("Retrieved %d tasks", len(result)))

	return result, nil
}

// Get returns one task after existence and closure checks.
func (s *Service) Get(ctx context.Context, id uuid.UUID, principal *shared.Principal) (*Task, error) {
	task, err := s.load(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	s.record(ctx, principal, audit.ActionRead, &task.ID, "Viewed task: "+task.Title)

	return task, nil
}

// Update applies a partial update. Viewers may only modify tasks they created.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTaskRequest, principal *shared.Principal) (*Task, error) {
	task, err := s.load(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(task, principal, "modify"); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = string(*req.Status)
	}
	if req.Category != nil {
		updates["category"] = string(*req.Category)
	}
	if req.Priority != nil {
		updates["priority"] = string(*req.Priority)
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.AssignedToID != nil {
		updates["assigned_to_id"] = *req.AssignedToID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("tasks: update: %w", err)
		}
	}

	s.record(ctx, principal, audit.ActionUpdate, &task.ID, "Updated task: "+task.Title)

	return s.repo.Get(ctx, id)
}

// Delete removes one task. Viewers may only delete tasks they created.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, principal *shared.Principal) error {
	task, err := s.load(ctx, id, principal)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(task, principal, "delete"); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}

	s.record(ctx, principal, audit.ActionDelete, &task.ID, "Deleted task: "+task.Title)

	return nil
}

// load fetches a task and runs the shared existence and closure checks.
func (s *Service) load(ctx context.Context, id uuid.UUID, principal *shared.Principal) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !closure.Contains(task.OrganizationID) {
		return nil, fmt.Errorf("%w: you do not have access to this task", shared.ErrForbidden)
	}
	return task, nil
}

// checkOwnership enforces the viewer ownership override: principals below
// Admin level may act only on tasks they created.
func (s *Service) checkOwnership(task *Task, principal *shared.Principal, verb string) error {
	if rbac.AtLeast(principal.RoleLevel, rbac.LevelAdmin) {
		return nil
	}
	if task.CreatedByID == principal.UserID {
		return nil
	}
	return fmt.Errorf("%w: viewers may only %s their own tasks", shared.ErrForbidden, verb)
}

// record appends an audit entry after the primary write has committed.
// Audit failures are reported in the log but never fail the caller.
func (s *Service) record(ctx context.Context, principal *shared.Principal, action audit.Action, resourceID *uuid.UUID, details string) {
	_, err := s.recorder.Append(ctx, audit.Record{
		UserID:     principal.UserID,
		Action:     action,
		Resource:   audit.ResourceTask,
		ResourceID: resourceID,
		Details:    &details,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("audit append failed", slog.Any("error", err), slog.String("action", string(action)))
	}
}
