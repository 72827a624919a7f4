package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
)

// ClosureResolver computes the set of organizations a principal may act within.
type ClosureResolver interface {
	Closure(ctx context.Context, principal *shared.Principal) (orgs.Closure, error)
}

// Service evaluates user-management authorization rules. The coarse
// capability gate (minimum Admin level for mutations) runs at the router;
// this layer enforces closure membership and role-hierarchy comparisons.
type Service struct {
	repo     Repository
	roles    rbac.Repository
	orgRepo  orgs.Repository
	resolver ClosureResolver
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewService constructs a user service.
func NewService(repo Repository, roles rbac.Repository, orgRepo orgs.Repository, resolver ClosureResolver, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roles, orgRepo: orgRepo, resolver: resolver, recorder: recorder, logger: logger}
}

// Create stores a new user after closure and role-hierarchy checks. The
// target role must rank strictly below the principal's: no creating peers
// or superiors.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, principal *shared.Principal) (*User, error) {
	if _, err := s.orgRepo.Get(ctx, req.OrganizationID); err != nil {
		return nil, fmt.Errorf("%w: organization", shared.ErrNotFound)
	}
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !closure.Contains(req.OrganizationID) {
		return nil, fmt.Errorf("%w: you cannot create users in this organization", shared.ErrForbidden)
	}

	role, err := s.roles.Get(ctx, req.RoleID)
	if err != nil {
		return nil, fmt.Errorf("%w: role", shared.ErrNotFound)
	}
	if !rbac.StrictlyBelow(role.Level, principal.RoleLevel) {
		return nil, fmt.Errorf("%w: you cannot create users with equal or higher role level", shared.ErrForbidden)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	user := User{
		ID:             uuid.New(),
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		OrganizationID: req.OrganizationID,
		RoleID:         req.RoleID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, principal, audit.ActionCreate, &user.ID, "Created user: "+user.Email)

	return s.repo.Get(ctx, user.ID)
}

// List returns the users inside the principal's closure.
func (s *Service) List(ctx context.Context, principal *shared.Principal) ([]User, error) {
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, closure.IDs())
}

// Get returns one user after existence and closure checks.
func (s *Service) Get(ctx context.Context, id uuid.UUID, principal *shared.Principal) (*User, error) {
	return s.load(ctx, id, principal)
}

// Update applies a partial update. Assigning a role at or above the
// principal's own level is denied.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest, principal *shared.Principal) (*User, error) {
	user, err := s.load(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.RoleID != nil {
		newRole, err := s.roles.Get(ctx, *req.RoleID)
		if err != nil {
			return nil, fmt.Errorf("%w: role", shared.ErrNotFound)
		}
		if !rbac.StrictlyBelow(newRole.Level, principal.RoleLevel) {
			return nil, fmt.Errorf("%w: you cannot assign equal or higher role level", shared.ErrForbidden)
		}
		updates["role_id"] = *req.RoleID
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}

	s.record(ctx, principal, audit.ActionUpdate, &user.ID, "Updated user: "+user.Email)

	return s.repo.Get(ctx, id)
}

// Delete removes one user. Deleting a peer, a superior, or yourself is denied.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, principal *shared.Principal) error {
	user, err := s.load(ctx, id, principal)
	if err != nil {
		return err
	}
	if !rbac.StrictlyBelow(user.RoleLevel, principal.RoleLevel) {
		return fmt.Errorf("%w: you cannot delete users with equal or higher role level", shared.ErrForbidden)
	}
	if user.ID == principal.UserID {
		return fmt.Errorf("%w: you cannot delete yourself", shared.ErrForbidden)
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}

	s.record(ctx, principal, audit.ActionDelete, &id, "Deleted user: "+user.Email)

	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, principal *shared.Principal) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !closure.Contains(user.OrganizationID) {
		return nil, fmt.Errorf("%w: you do not have access to this user", shared.ErrForbidden)
	}
	return user, nil
}

func (s *Service) record(ctx context.Context, principal *shared.Principal, action audit.Action, resourceID *uuid.UUID, details string) {
	_, err := s.recorder.Append(ctx, audit.Record{
		UserID:     principal.UserID,
		Action:     action,
		Resource:   audit.ResourceUser,
		ResourceID: resourceID,
		Details:    &details,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("audit append failed", slog.Any("error", err), slog.String("action", string(action)))
	}
}
