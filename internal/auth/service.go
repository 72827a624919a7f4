package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/shared"
	"github.com/tasktrail/tasktrail/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users    users.Repository
	roles    rbac.Repository
	tokens   *TokenManager
	denylist *Denylist
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewService constructs an auth service.
func NewService(userRepo users.Repository, roleRepo rbac.Repository, tokens *TokenManager, denylist *Denylist, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{users: userRepo, roles: roleRepo, tokens: tokens, denylist: denylist, recorder: recorder, logger: logger}
}

// Login validates credentials and issues an access token. Successful logins
// are audited with the caller's network origin.
func (s *Service) Login(ctx context.Context, req LoginRequest, ip, userAgent string) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.recordAuth(ctx, user.ID, audit.ActionLogin, "User logged in", ip, userAgent)

	return &AuthResponse{AccessToken: token, User: *user}, nil
}

// Register creates a self-service account and issues a token. The chosen
// role must exist; unlike user management there is no principal to compare
// against, so registration is only exposed where the deployment allows it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if _, err := s.roles.Get(ctx, req.RoleID); err != nil {
		return nil, fmt.Errorf("%w: role", shared.ErrNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := users.User{
		ID:             uuid.New(),
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		OrganizationID: req.OrganizationID,
		RoleID:         req.RoleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	created, err := s.users.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(created)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: token, User: *created}, nil
}

// Logout revokes the presented token and audits the event.
func (s *Service) Logout(ctx context.Context, principal *shared.Principal, jti string, expiresAt time.Time, ip, userAgent string) error {
	if err := s.denylist.Revoke(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	s.recordAuth(ctx, principal.UserID, audit.ActionLogout, "User logged out", ip, userAgent)
	return nil
}

// Profile returns the authenticated user's own record.
func (s *Service) Profile(ctx context.Context, principal *shared.Principal) (*users.User, error) {
	return s.users.Get(ctx, principal.UserID)
}

func (s *Service) recordAuth(ctx context.Context, userID uuid.UUID, action audit.Action, details, ip, userAgent string) {
	rec := audit.Record{
		UserID:     userID,
		Action:     action,
		Resource:   audit.ResourceAuth,
		ResourceID: &userID,
		Details:    &details,
	}
	if ip != "" {
		rec.IPAddress = &ip
	}
	if userAgent != "" {
		rec.UserAgent = &userAgent
	}
	if _, err := s.recorder.Append(ctx, rec); err != nil && s.logger != nil {
		s.logger.Error("audit append failed", slog.Any("error", err), slog.String("action", string(action)))
	}
}
