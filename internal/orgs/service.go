package orgs

import (
	"context"
	"fmt"

	"github.com/tasktrail/tasktrail/internal/shared"
)

// Service exposes closure-filtered reads over the organization tree.
type Service struct {
	repo     Repository
	resolver *Resolver
}

// NewService constructs a Service.
func NewService(repo Repository, resolver *Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// List returns the organizations visible to the principal, name ascending.
func (s *Service) List(ctx context.Context, principal *shared.Principal) ([]Organization, error) {
	closure, err := s.resolver.Closure(ctx, principal)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("orgs: list organizations: %w", err)
	}
	visible := make([]Organization, 0, len(all))
	for _, org := range all {
		if closure.Contains(org.ID) {
			visible = append(visible, org)
		}
	}
	return visible, nil
}
