package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssignmentService resolves which users may own a ticket category.
type AssignmentService struct {
	users repository.UserRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(users repository.UserRepository) *AssignmentService {
	return &AssignmentService{users: users}
}

// Candidates lists users permitted to own category, oldest account first.
func (s *AssignmentService) Candidates(ctx context.Context, category domain.Category) ([]domain.User, error) {
	roles := domain.RolesForCategory(category)
	if len(roles) == 0 {
		return nil, nil
	}
	users, err := s.users.ListByRoles(ctx, roles)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return users, nil
}

// SelectAssignee picks the first permitted candidate. The candidate list is returned for fan-out;
// the assignee is nil when nobody may own the category.
func (s *AssignmentService) SelectAssignee(ctx context.Context, category domain.Category) (*domain.User, []domain.User, error) {
	candidates, err := s.Candidates(ctx, category)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, candidates, nil
	}
	assignee := candidates[0]
	return &assignee, candidates, nil
}

// UsersWithRole lists every user holding role.
func (s *AssignmentService) UsersWithRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.users.ListByRoles(ctx, []domain.Role{role})
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return users, nil
}
