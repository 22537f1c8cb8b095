package services

import (
	"context"

	"loja/internal/models"
	"loja/internal/repositories"
)

// UserService handles reads and partial updates of user accounts.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser writes the firstname, surname and email keys of fields. Other
// keys are ignored.
func (s *UserService) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	return s.repo.Update(ctx, id, fields)
}

// DeleteUser deletes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
