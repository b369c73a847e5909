package user

import (
	"context"

	domain "user-rest-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in UserDTO) (*domain.User, error)
	Update(ctx context.Context, in UserDTO) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
