package port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type UserRepositoryPort interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RoleRepositoryPort interface {
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
	Exists(ctx context.Context, name string) (bool, error)
}
