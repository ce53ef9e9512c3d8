package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type CreateUserUseCasePort interface {
	Execute(ctx context.Context, email, fullName, password, role string) (*domain.User, error)
}

type ListUsersUseCasePort interface {
	Execute(ctx context.Context) ([]domain.User, error)
}

type AssignRoleUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, role string) error
}

type DeleteUserUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) error
}
