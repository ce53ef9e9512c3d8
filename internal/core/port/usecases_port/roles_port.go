package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type ListRolesUseCasePort interface {
	Execute(ctx context.Context) ([]domain.Role, error)
}

type CreateRoleUseCasePort interface {
	Execute(ctx context.Context, name, description string) (*domain.Role, error)
}
