package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type CreatePropertyUseCasePort interface {
	Execute(ctx context.Context, property domain.Property) (*domain.Property, error)
}
