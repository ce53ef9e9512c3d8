package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type GetPropertyUseCasePort interface {
	Execute(ctx context.Context, id int64) (*domain.Property, error)
}
