package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type ListPropertiesUseCasePort interface {
	Execute(ctx context.Context, filters domain.PropertyFilters, page, perPage int) (*domain.PaginatedProperties, error)
}
