package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type GetMapMarkersUseCasePort interface {
	Execute(ctx context.Context, bounds domain.Bounds, zoom int) (*domain.MapView, error)
}
