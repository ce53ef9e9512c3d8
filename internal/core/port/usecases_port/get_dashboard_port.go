package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type GetDashboardUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error)
}
