package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type ListNotificationsUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, page, perPage int) (*domain.PaginatedNotifications, error)
}

type MarkNotificationReadUseCasePort interface {
	Execute(ctx context.Context, notificationID, userID uuid.UUID) error
}

// ProcessEventUseCasePort превращает входящие события в уведомления.
type ProcessEventUseCasePort interface {
	ValuationSaved(ctx context.Context, event domain.ValuationSavedEvent) error
	ImportCompleted(ctx context.Context, event domain.ImportCompletedEvent) error
}
