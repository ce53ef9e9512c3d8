package port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type NotificationRepositoryPort interface {
	Save(ctx context.Context, n *domain.Notification) error
	// ListForUser возвращает личные уведомления пользователя и широковещательные (user_id IS NULL).
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedNotifications, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
