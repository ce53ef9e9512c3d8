package port

import (
	"context"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"

	"github.com/google/uuid"
)

// EditSessionStorePort хранит открытые сессии редактирования.
type EditSessionStorePort interface {
	Create(ctx context.Context, ownerID uuid.UUID, base domain.Property) (uuid.UUID, error)
	// With выполняет fn под замком сессии и продлевает ее срок жизни.
	// Чужая или истекшая сессия дает domain.ErrSessionNotFound.
	With(ctx context.Context, id, ownerID uuid.UUID, fn func(r *editor.Reconciler) error) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
