package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/editor"

	"github.com/google/uuid"
)

type StartEditSessionUseCasePort interface {
	// Возвращает id сессии и ее начальное представление
	Execute(ctx context.Context, propertyID int64, ownerID uuid.UUID) (uuid.UUID, *editor.View, error)
}
