package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

type SubmitEditSessionUseCasePort interface {
	// Возвращает объект, перечитанный из хранилища после сохранения
	Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*domain.Property, error)
}
