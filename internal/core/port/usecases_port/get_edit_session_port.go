package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/editor"

	"github.com/google/uuid"
)

type GetEditSessionUseCasePort interface {
	Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*editor.View, error)
}
