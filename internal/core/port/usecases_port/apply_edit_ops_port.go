package usecases_port

import (
	"context"

	"appraisal-portal/internal/core/editor"

	"github.com/google/uuid"
)

type ApplyEditOpsUseCasePort interface {
	Execute(ctx context.Context, sessionID, ownerID uuid.UUID, ops []editor.Op) (*editor.View, error)
}
