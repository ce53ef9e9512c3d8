package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

type DiscardEditSessionUseCasePort interface {
	Execute(ctx context.Context, sessionID, ownerID uuid.UUID) error
}
