package port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type EventPublisherPort interface {
	PublishValuationSaved(ctx context.Context, event domain.ValuationSavedEvent) error
	PublishImportCompleted(ctx context.Context, event domain.ImportCompletedEvent) error
}

// EventListenerPort - входящий поток событий, который слушает App.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
