package usecase

import (
	"context"
	"fmt"
	"time"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

type SubmitEditSessionUseCase struct {
	repo        port.PropertyRepositoryPort
	persistence port.EditPersistencePort
	sessions    port.EditSessionStorePort
	publisher   port.EventPublisherPort
}

func NewSubmitEditSessionUseCase(
	repo port.PropertyRepositoryPort,
	persistence port.EditPersistencePort,
	sessions port.EditSessionStorePort,
	publisher port.EventPublisherPort,
) *SubmitEditSessionUseCase {
	return &SubmitEditSessionUseCase{
		repo:        repo,
		persistence: persistence,
		sessions:    sessions,
		publisher:   publisher,
	}
}

// Execute проверяет и сохраняет правки сессии.
// Порядок: объект -> существующие оценки -> новые оценки. На первой ошибке
// сохранение прекращается, правки остаются в сессии для повторной попытки.
func (uc *SubmitEditSessionUseCase) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "SubmitEditSession",
		"session_id": sessionID,
		"user_id":    ownerID,
	})

	ucLogger.Info("Use case started", nil)

	var (
		saved *domain.Property
		event *domain.ValuationSavedEvent
	)
	err := uc.sessions.With(ctx, sessionID, ownerID, func(r *editor.Reconciler) error {
		merged := r.Merged()
		if errs := r.Validate(merged.PropertiesType); errs.HasErrors() {
			ucLogger.Warn("Edit session failed validation", port.Fields{"errors": errs})
			return &domain.ValidationError{Fields: errs}
		}

		diff := r.Diff()
		if diff.IsEmpty() {
			ucLogger.Info("Nothing to save", nil)
			base := r.Base()
			saved = &base
			return nil
		}

		if err := uc.persist(ctx, diff); err != nil {
			ucLogger.Error("Failed to persist edit session", err, nil)
			return err
		}
		r.Commit()

		fresh, err := uc.repo.GetByID(ctx, merged.ID)
		if err != nil {
			ucLogger.Error("Changes saved but property reload failed", err, nil)
			return fmt.Errorf("failed to reload property: %w", err)
		}
		r.Rebase(*fresh)
		saved = fresh

		owner := ownerID
		event = &domain.ValuationSavedEvent{
			PropertyID:        merged.ID,
			Debitur:           fresh.Debitur,
			UpdatedValuations: len(diff.ValuationUpdates),
			CreatedValuations: len(diff.NewValuations),
			PropertyChanged:   diff.PropertyUpdate != nil,
			UserID:            &owner,
			OccurredAt:        time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// уведомление не должно откатывать уже сохраненные данные
	if event != nil {
		if err := uc.publisher.PublishValuationSaved(ctx, *event); err != nil {
			ucLogger.Warn("Failed to publish valuation saved event", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": saved.ID})
	return saved, nil
}

func (uc *SubmitEditSessionUseCase) persist(ctx context.Context, diff domain.EditDiff) error {
	if diff.PropertyUpdate != nil {
		if err := uc.persistence.UpdateProperty(ctx, diff.PropertyUpdate.ID, diff.PropertyUpdate.Changes); err != nil {
			return fmt.Errorf("%w: property %d: %w", domain.ErrSaveFailed, diff.PropertyUpdate.ID, err)
		}
	}
	for _, upd := range diff.ValuationUpdates {
		if err := uc.persistence.UpdateValuation(ctx, upd.ID, upd.Changes); err != nil {
			return fmt.Errorf("%w: valuation %d: %w", domain.ErrSaveFailed, upd.ID, err)
		}
	}
	if len(diff.NewValuations) > 0 {
		if err := uc.persistence.CreateValuations(ctx, diff.NewValuations); err != nil {
			return fmt.Errorf("%w: new valuations: %w", domain.ErrSaveFailed, err)
		}
	}
	return nil
}
