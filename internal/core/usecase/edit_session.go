package usecase

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

type StartEditSessionUseCase struct {
	repo     port.PropertyRepositoryPort
	sessions port.EditSessionStorePort
}

func NewStartEditSessionUseCase(repo port.PropertyRepositoryPort, sessions port.EditSessionStorePort) *StartEditSessionUseCase {
	return &StartEditSessionUseCase{repo: repo, sessions: sessions}
}

// Execute загружает снимок объекта и открывает над ним пустую сессию правок.
func (uc *StartEditSessionUseCase) Execute(ctx context.Context, propertyID int64, ownerID uuid.UUID) (uuid.UUID, *editor.View, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "StartEditSession",
		"property_id": propertyID,
		"user_id":     ownerID,
	})

	ucLogger.Info("Use case started", nil)

	base, err := uc.repo.GetByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return uuid.Nil, nil, err
	}

	sessionID, err := uc.sessions.Create(ctx, ownerID, *base)
	if err != nil {
		ucLogger.Error("Failed to create edit session", err, nil)
		return uuid.Nil, nil, fmt.Errorf("failed to create edit session: %w", err)
	}

	view := editor.New(*base).View()

	ucLogger.Info("Use case finished successfully", port.Fields{"session_id": sessionID})
	return sessionID, &view, nil
}

type GetEditSessionUseCase struct {
	sessions port.EditSessionStorePort
}

func NewGetEditSessionUseCase(sessions port.EditSessionStorePort) *GetEditSessionUseCase {
	return &GetEditSessionUseCase{sessions: sessions}
}

func (uc *GetEditSessionUseCase) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*editor.View, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "GetEditSession",
		"session_id": sessionID,
	})

	var view editor.View
	err := uc.sessions.With(ctx, sessionID, ownerID, func(r *editor.Reconciler) error {
		view = r.View()
		return nil
	})
	if err != nil {
		ucLogger.Warn("Edit session is not available", port.Fields{"error": err.Error()})
		return nil, err
	}
	return &view, nil
}

type ApplyEditOpsUseCase struct {
	sessions port.EditSessionStorePort
}

func NewApplyEditOpsUseCase(sessions port.EditSessionStorePort) *ApplyEditOpsUseCase {
	return &ApplyEditOpsUseCase{sessions: sessions}
}

// Execute применяет пакет правок. Валидация не блокирует запись:
// ошибки возвращаются в представлении, чтобы форма их показала.
func (uc *ApplyEditOpsUseCase) Execute(ctx context.Context, sessionID, ownerID uuid.UUID, ops []editor.Op) (*editor.View, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ApplyEditOps",
		"session_id": sessionID,
		"ops":        len(ops),
	})

	ucLogger.Info("Use case started", nil)

	var view editor.View
	err := uc.sessions.With(ctx, sessionID, ownerID, func(r *editor.Reconciler) error {
		if err := r.Apply(ops); err != nil {
			return err
		}
		view = r.View()
		return nil
	})
	if err != nil {
		ucLogger.Warn("Failed to apply edit operations", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"dirty":             view.Dirty,
		"validation_errors": len(view.Errors),
	})
	return &view, nil
}

type DiscardEditSessionUseCase struct {
	sessions port.EditSessionStorePort
}

func NewDiscardEditSessionUseCase(sessions port.EditSessionStorePort) *DiscardEditSessionUseCase {
	return &DiscardEditSessionUseCase{sessions: sessions}
}

func (uc *DiscardEditSessionUseCase) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "DiscardEditSession",
		"session_id": sessionID,
	})

	ucLogger.Info("Use case started", nil)

	err := uc.sessions.With(ctx, sessionID, ownerID, func(r *editor.Reconciler) error {
		r.Discard()
		return nil
	})
	if err != nil {
		ucLogger.Warn("Edit session is not available", port.Fields{"error": err.Error()})
		return err
	}
	if err := uc.sessions.Delete(ctx, sessionID, ownerID); err != nil {
		ucLogger.Error("Failed to delete edit session", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
