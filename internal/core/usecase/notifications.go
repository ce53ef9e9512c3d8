package usecase

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

type ListNotificationsUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewListNotificationsUseCase(repo port.NotificationRepositoryPort) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, userID uuid.UUID, page, perPage int) (*domain.PaginatedNotifications, error) {
	page, perPage = normalizePage(page, perPage)

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListNotifications",
		"user_id":  userID,
		"page":     page,
	})

	ucLogger.Info("Use case started", nil)

	result, err := uc.repo.ListForUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		ucLogger.Error("Failed to list notifications", err, nil)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"total_count": result.TotalCount})
	return result, nil
}

type MarkNotificationReadUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewMarkNotificationReadUseCase(repo port.NotificationRepositoryPort) *MarkNotificationReadUseCase {
	return &MarkNotificationReadUseCase{repo: repo}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, notificationID, userID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":        "MarkNotificationRead",
		"notification_id": notificationID,
		"user_id":         userID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.repo.MarkRead(ctx, notificationID, userID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

// ProcessEventUseCase сохраняет уведомление о событии и рассылает его подписчикам.
type ProcessEventUseCase struct {
	repo     port.NotificationRepositoryPort
	notifier port.NotifierPort
}

func NewProcessEventUseCase(repo port.NotificationRepositoryPort, notifier port.NotifierPort) *ProcessEventUseCase {
	return &ProcessEventUseCase{repo: repo, notifier: notifier}
}

func (uc *ProcessEventUseCase) ValuationSaved(ctx context.Context, event domain.ValuationSavedEvent) error {
	title := "Valuation saved"
	message := fmt.Sprintf("Property #%d (%s): %d valuation(s) updated, %d added",
		event.PropertyID, event.Debitur, event.UpdatedValuations, event.CreatedValuations)
	if event.PropertyChanged {
		message += ", property details changed"
	}
	propertyID := event.PropertyID

	// о сохранении оценки узнают все пользователи
	n := domain.NewNotification(domain.NotificationValuationSaved, title, message, nil, &propertyID)
	return uc.store(ctx, "ValuationSaved", n)
}

func (uc *ProcessEventUseCase) ImportCompleted(ctx context.Context, event domain.ImportCompletedEvent) error {
	title := "Import completed"
	message := fmt.Sprintf("%s: %d row(s) imported, %d failed", event.FileName, event.Imported, event.Failed)

	// результат импорта нужен только тому, кто его запускал
	n := domain.NewNotification(domain.NotificationImportCompleted, title, message, event.UserID, nil)
	return uc.store(ctx, "ImportCompleted", n)
}

func (uc *ProcessEventUseCase) store(ctx context.Context, eventName string, n *domain.Notification) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":        "ProcessEvent",
		"event":           eventName,
		"notification_id": n.ID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.repo.Save(ctx, n); err != nil {
		ucLogger.Error("Failed to save notification", err, nil)
		return fmt.Errorf("failed to save notification: %w", err)
	}
	uc.notifier.Notify(*n)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
