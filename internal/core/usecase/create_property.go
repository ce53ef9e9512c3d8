package usecase

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"
)

type CreatePropertyUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewCreatePropertyUseCase(repo port.PropertyRepositoryPort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{repo: repo}
}

// Execute проверяет новый объект теми же правилами, что и форму редактирования, и сохраняет его.
func (uc *CreatePropertyUseCase) Execute(ctx context.Context, property domain.Property) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":        "CreateProperty",
		"properties_type": property.PropertiesType,
		"valuations":      len(property.Valuations),
	})

	ucLogger.Info("Use case started", nil)

	if errs := editor.FromDraft(property).Validate(property.PropertiesType); errs.HasErrors() {
		ucLogger.Warn("Property failed validation", port.Fields{"errors": errs})
		return nil, &domain.ValidationError{Fields: errs}
	}

	id, err := uc.repo.Create(ctx, &property)
	if err != nil {
		ucLogger.Error("Failed to save property", err, nil)
		return nil, fmt.Errorf("failed to save property: %w", err)
	}

	created, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Failed to reload created property", err, port.Fields{"property_id": id})
		return nil, fmt.Errorf("failed to reload property: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": id})
	return created, nil
}
