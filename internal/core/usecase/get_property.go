package usecase

import (
	"context"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"
)

type GetPropertyUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewGetPropertyUseCase(repo port.PropertyRepositoryPort) *GetPropertyUseCase {
	return &GetPropertyUseCase{repo: repo}
}

func (uc *GetPropertyUseCase) Execute(ctx context.Context, id int64) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetProperty",
		"property_id": id,
	})

	ucLogger.Info("Use case started", nil)

	property, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err // ошибка уже залогирована и обернута в репозитории
	}

	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}
