package usecase

import (
	"context"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/port"
)

type DeletePropertyUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewDeletePropertyUseCase(repo port.PropertyRepositoryPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{repo: repo}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, id int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"property_id": id,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.repo.Delete(ctx, id); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type DeleteValuationUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewDeleteValuationUseCase(repo port.PropertyRepositoryPort) *DeleteValuationUseCase {
	return &DeleteValuationUseCase{repo: repo}
}

func (uc *DeleteValuationUseCase) Execute(ctx context.Context, id int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "DeleteValuation",
		"valuation_id": id,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.repo.DeleteValuation(ctx, id); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
