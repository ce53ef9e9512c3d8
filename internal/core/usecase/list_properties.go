package usecase

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type ListPropertiesUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewListPropertiesUseCase(repo port.PropertyRepositoryPort) *ListPropertiesUseCase {
	return &ListPropertiesUseCase{repo: repo}
}

func (uc *ListPropertiesUseCase) Execute(ctx context.Context, filters domain.PropertyFilters, page, perPage int) (*domain.PaginatedProperties, error) {
	page, perPage = normalizePage(page, perPage)

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListProperties",
		"page":     page,
		"per_page": perPage,
	})

	ucLogger.Info("Use case started", nil)

	result, err := uc.repo.List(ctx, filters, perPage, (page-1)*perPage)
	if err != nil {
		ucLogger.Error("Failed to list properties", err, nil)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_count":   result.TotalCount,
		"items_on_page": len(result.Items),
	})
	return result, nil
}

// normalizePage приводит параметры страницы к допустимым значениям.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
