package usecases_port

import (
	"context"
	"io"

	"appraisal-portal/internal/core/domain"
)

type ExportPropertiesUseCasePort interface {
	// Пишет CSV в w, возвращает число выгруженных строк
	Execute(ctx context.Context, filters domain.PropertyFilters, w io.Writer) (int, error)
}
