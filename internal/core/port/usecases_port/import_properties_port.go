package usecases_port

import (
	"context"
	"io"

	"appraisal-portal/internal/core/domain"
)

type ImportPropertiesUseCasePort interface {
	Execute(ctx context.Context, req domain.ImportRequest, file io.Reader) (*domain.ImportReport, error)
}
