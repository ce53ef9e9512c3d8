package port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

type PropertyRepositoryPort interface {
	// Create сохраняет объект, его локацию и начальные оценки в одной транзакции.
	Create(ctx context.Context, property *domain.Property) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	List(ctx context.Context, filters domain.PropertyFilters, limit, offset int) (*domain.PaginatedProperties, error)
	ListForExport(ctx context.Context, filters domain.PropertyFilters, limit int) ([]domain.PropertyListItem, error)
	Delete(ctx context.Context, id int64) error
	DeleteValuation(ctx context.Context, id int64) error
	FindMarkers(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.MapMarker, error)
}

// EditPersistencePort принимает изменения сессии редактирования.
// Каждый вызов - отдельная транзакция, nil означает успех.
type EditPersistencePort interface {
	UpdateProperty(ctx context.Context, id int64, changes domain.ChangeSet) error
	UpdateValuation(ctx context.Context, id int64, changes domain.ChangeSet) error
	CreateValuations(ctx context.Context, valuations []domain.Valuation) error
}

type StatsRepositoryPort interface {
	GetDashboardStats(ctx context.Context, latestLimit int) (*domain.DashboardStats, error)
}
