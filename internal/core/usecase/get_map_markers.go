package usecase

import (
	"context"
	"fmt"
	"sort"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/mmcloughlin/geohash"
)

const (
	// с этого масштаба маркеры отдаются по одному
	individualMarkersZoom = 14
	maxMarkersPerQuery    = 5000
	// до этого размера кластер перечисляет свои объекты
	clusterListLimit = 20
)

type GetMapMarkersUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewGetMapMarkersUseCase(repo port.PropertyRepositoryPort) *GetMapMarkersUseCase {
	return &GetMapMarkersUseCase{repo: repo}
}

// Execute отвечает на смену границ карты: маркеры внутри области,
// на мелком масштабе сгруппированные по префиксу geohash.
func (uc *GetMapMarkersUseCase) Execute(ctx context.Context, bounds domain.Bounds, zoom int) (*domain.MapView, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetMapMarkers",
		"zoom":     zoom,
	})

	ucLogger.Info("Use case started", nil)

	markers, err := uc.repo.FindMarkers(ctx, bounds, maxMarkersPerQuery)
	if err != nil {
		ucLogger.Error("Failed to find markers", err, nil)
		return nil, fmt.Errorf("failed to find markers: %w", err)
	}

	inside := markers[:0]
	for _, m := range markers {
		if bounds.Contains(m.Latitude, m.Longitude) {
			inside = append(inside, m)
		}
	}

	view := &domain.MapView{Markers: inside}
	if zoom < individualMarkersZoom {
		view.Precision = precisionForZoom(zoom)
		view.Clusters = ClusterMarkers(inside, view.Precision)
		view.Clustered = true
		view.Markers = nil
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"markers":   len(inside),
		"clusters":  len(view.Clusters),
		"precision": view.Precision,
	})
	return view, nil
}

func precisionForZoom(zoom int) uint {
	switch {
	case zoom <= 2:
		return 2
	case zoom <= 5:
		return 3
	case zoom <= 8:
		return 4
	case zoom <= 11:
		return 5
	default:
		return 6
	}
}

// ClusterMarkers группирует маркеры по ячейкам geohash заданной точности.
// Центр кластера - среднее координат его маркеров.
func ClusterMarkers(markers []domain.MapMarker, precision uint) []domain.MarkerCluster {
	type acc struct {
		latSum, lngSum float64
		ids            []int64
	}
	cells := make(map[string]*acc)
	for _, m := range markers {
		key := geohash.EncodeWithPrecision(m.Latitude, m.Longitude, precision)
		a, ok := cells[key]
		if !ok {
			a = &acc{}
			cells[key] = a
		}
		a.latSum += m.Latitude
		a.lngSum += m.Longitude
		a.ids = append(a.ids, m.PropertyID)
	}

	clusters := make([]domain.MarkerCluster, 0, len(cells))
	for key, a := range cells {
		n := float64(len(a.ids))
		c := domain.MarkerCluster{
			Geohash:   key,
			Latitude:  a.latSum / n,
			Longitude: a.lngSum / n,
			Count:     len(a.ids),
		}
		if len(a.ids) <= clusterListLimit {
			c.PropertyIDs = a.ids
		}
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Geohash < clusters[j].Geohash })
	return clusters
}
