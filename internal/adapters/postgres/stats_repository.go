package postgres_adapter

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStatsRepository считает сводку для дашборда.
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStatsRepository(pool *pgxpool.Pool) (*PostgresStatsRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresStatsRepository{pool: pool}, nil
}

func (r *PostgresStatsRepository) GetDashboardStats(ctx context.Context, latestLimit int) (*domain.DashboardStats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresStatsRepository",
		"method":    "GetDashboardStats",
	})

	// все цифры сводки из одного снимка
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stats := &domain.DashboardStats{
		PropertiesByType: make(map[string]int64),
		LatestValuations: []domain.LatestValuation{},
	}

	rows, err := tx.Query(ctx, `SELECT properties_type, COUNT(*) FROM properties GROUP BY properties_type`)
	if err != nil {
		repoLogger.Error("Failed to count properties by type", err, nil)
		return nil, fmt.Errorf("failed to count properties by type: %w", err)
	}
	for rows.Next() {
		var propertiesType string
		var count int64
		if err := rows.Scan(&propertiesType, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan properties count: %w", err)
		}
		stats.PropertiesByType[propertiesType] = count
		stats.TotalProperties += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during properties count iteration: %w", err)
	}

	err = tx.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_value), 0)::bigint FROM valuations`).
		Scan(&stats.TotalValuations, &stats.SumTotalValue)
	if err != nil {
		repoLogger.Error("Failed to aggregate valuations", err, nil)
		return nil, fmt.Errorf("failed to aggregate valuations: %w", err)
	}

	latest, err := tx.Query(ctx, `
		SELECT v.id, v.property_id, p.debitur, COALESCE(to_char(v.valuation_date, 'YYYY-MM-DD'), ''),
		       v.total_value, v.appraiser
		FROM valuations v
		JOIN properties p ON p.id = v.property_id
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT $1`, latestLimit)
	if err != nil {
		repoLogger.Error("Failed to query latest valuations", err, nil)
		return nil, fmt.Errorf("failed to query latest valuations: %w", err)
	}
	defer latest.Close()
	for latest.Next() {
		var lv domain.LatestValuation
		if err := latest.Scan(&lv.ValuationID, &lv.PropertyID, &lv.Debitur, &lv.ValuationDate, &lv.TotalValue, &lv.Appraiser); err != nil {
			return nil, fmt.Errorf("failed to scan latest valuation: %w", err)
		}
		stats.LatestValuations = append(stats.LatestValuations, lv)
	}
	if err := latest.Err(); err != nil {
		return nil, fmt.Errorf("error during latest valuations iteration: %w", err)
	}

	repoLogger.Debug("Dashboard stats collected", port.Fields{"total_properties": stats.TotalProperties})
	return stats, nil
}
