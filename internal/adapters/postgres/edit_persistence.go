package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/jackc/pgx/v5"
)

// UpdateProperty применяет правки объекта и его локации в одной транзакции.
func (r *PostgresPropertyRepository) UpdateProperty(ctx context.Context, id int64, changes domain.ChangeSet) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "UpdateProperty",
		"property_id": id,
		"fields":      len(changes),
	})

	propertyChanges, locationChanges := changes.Split()
	set, err := buildSetClause(propertyChanges, propertyColumns)
	if err != nil {
		return err
	}
	set.addRaw("updated_at", "now()")

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	setSQL, idArg := set.sql()
	query := fmt.Sprintf("UPDATE properties SET %s WHERE id = $%d", setSQL, idArg)
	cmdTag, err := tx.Exec(ctx, query, append(set.args, id)...)
	if err != nil {
		repoLogger.Error("Failed to update property", err, port.Fields{"query": query})
		return fmt.Errorf("failed to update property: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}

	if len(locationChanges) > 0 {
		current, err := lockLocation(ctx, tx, id)
		if err != nil {
			repoLogger.Error("Failed to read location", err, nil)
			return err
		}
		updated := applyLocationChanges(current, locationChanges)
		if err := upsertLocation(ctx, tx, id, newLocationRow(updated)); err != nil {
			repoLogger.Error("Failed to update location", err, nil)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Property updated", nil)
	return nil
}

// lockLocation читает текущую локацию под блокировкой строки. Отсутствующая локация - пустая.
func lockLocation(ctx context.Context, tx pgx.Tx, propertyID int64) (domain.Location, error) {
	var loc domain.Location
	err := tx.QueryRow(ctx, `
		SELECT id, latitude_raw, longitude_raw, address
		FROM locations WHERE property_id = $1
		FOR UPDATE`, propertyID,
	).Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Address)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return loc, fmt.Errorf("failed to lock location: %w", err)
	}
	return loc, nil
}

// UpdateValuation применяет правки одной сохраненной оценки.
func (r *PostgresPropertyRepository) UpdateValuation(ctx context.Context, id int64, changes domain.ChangeSet) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "PostgresPropertyRepository",
		"method":       "UpdateValuation",
		"valuation_id": id,
		"fields":       len(changes),
	})

	set, err := buildSetClause(changes, valuationColumns)
	if err != nil {
		return err
	}
	if set.empty() {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	setSQL, idArg := set.sql()
	query := fmt.Sprintf("UPDATE valuations SET %s WHERE id = $%d RETURNING property_id", setSQL, idArg)
	var propertyID int64
	if err := tx.QueryRow(ctx, query, append(set.args, id)...).Scan(&propertyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrValuationNotFound
		}
		repoLogger.Error("Failed to update valuation", err, port.Fields{"query": query})
		return fmt.Errorf("failed to update valuation: %w", err)
	}
	if err := touchProperty(ctx, tx, propertyID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Valuation updated", port.Fields{"property_id": propertyID})
	return nil
}

// CreateValuations вставляет новые оценки в порядке среза одной транзакцией.
func (r *PostgresPropertyRepository) CreateValuations(ctx context.Context, valuations []domain.Valuation) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "CreateValuations",
		"count":     len(valuations),
	})

	if len(valuations) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertValuations(ctx, tx, valuations); err != nil {
		repoLogger.Error("Failed to insert valuations", err, nil)
		return err
	}

	touched := make(map[int64]bool)
	for _, v := range valuations {
		if touched[v.PropertyID] {
			continue
		}
		touched[v.PropertyID] = true
		if err := touchProperty(ctx, tx, v.PropertyID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Valuations created", nil)
	return nil
}
