package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPropertyRepository хранит объекты, их локации и оценки.
// Реализует PropertyRepositoryPort и EditPersistencePort.
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPropertyRepository(pool *pgxpool.Pool) (*PostgresPropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyRepository{pool: pool}, nil
}

const listSelect = `
	SELECT p.id, p.debitur, p.properties_type, p.object_type, p.phone_number,
	       p.land_area, p.building_area,
	       COALESCE(l.address, ''), COALESCE(l.latitude_raw, ''), COALESCE(l.longitude_raw, ''),
	       (SELECT COUNT(*) FROM valuations vc WHERE vc.property_id = p.id),
	       COALESCE(to_char(lv.valuation_date, 'YYYY-MM-DD'), ''),
	       COALESCE(lv.total_value, 0), COALESCE(lv.report_number, ''),
	       p.updated_at
	FROM properties p
	LEFT JOIN locations l ON l.property_id = p.id
	LEFT JOIN LATERAL (
		SELECT v.valuation_date, v.total_value, v.report_number
		FROM valuations v
		WHERE v.property_id = p.id
		ORDER BY v.id DESC
		LIMIT 1
	) lv ON true`

func scanListItems(rows pgx.Rows) ([]domain.PropertyListItem, error) {
	defer rows.Close()
	items := make([]domain.PropertyListItem, 0)
	for rows.Next() {
		var it domain.PropertyListItem
		if err := rows.Scan(
			&it.ID, &it.Debitur, &it.PropertiesType, &it.ObjectType, &it.PhoneNumber,
			&it.LandArea, &it.BuildingArea,
			&it.Address, &it.Latitude, &it.Longitude,
			&it.ValuationsCount,
			&it.LastValuationDate, &it.LastTotalValue, &it.LastReportNumber,
			&it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during property rows iteration: %w", err)
	}
	return items, nil
}

// Create сохраняет объект, локацию и начальные оценки одной транзакцией.
func (r *PostgresPropertyRepository) Create(ctx context.Context, p *domain.Property) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "Create",
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO properties (debitur, land_area, building_area, phone_number, properties_type, object_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.Debitur, p.LandArea, p.BuildingArea, p.PhoneNumber, p.PropertiesType, p.ObjectType,
	).Scan(&id)
	if err != nil {
		repoLogger.Error("Failed to insert property", err, nil)
		return 0, fmt.Errorf("failed to insert property: %w", err)
	}

	if err := upsertLocation(ctx, tx, id, newLocationRow(p.Location)); err != nil {
		repoLogger.Error("Failed to insert location", err, port.Fields{"property_id": id})
		return 0, err
	}

	valuations := make([]domain.Valuation, len(p.Valuations))
	for i, v := range p.Valuations {
		v.PropertyID = id
		valuations[i] = v
	}
	if err := insertValuations(ctx, tx, valuations); err != nil {
		repoLogger.Error("Failed to insert valuations", err, port.Fields{"property_id": id})
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Property created", port.Fields{"property_id": id, "valuations": len(valuations)})
	return id, nil
}

func upsertLocation(ctx context.Context, tx pgx.Tx, propertyID int64, loc locationRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO locations (property_id, latitude_raw, longitude_raw, latitude, longitude, geohash, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (property_id) DO UPDATE SET
			latitude_raw = EXCLUDED.latitude_raw,
			longitude_raw = EXCLUDED.longitude_raw,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geohash = EXCLUDED.geohash,
			address = EXCLUDED.address`,
		propertyID, loc.LatitudeRaw, loc.LongitudeRaw, loc.Latitude, loc.Longitude, loc.Geohash, loc.Address,
	)
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// insertValuations вставляет оценки одним батчем в порядке среза
func insertValuations(ctx context.Context, tx pgx.Tx, valuations []domain.Valuation) error {
	if len(valuations) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range valuations {
		batch.Queue(`
			INSERT INTO valuations (property_id, valuation_date, land_value, building_value, total_value, report_number, appraiser)
			VALUES ($1, NULLIF($2, '')::date, $3, $4, $5, $6, $7)`,
			v.PropertyID, v.ValuationDate, v.LandValue, v.BuildingValue, v.TotalValue, v.ReportNumber, v.Appraiser,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range valuations {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isForeignKeyViolation(err) {
				return fmt.Errorf("valuation %d: %w", i, domain.ErrPropertyNotFound)
			}
			return fmt.Errorf("failed to insert valuation %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close valuations batch: %w", err)
	}
	return nil
}

// GetByID возвращает объект с локацией и оценками в порядке ввода.
func (r *PostgresPropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "GetByID",
		"property_id": id,
	})

	var p domain.Property
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.debitur, p.land_area, p.building_area, p.phone_number, p.properties_type, p.object_type,
		       p.created_at, p.updated_at,
		       COALESCE(l.id, 0), COALESCE(l.latitude_raw, ''), COALESCE(l.longitude_raw, ''), COALESCE(l.address, '')
		FROM properties p
		LEFT JOIN locations l ON l.property_id = p.id
		WHERE p.id = $1`, id,
	).Scan(
		&p.ID, &p.Debitur, &p.LandArea, &p.BuildingArea, &p.PhoneNumber, &p.PropertiesType, &p.ObjectType,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Location.ID, &p.Location.Latitude, &p.Location.Longitude, &p.Location.Address,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Property not found", nil)
			return nil, domain.ErrPropertyNotFound
		}
		repoLogger.Error("Failed to get property", err, nil)
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, property_id, COALESCE(to_char(valuation_date, 'YYYY-MM-DD'), ''),
		       land_value, building_value, total_value, report_number, appraiser, created_at
		FROM valuations
		WHERE property_id = $1
		ORDER BY id ASC`, id)
	if err != nil {
		repoLogger.Error("Failed to query valuations", err, nil)
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	p.Valuations = make([]domain.Valuation, 0)
	for rows.Next() {
		var v domain.Valuation
		if err := rows.Scan(&v.ID, &v.PropertyID, &v.ValuationDate, &v.LandValue, &v.BuildingValue,
			&v.TotalValue, &v.ReportNumber, &v.Appraiser, &v.CreatedAt); err != nil {
			repoLogger.Error("Failed to scan valuation", err, nil)
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		p.Valuations = append(p.Valuations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during valuations iteration: %w", err)
	}
	return &p, nil
}

// List возвращает страницу объектов, свежие правки первыми.
func (r *PostgresPropertyRepository) List(ctx context.Context, filters domain.PropertyFilters, limit, offset int) (*domain.PaginatedProperties, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "List",
		"limit":     limit,
		"offset":    offset,
	})

	qb := applyFilters(filters)
	whereClause, args := qb.build()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var totalCount int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM properties p LEFT JOIN locations l ON l.property_id = p.id %s`, whereClause)
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count properties", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	result := &domain.PaginatedProperties{
		Items:        []domain.PropertyListItem{},
		TotalCount:   totalCount,
		CurrentPage:  offset/limit + 1,
		ItemsPerPage: limit,
	}
	if totalCount == 0 {
		return result, nil
	}

	limitPh := qb.nextArg(limit)
	offsetPh := qb.nextArg(offset)
	dataQuery := fmt.Sprintf("%s %s ORDER BY p.updated_at DESC, p.id DESC LIMIT %s OFFSET %s", listSelect, whereClause, limitPh, offsetPh)
	rows, err := tx.Query(ctx, dataQuery, qb.args...)
	if err != nil {
		repoLogger.Error("Failed to query properties", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	items, err := scanListItems(rows)
	if err != nil {
		repoLogger.Error("Failed to read properties", err, nil)
		return nil, err
	}
	result.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Properties listed", port.Fields{"total": totalCount, "on_page": len(items)})
	return result, nil
}

// ListForExport возвращает все подходящие объекты (не больше limit) по возрастанию id.
func (r *PostgresPropertyRepository) ListForExport(ctx context.Context, filters domain.PropertyFilters, limit int) ([]domain.PropertyListItem, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "ListForExport",
	})

	qb := applyFilters(filters)
	whereClause, _ := qb.build()
	limitPh := qb.nextArg(limit)
	query := fmt.Sprintf("%s %s ORDER BY p.id ASC LIMIT %s", listSelect, whereClause, limitPh)

	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		repoLogger.Error("Failed to query properties for export", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query properties for export: %w", err)
	}
	return scanListItems(rows)
}

// Delete удаляет объект вместе с локацией и оценками (каскадно).
func (r *PostgresPropertyRepository) Delete(ctx context.Context, id int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "Delete",
		"property_id": id,
	})

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to delete property", err, nil)
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	repoLogger.Debug("Property deleted", nil)
	return nil
}

func (r *PostgresPropertyRepository) DeleteValuation(ctx context.Context, id int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "PostgresPropertyRepository",
		"method":       "DeleteValuation",
		"valuation_id": id,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var propertyID int64
	err = tx.QueryRow(ctx, `DELETE FROM valuations WHERE id = $1 RETURNING property_id`, id).Scan(&propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrValuationNotFound
		}
		repoLogger.Error("Failed to delete valuation", err, nil)
		return fmt.Errorf("failed to delete valuation: %w", err)
	}
	if err := touchProperty(ctx, tx, propertyID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Valuation deleted", port.Fields{"property_id": propertyID})
	return nil
}

// FindMarkers возвращает объекты с разобранными координатами внутри области.
func (r *PostgresPropertyRepository) FindMarkers(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.MapMarker, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "FindMarkers",
	})

	qb := newQueryBuilder()
	qb.conditions = append(qb.conditions, "l.latitude IS NOT NULL", "l.longitude IS NOT NULL")
	qb.addBounds(bounds)
	whereClause, _ := qb.build()
	limitPh := qb.nextArg(limit)

	query := fmt.Sprintf(`
		SELECT p.id, l.id, l.latitude, l.longitude, COALESCE(l.geohash, ''), l.address,
		       p.debitur, p.properties_type, COALESCE(lv.total_value, 0)
		FROM properties p
		JOIN locations l ON l.property_id = p.id
		LEFT JOIN LATERAL (
			SELECT v.total_value FROM valuations v WHERE v.property_id = p.id ORDER BY v.id DESC LIMIT 1
		) lv ON true
		%s
		ORDER BY p.id
		LIMIT %s`, whereClause, limitPh)

	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		repoLogger.Error("Failed to query markers", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	markers := make([]domain.MapMarker, 0)
	for rows.Next() {
		var m domain.MapMarker
		if err := rows.Scan(&m.PropertyID, &m.LocationID, &m.Latitude, &m.Longitude, &m.Geohash, &m.Address,
			&m.Debitur, &m.PropertiesType, &m.LastTotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during markers iteration: %w", err)
	}
	return markers, nil
}

func touchProperty(ctx context.Context, tx pgx.Tx, propertyID int64) error {
	if _, err := tx.Exec(ctx, `UPDATE properties SET updated_at = now() WHERE id = $1`, propertyID); err != nil {
		return fmt.Errorf("failed to touch property %d: %w", propertyID, err)
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
