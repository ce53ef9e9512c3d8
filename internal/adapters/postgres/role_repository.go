package postgres_adapter

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRoleRepository(pool *pgxpool.Pool) (*PostgresRoleRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresRoleRepository{pool: pool}, nil
}

func (r *PostgresRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roles iteration: %w", err)
	}
	return roles, nil
}

func (r *PostgresRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRoleRepository",
		"method":    "Create",
		"role":      role.Name,
	})

	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id`, role.Name, role.Description,
	).Scan(&role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			repoLogger.Warn("Role already exists", nil)
			return domain.ErrRoleExists
		}
		repoLogger.Error("Failed to create role", err, nil)
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (r *PostgresRoleRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}
