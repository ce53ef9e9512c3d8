package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository - реализация UserRepositoryPort для PostgreSQL.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) (*PostgresUserRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresUserRepository{pool: pool}, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "Create",
		"user_id":   user.ID.String(),
	})

	query := `INSERT INTO users (id, email, full_name, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.FullName, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			repoLogger.Warn("Email already in use", nil)
			return domain.ErrEmailInUse
		}
		if isForeignKeyViolation(err) {
			return domain.ErrRoleNotFound
		}
		repoLogger.Error("Failed to create user", err, port.Fields{"query": query})
		return fmt.Errorf("failed to create user: %w", err)
	}

	repoLogger.Debug("User created successfully.", nil)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "GetByID",
		"user_id":   id.String(),
	})

	var user domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, password_hash, role, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		repoLogger.Error("Failed to find user by ID", err, nil)
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]domain.User, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "List",
	})

	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, password_hash, role, created_at FROM users ORDER BY created_at ASC, email ASC`)
	if err != nil {
		repoLogger.Error("Failed to query users", err, nil)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during users iteration: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "UpdateRole",
		"user_id":   id.String(),
		"role":      role,
	})

	cmdTag, err := r.pool.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRoleNotFound
		}
		repoLogger.Error("Failed to update role", err, nil)
		return fmt.Errorf("failed to update role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	repoLogger.Debug("User role updated", nil)
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "Delete",
		"user_id":   id.String(),
	})

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to delete user", err, nil)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
