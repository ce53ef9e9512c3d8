package postgres_adapter

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresNotificationRepository хранит уведомления. Отметки о прочтении ведутся
// отдельно для каждого пользователя, чтобы широковещательные уведомления читались независимо.
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationRepository(pool *pgxpool.Pool) (*PostgresNotificationRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresNotificationRepository{pool: pool}, nil
}

// видимость уведомления для пользователя $1
const visibleToUser = `(n.user_id = $1 OR n.user_id IS NULL)`

func (r *PostgresNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":       "PostgresNotificationRepository",
		"method":          "Save",
		"notification_id": n.ID.String(),
	})

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, property_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.PropertyID, n.CreatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to save notification", err, nil)
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedNotifications, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresNotificationRepository",
		"method":    "ListForUser",
		"user_id":   userID.String(),
	})

	result := &domain.PaginatedNotifications{
		Items:        []domain.Notification{},
		CurrentPage:  offset/limit + 1,
		ItemsPerPage: limit,
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE nr.notification_id IS NULL)
		FROM notifications n
		LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
		WHERE `+visibleToUser, userID,
	).Scan(&result.TotalCount, &result.UnreadCount)
	if err != nil {
		repoLogger.Error("Failed to count notifications", err, nil)
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	if result.TotalCount == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.user_id, n.type, n.title, n.message, n.property_id, n.created_at, nr.read_at
		FROM notifications n
		LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
		WHERE `+visibleToUser+`
		ORDER BY n.created_at DESC, n.id
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		repoLogger.Error("Failed to query notifications", err, nil)
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.PropertyID, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result.Items = append(result.Items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during notifications iteration: %w", err)
	}
	return result, nil
}

// MarkRead отмечает уведомление прочитанным для пользователя. Повторная отметка не ошибка.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":       "PostgresNotificationRepository",
		"method":          "MarkRead",
		"notification_id": id.String(),
		"user_id":         userID.String(),
	})

	// вставка только для видимого пользователю уведомления
	cmdTag, err := r.pool.Exec(ctx, `
		INSERT INTO notification_reads (notification_id, user_id)
		SELECT n.id, $1 FROM notifications n
		WHERE n.id = $2 AND `+visibleToUser+`
		ON CONFLICT (notification_id, user_id) DO NOTHING`, userID, id)
	if err != nil {
		repoLogger.Error("Failed to mark notification read", err, nil)
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	// 0 строк: либо уже прочитано, либо уведомления нет
	var visible bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications n WHERE n.id = $2 AND `+visibleToUser+`)`, userID, id).Scan(&visible)
	if err != nil {
		return fmt.Errorf("failed to check notification: %w", err)
	}
	if !visible {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications n
		WHERE `+visibleToUser+`
		  AND NOT EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = n.id AND nr.user_id = $1)`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
