package usecase

import (
	"context"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const dashboardLatestValuations = 10

type GetDashboardUseCase struct {
	stats         port.StatsRepositoryPort
	notifications port.NotificationRepositoryPort
}

func NewGetDashboardUseCase(stats port.StatsRepositoryPort, notifications port.NotificationRepositoryPort) *GetDashboardUseCase {
	return &GetDashboardUseCase{stats: stats, notifications: notifications}
}

func (uc *GetDashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetDashboard",
		"user_id":  userID,
	})

	ucLogger.Info("Use case started", nil)

	// сводка и счетчик непрочитанных читаются параллельно
	var (
		stats  *domain.DashboardStats
		unread int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = uc.stats.GetDashboardStats(gctx, dashboardLatestValuations)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = uc.notifications.CountUnread(gctx, userID)
		if err != nil {
			// счетчик уведомлений второстепенен, сводку отдаем и без него
			ucLogger.Warn("Failed to count unread notifications", port.Fields{"error": err.Error()})
			unread = 0
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		ucLogger.Error("Failed to get dashboard stats", err, nil)
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	stats.UnreadNotifications = unread

	ucLogger.Info("Use case finished successfully", nil)
	return stats, nil
}
