package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	token_adapter "appraisal-portal/internal/adapters/jwt"
	logger_adapter "appraisal-portal/internal/adapters/logger"
	"appraisal-portal/internal/adapters/memory"
	"appraisal-portal/internal/adapters/notifier"
	postgres_adapter "appraisal-portal/internal/adapters/postgres"
	rabbitmq_adapter "appraisal-portal/internal/adapters/rabbitmq"
	"appraisal-portal/internal/adapters/rest"
	spreadsheet_adapter "appraisal-portal/internal/adapters/spreadsheet"
	"appraisal-portal/internal/configs"
	"appraisal-portal/internal/constants"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/usecase"
	fluentlogger "appraisal-portal/pkg/fluent_logger"
	"appraisal-portal/pkg/postgres"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_consumer"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config                *configs.AppConfig
	dbPool                *pgxpool.Pool
	connManager           *rabbitmq_common.ConnectionManager
	eventsProducer        *rabbitmq_producer.Publisher
	apiServer             *rest.Server
	notificationsListener port.EventListenerPort
	sessionStore          *memory.EditSessionStore
	sseNotifier           *notifier.SSENotifier

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		fluentClient: fluentClient,
	}
	if err := application.init(baseLogger); err != nil {
		application.closeResources()
		return nil, err
	}
	return application, nil
}

// init собирает зависимости. При ошибке уже созданные ресурсы закрывает closeResources.
func (a *App) init(baseLogger port.LoggerPort) error {
	cfg := a.config
	appLogger := a.logger

	// --- 3. ИНФРАСТРУКТУРА ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    int32(cfg.Database.MaxConns),
		MinConns:    int32(cfg.Database.MinConns),
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger),
	)
	if err != nil {
		appLogger.Error("Failed to create connection manager", err, nil)
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
	eventsProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             constants.MainExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
	}, connManager)
	if err != nil {
		appLogger.Error("Failed to create events producer", err, nil)
		return fmt.Errorf("failed to create events producer: %w", err)
	}
	a.eventsProducer = eventsProducer

	eventPublisher, err := rabbitmq_adapter.NewEventPublisherAdapter(eventsProducer)
	if err != nil {
		return fmt.Errorf("failed to create event publisher adapter: %w", err)
	}

	// --- 4. РЕПОЗИТОРИИ И АДАПТЕРЫ ---
	propertyRepo, err := postgres_adapter.NewPostgresPropertyRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create property repository: %w", err)
	}
	statsRepo, err := postgres_adapter.NewPostgresStatsRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create stats repository: %w", err)
	}
	notificationRepo, err := postgres_adapter.NewPostgresNotificationRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create notification repository: %w", err)
	}
	userRepo, err := postgres_adapter.NewPostgresUserRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create user repository: %w", err)
	}
	roleRepo, err := postgres_adapter.NewPostgresRoleRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create role repository: %w", err)
	}

	tokenValidator, err := token_adapter.NewTokenValidator(cfg.Auth.JWTSigningKey)
	if err != nil {
		return fmt.Errorf("failed to create token validator: %w", err)
	}

	a.sessionStore = memory.NewEditSessionStore(cfg.EditSession.TTL, baseLogger.WithFields(port.Fields{"component": "edit_session_store"}))
	a.sseNotifier = notifier.NewSSENotifier(baseLogger)
	appLogger.Info("Edit session store and SSE notifier initialized.", nil)

	sheetReader := spreadsheet_adapter.NewReader()
	sheetWriter := spreadsheet_adapter.NewWriter()

	// --- 5. USE CASES ---
	createPropertyUC := usecase.NewCreatePropertyUseCase(propertyRepo)
	listPropertiesUC := usecase.NewListPropertiesUseCase(propertyRepo)
	getPropertyUC := usecase.NewGetPropertyUseCase(propertyRepo)
	deletePropertyUC := usecase.NewDeletePropertyUseCase(propertyRepo)
	deleteValuationUC := usecase.NewDeleteValuationUseCase(propertyRepo)
	importUC := usecase.NewImportPropertiesUseCase(propertyRepo, sheetReader, eventPublisher, cfg.Import.MaxRows)
	exportUC := usecase.NewExportPropertiesUseCase(propertyRepo, sheetWriter)
	markersUC := usecase.NewGetMapMarkersUseCase(propertyRepo)

	startSessionUC := usecase.NewStartEditSessionUseCase(propertyRepo, a.sessionStore)
	getSessionUC := usecase.NewGetEditSessionUseCase(a.sessionStore)
	applyOpsUC := usecase.NewApplyEditOpsUseCase(a.sessionStore)
	submitSessionUC := usecase.NewSubmitEditSessionUseCase(propertyRepo, propertyRepo, a.sessionStore, eventPublisher)
	discardSessionUC := usecase.NewDiscardEditSessionUseCase(a.sessionStore)

	listNotificationsUC := usecase.NewListNotificationsUseCase(notificationRepo)
	markReadUC := usecase.NewMarkNotificationReadUseCase(notificationRepo)
	processEventUC := usecase.NewProcessEventUseCase(notificationRepo, a.sseNotifier)
	dashboardUC := usecase.NewGetDashboardUseCase(statsRepo, notificationRepo)

	createUserUC := usecase.NewCreateUserUseCase(userRepo, roleRepo)
	listUsersUC := usecase.NewListUsersUseCase(userRepo)
	assignRoleUC := usecase.NewAssignRoleUseCase(userRepo, roleRepo)
	deleteUserUC := usecase.NewDeleteUserUseCase(userRepo)
	listRolesUC := usecase.NewListRolesUseCase(roleRepo)
	createRoleUC := usecase.NewCreateRoleUseCase(roleRepo)
	appLogger.Info("All use cases initialized.", nil)

	// --- 6. REST API ---
	handlers := rest.Handlers{
		Properties: rest.NewPropertyHandler(
			createPropertyUC, listPropertiesUC, getPropertyUC, deletePropertyUC,
			deleteValuationUC, importUC, exportUC, markersUC,
		),
		EditSessions:  rest.NewEditSessionHandler(startSessionUC, getSessionUC, applyOpsUC, submitSessionUC, discardSessionUC),
		Notifications: rest.NewNotificationHandler(listNotificationsUC, markReadUC, dashboardUC, a.sseNotifier),
		Admin:         rest.NewAdminHandler(createUserUC, listUsersUC, assignRoleUC, deleteUserUC, listRolesUC, createRoleUC),
	}
	a.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           cfg.Rest.PORT,
		AllowedOrigins: cfg.Rest.AllowedOrigins,
	}, handlers, tokenValidator, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	// --- 7. RabbitMQ consumer событий -> уведомления ---
	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		QueueName:              constants.QueueNotifications,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.MainExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "topic",
		DurableExchangeForBind: true,
		RoutingKeysForBind:     []string{constants.RoutingKeyValuationSaved, constants.RoutingKeyImportCompleted},
		PrefetchCount:          5,
		ConsumerTag:            "notifications-consumer-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.RetryExchange,
		RetryQueue:           constants.WaitQueue,
		RetryTTL:             constants.RetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
	notificationsListener, err := rabbitmq_adapter.NewNotificationsConsumerAdapter(consumerCfg, processEventUC, baseLogger, connManager)
	if err != nil {
		appLogger.Error("Failed to create notifications consumer", err, nil)
		return fmt.Errorf("failed to create notifications consumer adapter: %w", err)
	}
	a.notificationsListener = notificationsListener
	appLogger.Info("RabbitMQ listeners initialized.", nil)

	return nil
}

func (a *App) Run() error {
	// Единый контекст приложения для graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	errorsCh := make(chan error, 2)

	a.logger.Info("Application is starting...", nil)

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	wg.Add(2)
	go func() {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener": "Notifications Events Listener"})
		listenerLogger.Info("Starting listener...", nil)
		if err := a.notificationsListener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("notifications listener error: %w", err)
			return
		}
		listenerLogger.Info("Listener stopped gracefully.", nil)
	}()
	go func() {
		defer wg.Done()
		a.sessionStore.Run(appCtx, a.config.EditSession.SweepInterval)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.logger.Info("Shutdown sequence initiated...", nil)

	// сначала перестаем принимать запросы, затем гасим фоновые процессы
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}

	cancelApp()
	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()
	a.logger.Info("All background processes finished.", nil)

	a.closeResources()
	return runErr
}

// closeResources закрывает все, что успели создать, в обратном порядке
func (a *App) closeResources() {
	if a.notificationsListener != nil {
		if err := a.notificationsListener.Close(); err != nil {
			a.logger.Error("Error closing notifications listener", err, nil)
		}
	}
	if a.eventsProducer != nil {
		if err := a.eventsProducer.Close(); err != nil {
			a.logger.Error("Error closing events producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.sseNotifier != nil {
		a.sseNotifier.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
