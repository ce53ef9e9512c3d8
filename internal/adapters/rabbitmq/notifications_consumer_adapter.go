package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/contracts"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/port/usecases_port"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationsConsumerAdapter слушает события портала и превращает их в уведомления.
type NotificationsConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	useCase  usecases_port.ProcessEventUseCasePort
	logger   port.LoggerPort
}

func NewNotificationsConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.ProcessEventUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*NotificationsConsumerAdapter, error) {
	adapter := &NotificationsConsumerAdapter{useCase: useCase, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(cfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for notifications: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

// Start блокируется, пока не отменен ctx или не оборвалось соединение.
func (a *NotificationsConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting notifications consumer...", nil)
	return a.consumer.StartConsuming(ctx)
}

func (a *NotificationsConsumerAdapter) Close() error {
	a.logger.Info("Stopping notifications consumer...", nil)
	return a.consumer.Close()
}

func (a *NotificationsConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers[contracts.HeaderTraceID].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}
	eventType, _ := d.Headers[contracts.HeaderEventType].(string)
	eventVersion, _ := d.Headers[contracts.HeaderEventVersion].(string)

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":      traceID,
		"delivery_tag":  d.DeliveryTag,
		"event_type":    eventType,
		"event_version": eventVersion,
	})
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	// Невалидное сообщение уходит через повторы в финальную DLQ, где его можно разобрать вручную
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation", err, nil)
		return err
	}

	switch eventType {
	case contracts.EventValuationSaved:
		var dto ValuationSavedDTO
		if err := json.Unmarshal(d.Body, &dto); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return a.useCase.ValuationSaved(ctx, dto.toDomain())
	case contracts.EventImportCompleted:
		var dto ImportCompletedDTO
		if err := json.Unmarshal(d.Body, &dto); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return a.useCase.ImportCompleted(ctx, dto.toDomain())
	default:
		// схема есть, а обработчика нет: сообщение подтверждаем, чтобы не копить его в очереди
		msgLogger.Warn("No handler for event type, skipping", nil)
		return nil
	}
}
