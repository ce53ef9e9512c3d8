package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appraisal-portal/internal/constants"
	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/contracts"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - часть *rabbitmq_producer.Publisher, нужная адаптеру.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// EventPublisherAdapter публикует доменные события портала в основной обменник.
type EventPublisherAdapter struct {
	producer MessagePublisher
}

func NewEventPublisherAdapter(producer MessagePublisher) (*EventPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &EventPublisherAdapter{producer: producer}, nil
}

func (a *EventPublisherAdapter) PublishValuationSaved(ctx context.Context, event domain.ValuationSavedEvent) error {
	return a.publish(ctx, constants.RoutingKeyValuationSaved, contracts.EventValuationSaved, fromDomainValuationSaved(event))
}

func (a *EventPublisherAdapter) PublishImportCompleted(ctx context.Context, event domain.ImportCompletedEvent) error {
	return a.publish(ctx, constants.RoutingKeyImportCompleted, contracts.EventImportCompleted, fromDomainImportCompleted(event))
}

func (a *EventPublisherAdapter) publish(ctx context.Context, routingKey, eventType string, dto interface{}) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "EventPublisherAdapter",
		"routing_key": routingKey,
		"event_type":  eventType,
	})

	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			contracts.HeaderEventType:    eventType,
			contracts.HeaderEventVersion: contracts.EventVersionV1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[contracts.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	adapterLogger.Debug("Publishing event", nil)
	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", eventType, err)
	}

	adapterLogger.Info("Event published", nil)
	return nil
}
