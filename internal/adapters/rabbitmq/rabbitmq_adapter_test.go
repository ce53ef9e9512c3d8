package rabbitmq_adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"appraisal-portal/internal/constants"
	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/contracts"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	msg        amqp.Publishing
}

type capturePublisher struct {
	sent []published
	err  error
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{routingKey: routingKey, msg: msg})
	return nil
}

type recordingUseCase struct {
	saved    []domain.ValuationSavedEvent
	imported []domain.ImportCompletedEvent
	traceIDs []string
}

func (u *recordingUseCase) ValuationSaved(ctx context.Context, e domain.ValuationSavedEvent) error {
	u.saved = append(u.saved, e)
	u.traceIDs = append(u.traceIDs, contextkeys.TraceIDFromContext(ctx))
	return nil
}

func (u *recordingUseCase) ImportCompleted(ctx context.Context, e domain.ImportCompletedEvent) error {
	u.imported = append(u.imported, e)
	u.traceIDs = append(u.traceIDs, contextkeys.TraceIDFromContext(ctx))
	return nil
}

func toDelivery(p published) amqp.Delivery {
	return amqp.Delivery{
		Headers:     p.msg.Headers,
		ContentType: p.msg.ContentType,
		Body:        p.msg.Body,
		RoutingKey:  p.routingKey,
	}
}

func newTestConsumer(uc *recordingUseCase) *NotificationsConsumerAdapter {
	return &NotificationsConsumerAdapter{useCase: uc, logger: contextkeys.LoggerFromContext(context.Background())}
}

func TestPublishThenConsume_ValuationSaved(t *testing.T) {
	pub := &capturePublisher{}
	adapter, err := NewEventPublisherAdapter(pub)
	require.NoError(t, err)

	userID := uuid.New()
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	err = adapter.PublishValuationSaved(ctx, domain.ValuationSavedEvent{
		PropertyID:        7,
		Debitur:           "PT Maju",
		UpdatedValuations: 2,
		CreatedValuations: 1,
		PropertyChanged:   true,
		UserID:            &userID,
		OccurredAt:        time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)

	sent := pub.sent[0]
	assert.Equal(t, constants.RoutingKeyValuationSaved, sent.routingKey)
	assert.Equal(t, contracts.EventValuationSaved, sent.msg.Headers[contracts.HeaderEventType])
	assert.Equal(t, contracts.EventVersionV1, sent.msg.Headers[contracts.HeaderEventVersion])
	assert.Equal(t, "trace-1", sent.msg.Headers[contracts.HeaderTraceID])
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)

	uc := &recordingUseCase{}
	require.NoError(t, newTestConsumer(uc).messageHandler(context.Background(), toDelivery(sent)))
	require.Len(t, uc.saved, 1)
	assert.Equal(t, int64(7), uc.saved[0].PropertyID)
	assert.Equal(t, 2, uc.saved[0].UpdatedValuations)
	assert.Equal(t, &userID, uc.saved[0].UserID)
	assert.Equal(t, "trace-1", uc.traceIDs[0])
}

func TestPublishThenConsume_ImportCompleted(t *testing.T) {
	pub := &capturePublisher{}
	adapter, err := NewEventPublisherAdapter(pub)
	require.NoError(t, err)

	require.NoError(t, adapter.PublishImportCompleted(context.Background(), domain.ImportCompletedEvent{
		FileName: "aset.xlsx", Imported: 10, Failed: 1,
	}))
	require.Len(t, pub.sent, 1)
	_, hasTrace := pub.sent[0].msg.Headers[contracts.HeaderTraceID]
	assert.False(t, hasTrace)

	uc := &recordingUseCase{}
	require.NoError(t, newTestConsumer(uc).messageHandler(context.Background(), toDelivery(pub.sent[0])))
	require.Len(t, uc.imported, 1)
	assert.Equal(t, "aset.xlsx", uc.imported[0].FileName)
	assert.Nil(t, uc.imported[0].UserID)
	assert.NotEmpty(t, uc.traceIDs[0], "trace id is generated when missing")
}

func TestPublishFailure(t *testing.T) {
	adapter, err := NewEventPublisherAdapter(&capturePublisher{err: errors.New("channel closed")})
	require.NoError(t, err)
	err = adapter.PublishImportCompleted(context.Background(), domain.ImportCompletedEvent{FileName: "a.csv"})
	assert.Error(t, err)

	_, err = NewEventPublisherAdapter(nil)
	assert.Error(t, err)
}

func TestMessageHandler_RejectsInvalidBody(t *testing.T) {
	uc := &recordingUseCase{}
	d := amqp.Delivery{
		Headers: amqp.Table{
			contracts.HeaderEventType:    contracts.EventValuationSaved,
			contracts.HeaderEventVersion: contracts.EventVersionV1,
		},
		Body: []byte(`{"property_id":"seven"}`),
	}
	assert.Error(t, newTestConsumer(uc).messageHandler(context.Background(), d))
	assert.Empty(t, uc.saved)

	d.Headers[contracts.HeaderEventType] = "UnknownEvent"
	assert.Error(t, newTestConsumer(uc).messageHandler(context.Background(), d))
}

func TestPkgLoggerBridge_ToFields(t *testing.T) {
	b := &PkgLoggerBridge{internalLogger: contextkeys.LoggerFromContext(context.Background())}
	fields := b.toFields("queue", "q1", 42, "attempt", 2, "dangling")
	assert.Equal(t, port.Fields{
		"queue":   "q1",
		"attempt": 2,
		badKey:    "dangling",
	}, fields)
	assert.Nil(t, b.toFields())
}
