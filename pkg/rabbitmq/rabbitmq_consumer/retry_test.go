package rabbitmq_consumer

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"
)

func TestDeathCount(t *testing.T) {
	headers := amqp.Table{
		"x-death": []interface{}{
			amqp.Table{"queue": "retry_wait", "count": int64(5)},
			amqp.Table{"queue": "notifications", "count": int64(2)},
		},
	}
	assert.Equal(t, int64(2), DeathCount(headers, "notifications"))
	assert.Equal(t, int64(0), DeathCount(headers, "other"))
	assert.Equal(t, int64(0), DeathCount(nil, "notifications"))
	assert.Equal(t, int64(0), DeathCount(amqp.Table{"x-death": "broken"}, "notifications"))
}

func TestDecideOnFailure(t *testing.T) {
	assert.Equal(t, ActionNack, DecideOnFailure(false, 10, 3))
	assert.Equal(t, ActionNack, DecideOnFailure(true, 0, 3))
	assert.Equal(t, ActionNack, DecideOnFailure(true, 2, 3))
	assert.Equal(t, ActionDeadLetter, DecideOnFailure(true, 3, 3))
}

func TestConsumerConfigValidate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost:5672/"}

	assert.NoError(t, ConsumerConfig{Config: base, QueueName: "q"}.validate())
	assert.Error(t, ConsumerConfig{Config: base}.validate())
	assert.Error(t, ConsumerConfig{Config: base, DeclareQueue: true, DeclareExchangeForBind: true}.validate())

	retry := ConsumerConfig{
		Config:               base,
		QueueName:            "q",
		ExchangeNameForBind:  "appraisal_exchange",
		EnableRetryMechanism: true,
		RetryExchange:        "q_retry",
		RetryQueue:           "q_wait",
		RetryTTL:             5000,
		FinalDLXExchange:     "q_dlx",
		FinalDLQ:             "q_dlq",
		MaxRetries:           3,
	}
	assert.NoError(t, retry.validate())

	retry.MaxRetries = 0
	assert.Error(t, retry.validate())
}
