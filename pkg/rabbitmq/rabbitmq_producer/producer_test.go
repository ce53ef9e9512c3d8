package rabbitmq_producer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"
)

func TestPublisherConfigValidate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost:5672/"}

	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "appraisal_exchange"}.validate())
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "x", ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())

	assert.Error(t, PublisherConfig{ExchangeName: "x"}.validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeName: "x", DeclareExchangeIfMissing: true}.validate())
}
