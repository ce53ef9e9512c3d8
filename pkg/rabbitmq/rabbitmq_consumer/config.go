package rabbitmq_consumer

import (
	"fmt"

	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь. Пустое имя при DeclareQueue - имя сгенерирует сервер.
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Обменник для привязки очереди (пустое имя - без привязки)
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table

	// Привязка. Каждый ключ дает отдельный QueueBind.
	RoutingKeysForBind []string
	BindingArgs        amqp.Table

	// QoS. PrefetchCount заодно ограничивает число одновременно работающих обработчиков.
	PrefetchCount int
	PrefetchSize  int
	QosGlobal     bool

	ConsumerTag       string
	ExclusiveConsumer bool

	// Повторы через wait-очередь с TTL и финальная DLQ
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // миллисекунды
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (cfg ConsumerConfig) validate() error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("consumer: invalid base config: %w", err)
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if cfg.DeclareExchangeForBind && cfg.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}
	if cfg.EnableRetryMechanism {
		if cfg.RetryExchange == "" || cfg.RetryQueue == "" || cfg.FinalDLXExchange == "" || cfg.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry and final DLX names are required when retries are enabled")
		}
		if cfg.RetryTTL <= 0 || cfg.MaxRetries <= 0 {
			return fmt.Errorf("consumer: RetryTTL and MaxRetries must be positive when retries are enabled")
		}
		if cfg.ExchangeNameForBind == "" {
			return fmt.Errorf("consumer: retries return messages through the bound exchange, ExchangeNameForBind is required")
		}
	}
	return nil
}
