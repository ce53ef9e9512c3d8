package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"appraisal-portal/pkg/rabbitmq/rabbitmq_common"
	"appraisal-portal/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Ack/Nack и повторы решает Consumer.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// Consumer читает очередь и запускает обработчик для каждого сообщения в своей горутине.
type Consumer struct {
	config          ConsumerConfig
	handler         MessageHandler
	connection      *amqp.Connection
	channel         *amqp.Channel
	actualQueueName string // имя может сгенерировать сервер
	dlxPublisher    *rabbitmq_producer.Publisher
	wg              sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewConsumer открывает канал и объявляет очередь, привязки и инфраструктуру повторов.
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		handler:    handler,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlxPublisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

func (c *Consumer) setup() error {
	cfg := &c.config

	if cfg.PrefetchCount > 0 || cfg.PrefetchSize > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", cfg.PrefetchCount, "prefetch_size", cfg.PrefetchSize)
		if err := c.channel.Qos(cfg.PrefetchCount, cfg.PrefetchSize, cfg.QosGlobal); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.EnableRetryMechanism {
		if cfg.QueueArgs == nil {
			cfg.QueueArgs = amqp.Table{}
		}
		// отвергнутые сообщения основной очереди уходят в retry-обменник
		cfg.QueueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	c.actualQueueName = cfg.QueueName
	if cfg.DeclareQueue {
		c.Logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
		q, err := c.channel.QueueDeclare(cfg.QueueName, cfg.DurableQueue, cfg.AutoDeleteQueue, cfg.ExclusiveQueue, false, cfg.QueueArgs)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if cfg.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange", "name", cfg.ExchangeNameForBind, "type", cfg.ExchangeTypeForBind)
		err := c.channel.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, cfg.ExchangeArgsForBind)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.ExchangeNameForBind != "" {
		keys := cfg.RoutingKeysForBind
		if len(keys) == 0 {
			keys = []string{""}
		}
		for _, key := range keys {
			c.Logger.Debug("Binding queue to exchange", "queue", c.actualQueueName, "exchange", cfg.ExchangeNameForBind, "routing_key", key)
			if err := c.channel.QueueBind(c.actualQueueName, key, cfg.ExchangeNameForBind, false, cfg.BindingArgs); err != nil {
				return fmt.Errorf("failed to bind queue '%s' to exchange '%s' with key '%s': %w", c.actualQueueName, cfg.ExchangeNameForBind, key, err)
			}
		}
	}

	if cfg.EnableRetryMechanism {
		if err := c.setupRetry(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

// setupRetry объявляет финальный DLX/DLQ и wait-очередь, которая по TTL
// возвращает сообщения в основной обменник.
func (c *Consumer) setupRetry() error {
	cfg := c.config

	if err := c.channel.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := c.channel.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	_, err := c.channel.QueueDeclare(cfg.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":          int32(cfg.RetryTTL),
		"x-dead-letter-exchange": cfg.ExchangeNameForBind,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx (возвращает nil) или закрытия соединения (возвращает ошибку).
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.actualQueueName, c.config.ConsumerTag, false, c.config.ExclusiveConsumer, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register on queue '%s': %w", c.config.ConsumerTag, c.actualQueueName, err)
	}

	c.Logger.Info("Waiting for messages", "queue", c.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled. Shutting down consumer", "consumer_tag", c.config.ConsumerTag)
		return nil
	case err := <-notifyClose:
		c.Logger.Error(err, "Connection closed for consumer", "consumer_tag", c.config.ConsumerTag)
		if err == nil {
			return fmt.Errorf("consumer: connection closed")
		}
		return err
	}
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		// приоритетная проверка: после отмены новые обработчики не стартуют
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "consumer_tag", c.config.ConsumerTag)
				return
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.handle(ctx, delivery)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		c.Logger.Debug("Message acked", "delivery_tag", d.DeliveryTag)
		return
	}

	c.Logger.Error(err, "Handler error for message", "delivery_tag", d.DeliveryTag)

	deaths := DeathCount(d.Headers, c.actualQueueName)
	switch DecideOnFailure(c.config.EnableRetryMechanism, deaths, c.config.MaxRetries) {
	case ActionNack:
		c.Logger.Info("Nacking message", "delivery_tag", d.DeliveryTag, "death_count", deaths, "retry", c.config.EnableRetryMechanism)
		_ = d.Nack(false, false)
	case ActionDeadLetter:
		c.Logger.Warn("Max retries reached. Publishing to final DLX", "delivery_tag", d.DeliveryTag)
		pubErr := c.dlxPublisher.Publish(context.Background(), c.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if pubErr != nil {
			// не смогли отправить в DLQ - еще один круг повторов
			c.Logger.Error(pubErr, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	}
}

// Close дожидается работающих обработчиков и закрывает канал.
func (c *Consumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.dlxPublisher != nil {
		if err := c.dlxPublisher.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			if firstErr == nil {
				firstErr = err
			}
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
