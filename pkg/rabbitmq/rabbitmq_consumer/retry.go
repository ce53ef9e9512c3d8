package rabbitmq_consumer

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// FailureAction - что сделать с сообщением, обработчик которого вернул ошибку.
type FailureAction int

const (
	// Nack без requeue: при включенных повторах сообщение уйдет в wait-очередь, иначе будет отброшено.
	ActionNack FailureAction = iota
	// Опубликовать в финальный DLX и подтвердить оригинал.
	ActionDeadLetter
)

// DecideOnFailure выбирает действие по числу прошлых "смертей" сообщения в основной очереди.
func DecideOnFailure(retryEnabled bool, deathCount int64, maxRetries int) FailureAction {
	if !retryEnabled || deathCount < int64(maxRetries) {
		return ActionNack
	}
	return ActionDeadLetter
}

// DeathCount читает из заголовка x-death, сколько раз сообщение умирало в очереди queueName.
func DeathCount(headers amqp.Table, queueName string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	// последняя смерть была в retry-очереди, нас интересует основная
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}
