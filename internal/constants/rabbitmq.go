package constants

const MainExchange = "appraisal_exchange"

// Ключи маршрутизации событий
const (
	RoutingKeyValuationSaved  = "appraisal.valuation.saved"
	RoutingKeyImportCompleted = "appraisal.import.completed"
)

// Имена очередей
const (
	QueueNotifications = "appraisal_notifications"
)

const (
	FinalDLXExchange   = "appraisal_notifications_final_dlx"
	FinalDLQ           = "appraisal_notifications_final_dlq"
	FinalDLQRoutingKey = "appraisal_notifications.dlq.key"
)

const (
	RetryExchange = "appraisal_retry_exchange"
	WaitQueue     = "appraisal_wait_10s"
	RetryTTL      = 10000 // 10 секунд
	MaxRetries    = 3
)
