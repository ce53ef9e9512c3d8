package contracts

// Имена и версии событий, совпадают с ключами схем
const (
	EventValuationSaved  = "ValuationSavedEvent"
	EventImportCompleted = "ImportCompletedEvent"
	EventVersionV1       = "1.0.0"
)

// Заголовки сообщений
const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
	HeaderTraceID      = "x-trace-id"
)
