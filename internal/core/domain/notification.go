package domain

import (
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationValuationSaved  = "valuation_saved"
	NotificationImportCompleted = "import_completed"
)

// Notification - запись в ленте уведомлений.
// UserID == nil означает широковещательное уведомление для всех пользователей.
type Notification struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	Type       string
	Title      string
	Message    string
	PropertyID *int64
	CreatedAt  time.Time
	ReadAt     *time.Time
}

// NewNotification - конструктор уведомления
func NewNotification(notificationType, title, message string, userID *uuid.UUID, propertyID *int64) *Notification {
	return &Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       notificationType,
		Title:      title,
		Message:    message,
		PropertyID: propertyID,
		CreatedAt:  time.Now().UTC(),
	}
}

// ValuationSavedEvent - событие о сохранении правок объекта и его оценок.
type ValuationSavedEvent struct {
	PropertyID        int64
	Debitur           string
	UpdatedValuations int
	CreatedValuations int
	PropertyChanged   bool
	UserID            *uuid.UUID
	OccurredAt        time.Time
}

// ImportCompletedEvent - событие о завершении импорта таблицы.
type ImportCompletedEvent struct {
	FileName   string
	Imported   int
	Failed     int
	UserID     *uuid.UUID
	OccurredAt time.Time
}

// PaginatedNotifications - страница уведомлений.
type PaginatedNotifications struct {
	Items        []Notification
	TotalCount   int64
	UnreadCount  int64
	CurrentPage  int
	ItemsPerPage int
}
