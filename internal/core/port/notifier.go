package port

import "appraisal-portal/internal/core/domain"

// NotifierPort доставляет уведомление подключенным клиентам.
// Уведомление без UserID получают все.
type NotifierPort interface {
	Notify(n domain.Notification)
}
