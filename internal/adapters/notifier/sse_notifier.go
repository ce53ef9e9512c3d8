package notifier

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

// ClientChannel - канал одного SSE-подключения (одной вкладки браузера)
type ClientChannel chan []byte

const (
	eventBufferSize  = 100
	clientBufferSize = 100
	sseEventName     = "notification"
)

// NotificationPayload - JSON, который получает браузер
type NotificationPayload struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	PropertyID *int64    `json:"property_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SSENotifier рассылает уведомления подключенным клиентам.
// Уведомление с UserID уходит во все вкладки этого пользователя, без UserID - всем.
type SSENotifier struct {
	// ключ - ID пользователя, у одного пользователя может быть несколько вкладок
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	eventChan chan domain.Notification
	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}

	logger port.LoggerPort
}

// NewSSENotifier создает нотификатор и запускает горутину-диспетчер
func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[string][]ClientChannel),
		eventChan: make(chan domain.Notification, eventBufferSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

func (n *SSENotifier) dispatcher() {
	defer close(n.stopped)
	n.logger.Debug("Notifier dispatcher started.", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped.", nil)
			return
		case notification := <-n.eventChan:
			n.dispatch(notification)
		}
	}
}

func (n *SSENotifier) dispatch(notification domain.Notification) {
	eventLogger := n.logger.WithFields(port.Fields{
		"notification_id":   notification.ID.String(),
		"notification_type": notification.Type,
	})

	message, err := FormatSSE(notification)
	if err != nil {
		eventLogger.Error("Failed to marshal notification", err, nil)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	var targets []ClientChannel
	if notification.UserID == nil {
		for _, channels := range n.clients {
			targets = append(targets, channels...)
		}
	} else {
		targets = n.clients[notification.UserID.String()]
	}

	if len(targets) == 0 {
		eventLogger.Debug("No active clients, notification is only stored.", nil)
		return
	}

	for _, ch := range targets {
		// переполненный клиент пропускает событие, но не тормозит остальных
		select {
		case ch <- message:
		default:
			eventLogger.Warn("Client channel is full, skipping.", nil)
		}
	}
	eventLogger.Debug("Notification dispatched", port.Fields{"channels_count": len(targets)})
}

// FormatSSE сериализует уведомление в кадр text/event-stream
func FormatSSE(notification domain.Notification) ([]byte, error) {
	payload := NotificationPayload{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		PropertyID: notification.PropertyID,
		CreatedAt:  notification.CreatedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", sseEventName, data)), nil
}

// Notify ставит уведомление в очередь диспетчера. После Close уведомления отбрасываются.
func (n *SSENotifier) Notify(notification domain.Notification) {
	select {
	case <-n.done:
	case n.eventChan <- notification:
	}
}

// AddClient регистрирует новое SSE-подключение пользователя
func (n *SSENotifier) AddClient(userID string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, clientBufferSize)
	n.clients[userID] = append(n.clients[userID], ch)

	n.logger.Info("Client connected for user", port.Fields{
		"user_id":                    userID,
		"total_connections_for_user": len(n.clients[userID]),
	})
	return ch
}

// RemoveClient убирает подключение, когда клиент отключился
func (n *SSENotifier) RemoveClient(userID string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[userID]
	if !found {
		return
	}
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, userID)
		n.logger.Debug("Last client disconnected for user. User removed.", port.Fields{"user_id": userID})
		return
	}
	n.clients[userID] = remaining
	n.logger.Info("Client disconnected for user.", port.Fields{
		"user_id":               userID,
		"remaining_connections": len(remaining),
	})
}

// ClientsCount - число открытых подключений
func (n *SSENotifier) ClientsCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	total := 0
	for _, channels := range n.clients {
		total += len(channels)
	}
	return total
}

// Close останавливает диспетчер и ждет его завершения
func (n *SSENotifier) Close() {
	n.closeOnce.Do(func() { close(n.done) })
	<-n.stopped
}
