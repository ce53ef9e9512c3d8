package rest

import (
	"fmt"
	"net/http"
	"time"

	"appraisal-portal/internal/adapters/notifier"
	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/port/usecases_port"
)

// интервал комментариев keep-alive для SSE
const sseKeepAliveInterval = 15 * time.Second

// SSEHub - то, что SSE-обработчику нужно от нотификатора
type SSEHub interface {
	AddClient(userID string) notifier.ClientChannel
	RemoveClient(userID string, ch notifier.ClientChannel)
}

type NotificationHandler struct {
	listUC      usecases_port.ListNotificationsUseCasePort
	markReadUC  usecases_port.MarkNotificationReadUseCasePort
	dashboardUC usecases_port.GetDashboardUseCasePort
	hub         SSEHub
	keepAlive   time.Duration
}

func NewNotificationHandler(
	listUC usecases_port.ListNotificationsUseCasePort,
	markReadUC usecases_port.MarkNotificationReadUseCasePort,
	dashboardUC usecases_port.GetDashboardUseCasePort,
	hub SSEHub,
) *NotificationHandler {
	return &NotificationHandler{
		listUC:      listUC,
		markReadUC:  markReadUC,
		dashboardUC: dashboardUC,
		hub:         hub,
		keepAlive:   sseKeepAliveInterval,
	}
}

func claimsOrUnauthorized(w http.ResponseWriter, r *http.Request) (*domain.Claims, bool) {
	claims := contextkeys.ClaimsFromContext(r.Context())
	if claims == nil {
		WriteJSONError(w, http.StatusUnauthorized, "User is not authenticated")
		return nil, false
	}
	return claims, true
}

// ListNotifications обрабатывает GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	page, perPage := parsePagination(r.URL.Query())
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "ListNotifications",
		"page":    page,
	})

	result, err := h.listUC.Execute(r.Context(), claims.UserID, page, perPage)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve notifications")
		return
	}

	resp := PaginatedNotificationsResponse{
		Data:        make([]NotificationResponse, len(result.Items)),
		Total:       result.TotalCount,
		UnreadCount: result.UnreadCount,
		Page:        result.CurrentPage,
		PerPage:     result.ItemsPerPage,
	}
	for i, n := range result.Items {
		resp.Data[i] = toNotificationResponse(n)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// MarkRead обрабатывает POST /api/v1/notifications/{notificationID}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	notificationID, err := parseUUIDParam(r, "notificationID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":         "MarkRead",
		"notification_id": notificationID.String(),
	})

	if err := h.markReadUC.Execute(r.Context(), notificationID, claims.UserID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to mark notification as read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDashboard обрабатывает GET /api/v1/dashboard
func (h *NotificationHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetDashboard"})

	stats, err := h.dashboardUC.Execute(r.Context(), claims.UserID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve dashboard")
		return
	}
	RespondWithJSON(w, http.StatusOK, toDashboardResponse(stats))
}

// Subscribe - обработчик для GET /api/v1/notifications/subscribe
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Subscribe"})

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientChan := h.hub.AddClient(claims.UserID.String())
	defer h.hub.RemoveClient(claims.UserID.String(), clientChan)

	handlerLogger.Info("New client subscribed to notifications", nil)

	// подтверждаем установку соединения
	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case data, open := <-clientChan:
			if !open {
				return
			}
			if _, err := w.Write(data); err != nil {
				handlerLogger.Warn("Error writing to client, closing SSE connection", port.Fields{"error": err.Error()})
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// строки с двоеточия - комментарии SSE, браузер их игнорирует
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}
