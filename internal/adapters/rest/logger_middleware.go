package rest

import (
	"net/http"
	"time"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// LoggerMiddleware кладет в контекст логгер с trace_id и пишет итог каждого запроса.
// Чужой trace id принимается только в формате uuid.
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}
			w.Header().Set(traceHeader, traceID)

			requestLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			ctx := contextkeys.ContextWithTraceID(
				contextkeys.ContextWithLogger(r.Context(), requestLogger),
				traceID,
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			// шаблон маршрута известен только после роутинга
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			fields := port.Fields{
				"http_method":   r.Method,
				"http_route":    route,
				"http_path":     r.URL.Path,
				"remote_addr":   r.RemoteAddr,
				"status_code":   ww.Status(),
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(started).Milliseconds(),
			}

			switch status := ww.Status(); {
			case status >= http.StatusInternalServerError:
				requestLogger.Error("Request failed", nil, fields)
			case status >= http.StatusBadRequest:
				requestLogger.Warn("Request rejected", fields)
			default:
				requestLogger.Info("Request finished", fields)
			}
		})
	}
}
