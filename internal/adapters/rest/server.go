package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"appraisal-portal/internal/core/domain"
	core_port "appraisal-portal/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ServerConfig - параметры HTTP-сервера
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Handlers - все обработчики API
type Handlers struct {
	Properties    *PropertyHandler
	EditSessions  *EditSessionHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}

// Server - наш REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает роутер: общие middleware, CORS и защищенные группы маршрутов
func NewRouter(allowedOrigins []string, handlers Handlers, validator core_port.TokenValidatorPort, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Total-Count", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pagination", GetPagination)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(validator))

			r.Get("/dashboard", handlers.Notifications.GetDashboard)

			r.Route("/properties", func(r chi.Router) {
				r.Get("/", handlers.Properties.ListProperties)
				r.Post("/", handlers.Properties.CreateProperty)
				r.Post("/import", handlers.Properties.ImportProperties)
				r.Get("/export", handlers.Properties.ExportProperties)
				r.Get("/{propertyID}", handlers.Properties.GetProperty)
				r.With(RequireRole(domain.RoleAdmin)).Delete("/{propertyID}", handlers.Properties.DeleteProperty)
				r.Post("/{propertyID}/edit-sessions", handlers.EditSessions.StartSession)
			})
			r.Delete("/valuations/{valuationID}", handlers.Properties.DeleteValuation)

			r.Route("/edit-sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", handlers.EditSessions.GetSession)
				r.Patch("/", handlers.EditSessions.ApplyOps)
				r.Delete("/", handlers.EditSessions.DiscardSession)
				r.Post("/submit", handlers.EditSessions.SubmitSession)
			})

			r.Get("/map/markers", handlers.Properties.GetMapMarkers)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", handlers.Notifications.ListNotifications)
				r.Get("/subscribe", handlers.Notifications.Subscribe)
				r.Post("/{notificationID}/read", handlers.Notifications.MarkRead)
			})

			// админка
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))

				r.Get("/users", handlers.Admin.ListUsers)
				r.Post("/users", handlers.Admin.CreateUser)
				r.Put("/users/{userID}/role", handlers.Admin.AssignRole)
				r.Delete("/users/{userID}", handlers.Admin.DeleteUser)

				r.Get("/roles", handlers.Admin.ListRoles)
				r.Post("/roles", handlers.Admin.CreateRole)
			})
		})
	})

	return r
}

// NewServer создает новый экземпляр сервера.
func NewServer(cfg ServerConfig, handlers Handlers, validator core_port.TokenValidatorPort, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg.AllowedOrigins, handlers, validator, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start запускает HTTP-сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
