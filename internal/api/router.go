package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/factionboard/internal/api/apierr"
	"github.com/mcoot/factionboard/internal/api/handler"
	"github.com/mcoot/factionboard/internal/api/middleware"
	"github.com/mcoot/factionboard/internal/api/response"
	"github.com/mcoot/factionboard/internal/metrics"
	basemw "github.com/mcoot/factionboard/internal/middleware"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    *registry.Service
	AuthService *auth.Service
	Metrics     *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	// Create handlers
	registrationHandler := handler.NewRegistrationHandler(cfg.Registry, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.Registry, cfg.Logger)

	// Create middleware
	adminMiddleware := middleware.AdminAuth(cfg.AuthService)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(basemw.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	api := r.PathPrefix("/api").Subrouter()

	// Registration routes; mutations take the owner secret header
	api.HandleFunc("/registrations", registrationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/registrations", registrationHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/registrations/{faction}", registrationHandler.ListByFaction).Methods(http.MethodGet)
	api.HandleFunc("/registrations/{id}", registrationHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/registrations/{id}", registrationHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/registrations/{id}/faction", registrationHandler.UpdateFaction).Methods(http.MethodPut)

	api.HandleFunc("/leaderboard", registrationHandler.Leaderboard).Methods(http.MethodGet)

	// Admin routes
	api.HandleFunc("/admin/login", adminHandler.Login).Methods(http.MethodPost)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/stats", adminHandler.Stats).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusMethodNotAllowed, apierr.ErrorResponse{
		Error: apierr.APIError{Code: apierr.CodeInvalidRequest, Message: "Method not allowed"},
	})
}
