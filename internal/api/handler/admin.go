package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/factionboard/internal/api/middleware"
	"github.com/mcoot/factionboard/internal/api/request"
	"github.com/mcoot/factionboard/internal/api/response"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/services/registry"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	authService *auth.Service
	registry    *registry.Service
	logger      *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service, registry *registry.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		registry:    registry,
		logger:      logger,
	}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.AdminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	if req.Password == "" {
		WriteError(w, r, h.logger, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(req.Password)
	if err != nil {
		h.logger.Warn("admin login failed", slog.Any("error", err))
		WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("admin login succeeded")
	response.JSON(w, http.StatusOK, response.AdminTokenFromSession(session))
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.Stats(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	if session := middleware.GetSession(r.Context()); session != nil {
		h.logger.Debug("admin stats served", slog.Time("session_expires_at", session.ExpiresAt))
	}

	response.JSON(w, http.StatusOK, response.StatsFromRegistry(stats))
}
