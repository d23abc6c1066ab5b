package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/factionboard/internal/api/request"
	"github.com/mcoot/factionboard/internal/api/response"
	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/services/leaderboard"
	"github.com/mcoot/factionboard/internal/services/registry"
)

// RegistrationHandler handles registration endpoints
type RegistrationHandler struct {
	registry *registry.Service
	logger   *slog.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registry *registry.Service, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registry: registry,
		logger:   logger,
	}
}

// List handles GET /api/registrations
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registry.ListAll(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrationsFromModel(regs))
}

// ListByFaction handles GET /api/registrations/{faction}
func (h *RegistrationHandler) ListByFaction(w http.ResponseWriter, r *http.Request) {
	faction, err := model.ParseFaction(mux.Vars(r)["faction"])
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	regs, err := h.registry.ListByFaction(r.Context(), faction)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrationsFromModel(regs))
}

// Create handles POST /api/registrations
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	reg, err := h.registry.Create(r.Context(), req.Input())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedRegistrationFromModel(reg))
}

// Update handles PUT /api/registrations/{id}
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	reg, err := h.registry.UpdateFields(r.Context(), registrationID(r), req.Input(), ownerSecret(r))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrationFromModel(reg))
}

// UpdateFaction handles PUT /api/registrations/{id}/faction
func (h *RegistrationHandler) UpdateFaction(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateFactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	reg, err := h.registry.UpdateFaction(r.Context(), registrationID(r), req.Faction, ownerSecret(r))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrationFromModel(reg))
}

// Delete handles DELETE /api/registrations/{id}
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.registry.Delete(r.Context(), registrationID(r), ownerSecret(r))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if !deleted {
		WriteError(w, r, h.logger, model.ErrRegistrationNotFound)
		return
	}

	response.NoContent(w)
}

// Leaderboard handles GET /api/leaderboard
func (h *RegistrationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registry.ListAll(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromBoard(leaderboard.Build(regs)))
}

func registrationID(r *http.Request) model.RegistrationID {
	return model.RegistrationID(mux.Vars(r)["id"])
}

func ownerSecret(r *http.Request) string {
	return r.Header.Get(request.SecretHeader)
}
