// Package registry is the single entry point for reading and mutating
// faction registrations. It validates input, mints identifiers and owner
// secrets, pre-checks player name uniqueness and enforces ownership before
// any mutation reaches storage.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/factionboard/internal/dependencies/clock"
	"github.com/mcoot/factionboard/internal/dependencies/random"
	"github.com/mcoot/factionboard/internal/metrics"
	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/services/ownership"
	"github.com/mcoot/factionboard/internal/storage"
)

// Operation labels used for logs and metrics
const (
	OpCreate        = "create"
	OpUpdate        = "update"
	OpUpdateFaction = "update_faction"
	OpDelete        = "delete"
)

// Stats is a per-faction count of registrations
type Stats struct {
	Total     int                   `json:"total"`
	ByFaction map[model.Faction]int `json:"byFaction"`
}

// Service manages registrations
type Service struct {
	storage storage.Storage
	gate    ownership.Gate
	clock   clock.Clock
	random  random.Random
	metrics *metrics.Metrics
	logger  *slog.Logger

	// writeMu admits one mutation at a time so the uniqueness pre-check and
	// the write it guards cannot interleave with another mutation.
	writeMu sync.Mutex
}

// New creates a registry service. m may be nil.
func New(
	store storage.Storage,
	gate ownership.Gate,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: store,
		gate:    gate,
		clock:   clk,
		random:  rnd,
		metrics: m,
		logger:  logger,
	}
}

// ListAll returns every registration in insertion order, secrets included
func (s *Service) ListAll(ctx context.Context) ([]*model.Registration, error) {
	regs, err := s.storage.ListRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListByFaction returns the registrations of one faction in insertion order
func (s *Service) ListByFaction(ctx context.Context, faction model.Faction) ([]*model.Registration, error) {
	if !faction.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFaction, faction)
	}

	regs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*model.Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.Faction == faction {
			filtered = append(filtered, reg)
		}
	}
	return filtered, nil
}

// Get returns a single registration
func (s *Service) Get(ctx context.Context, id model.RegistrationID) (*model.Registration, error) {
	reg, err := s.storage.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get registration %s: %w", id, err)
	}
	return reg, nil
}

// Create registers a new player. The returned record carries the owner
// secret; this is the only time it is handed out.
func (s *Service) Create(ctx context.Context, in model.CreateInput) (*model.Registration, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureNameAvailable(ctx, in.PlayerName, ""); err != nil {
		return nil, err
	}

	secret, err := ownership.NewSecret(s.random)
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	reg := &model.Registration{
		ID:            model.RegistrationID(s.random.UUID()),
		Faction:       in.Faction,
		PlayerName:    in.PlayerName,
		CharacterUUID: in.CharacterUUID,
		TeamName:      in.TeamName,
		RegisteredAt:  s.clock.Now(),
		OwnerSecret:   secret,
	}

	if err := s.storage.InsertRegistration(ctx, reg); err != nil {
		if errors.Is(err, model.ErrDuplicatePlayer) {
			s.metrics.DuplicatePlayer()
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.metrics.Mutation(OpCreate)
	s.logger.Info("registration created",
		slog.String("id", string(reg.ID)),
		slog.String("faction", string(reg.Faction)),
	)
	return reg.Clone(), nil
}

// UpdateFields applies a partial update on behalf of the owner
func (s *Service) UpdateFields(
	ctx context.Context,
	id model.RegistrationID,
	in model.UpdateInput,
	secret string,
) (*model.Registration, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	reg, err := s.authorize(ctx, id, secret, OpUpdate)
	if err != nil {
		return nil, err
	}

	if in.PlayerName != nil && *in.PlayerName != reg.PlayerName {
		if err := s.ensureNameAvailable(ctx, *in.PlayerName, id); err != nil {
			return nil, err
		}
	}

	in.Apply(reg)
	return s.persist(ctx, reg, OpUpdate)
}

// UpdateFaction moves a registration to another faction on behalf of the owner
func (s *Service) UpdateFaction(
	ctx context.Context,
	id model.RegistrationID,
	faction model.Faction,
	secret string,
) (*model.Registration, error) {
	if !faction.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFaction, faction)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	reg, err := s.authorize(ctx, id, secret, OpUpdateFaction)
	if err != nil {
		return nil, err
	}

	reg.Faction = faction
	return s.persist(ctx, reg, OpUpdateFaction)
}

// Delete removes a registration on behalf of the owner. It reports false
// without error when the id does not exist.
func (s *Service) Delete(ctx context.Context, id model.RegistrationID, secret string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.authorize(ctx, id, secret, OpDelete); err != nil {
		if errors.Is(err, model.ErrRegistrationNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.storage.DeleteRegistration(ctx, id); err != nil {
		if errors.Is(err, model.ErrRegistrationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("delete registration %s: %w", id, err)
	}

	s.metrics.Mutation(OpDelete)
	s.logger.Info("registration deleted", slog.String("id", string(id)))
	return true, nil
}

// ValidateSecret reports whether secret owns the registration. An unknown id
// is reported as false.
func (s *Service) ValidateSecret(ctx context.Context, id model.RegistrationID, secret string) (bool, error) {
	reg, err := s.storage.GetRegistration(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRegistrationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("validate secret for %s: %w", id, err)
	}
	return s.gate.Authorize(reg, secret) == nil, nil
}

// Stats counts registrations per faction
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	regs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:     len(regs),
		ByFaction: make(map[model.Faction]int, len(model.Factions())),
	}
	for _, f := range model.Factions() {
		stats.ByFaction[f] = 0
	}
	for _, reg := range regs {
		stats.ByFaction[reg.Faction]++
	}
	return stats, nil
}

// authorize loads the registration and checks the supplied secret against it
func (s *Service) authorize(
	ctx context.Context,
	id model.RegistrationID,
	secret string,
	op string,
) (*model.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Authorize(reg, secret); err != nil {
		s.metrics.AuthFailure(op)
		s.logger.Warn("owner secret rejected",
			slog.String("id", string(id)),
			slog.String("operation", op),
		)
		return nil, err
	}
	return reg, nil
}

// ensureNameAvailable fails with ErrDuplicatePlayer when another registration
// already holds the normalized form of name. exclude is skipped so a record
// can keep its own name.
func (s *Service) ensureNameAvailable(ctx context.Context, name string, exclude model.RegistrationID) error {
	regs, err := s.ListAll(ctx)
	if err != nil {
		return err
	}

	normalized := model.NormalizePlayerName(name)
	for _, reg := range regs {
		if reg.ID != exclude && reg.NormalizedName() == normalized {
			s.metrics.DuplicatePlayer()
			s.logger.Debug("player name taken",
				slog.String("holder", string(reg.ID)),
			)
			return model.ErrDuplicatePlayer
		}
	}
	return nil
}

func (s *Service) persist(ctx context.Context, reg *model.Registration, op string) (*model.Registration, error) {
	if err := s.storage.UpdateRegistration(ctx, reg); err != nil {
		if errors.Is(err, model.ErrDuplicatePlayer) {
			s.metrics.DuplicatePlayer()
		}
		return nil, fmt.Errorf("update registration %s: %w", reg.ID, err)
	}

	s.metrics.Mutation(op)
	s.logger.Info("registration updated",
		slog.String("id", string(reg.ID)),
		slog.String("operation", op),
		slog.String("faction", string(reg.Faction)),
	)
	return reg.Clone(), nil
}
