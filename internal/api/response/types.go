package response

import (
	"time"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/services/leaderboard"
	"github.com/mcoot/factionboard/internal/services/registry"
)

// Registration is the public view of a registration. It has no owner
// secret field, so nothing built from it can leak one.
type Registration struct {
	ID            string    `json:"id"`
	Faction       string    `json:"faction"`
	PlayerName    string    `json:"playerName"`
	CharacterUUID *string   `json:"characterUuid,omitempty"`
	TeamName      *string   `json:"teamName,omitempty"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

// RegistrationFromModel converts a model.Registration to its public view
func RegistrationFromModel(r *model.Registration) Registration {
	return Registration{
		ID:            string(r.ID),
		Faction:       string(r.Faction),
		PlayerName:    r.PlayerName,
		CharacterUUID: r.CharacterUUID,
		TeamName:      r.TeamName,
		RegisteredAt:  r.RegisteredAt,
	}
}

// RegistrationsFromModel converts a list of registrations
func RegistrationsFromModel(regs []*model.Registration) []Registration {
	out := make([]Registration, len(regs))
	for i, r := range regs {
		out[i] = RegistrationFromModel(r)
	}
	return out
}

// CreatedRegistration is the creation response, the only one that carries
// the owner secret
type CreatedRegistration struct {
	Registration
	OwnerSecret string `json:"ownerSecret"`
}

// CreatedRegistrationFromModel converts a freshly created registration
func CreatedRegistrationFromModel(r *model.Registration) CreatedRegistration {
	return CreatedRegistration{
		Registration: RegistrationFromModel(r),
		OwnerSecret:  r.OwnerSecret,
	}
}

// LeaderboardEntry is a ranked registration
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	Registration
}

// Leaderboard maps each faction to its ranked entries
type Leaderboard map[string][]LeaderboardEntry

// LeaderboardFromBoard converts a leaderboard.Board
func LeaderboardFromBoard(b leaderboard.Board) Leaderboard {
	out := make(Leaderboard, len(b))
	for faction, entries := range b {
		converted := make([]LeaderboardEntry, len(entries))
		for i, e := range entries {
			converted[i] = LeaderboardEntry{
				Rank:         e.Rank,
				Registration: RegistrationFromModel(e.Registration),
			}
		}
		out[string(faction)] = converted
	}
	return out
}

// Stats is the admin statistics response
type Stats struct {
	Total     int            `json:"total"`
	ByFaction map[string]int `json:"byFaction"`
}

// StatsFromRegistry converts registry.Stats
func StatsFromRegistry(s *registry.Stats) Stats {
	byFaction := make(map[string]int, len(s.ByFaction))
	for f, n := range s.ByFaction {
		byFaction[string(f)] = n
	}
	return Stats{Total: s.Total, ByFaction: byFaction}
}

// AdminToken is the admin login response
type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminTokenFromSession creates an AdminToken from a session
func AdminTokenFromSession(s *auth.Session) AdminToken {
	return AdminToken{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
