package model

import (
	"strings"
	"time"
)

// RegistrationID uniquely identifies a registration
type RegistrationID string

// Registration is a player's entry in one faction's list.
// OwnerSecret is the only proof of ownership and must never leave the
// server except in the creation response.
type Registration struct {
	ID            RegistrationID `json:"id"`
	Faction       Faction        `json:"faction"`
	PlayerName    string         `json:"playerName"`
	CharacterUUID *string        `json:"characterUuid,omitempty"`
	TeamName      *string        `json:"teamName,omitempty"`
	RegisteredAt  time.Time      `json:"registeredAt"`
	OwnerSecret   string         `json:"ownerSecret"`
}

// NormalizedName returns the key used for the uniqueness invariant
func (r *Registration) NormalizedName() string {
	return NormalizePlayerName(r.PlayerName)
}

// Clone returns a deep copy of the registration
func (r *Registration) Clone() *Registration {
	c := *r
	c.CharacterUUID = cloneString(r.CharacterUUID)
	c.TeamName = cloneString(r.TeamName)
	return &c
}

// NormalizePlayerName trims whitespace and lowercases a player name.
// Two registrations may never share a normalized name.
func NormalizePlayerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
