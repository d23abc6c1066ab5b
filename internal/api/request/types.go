package request

import (
	"github.com/mcoot/factionboard/internal/model"
)

// SecretHeader carries the owner secret on mutating requests
const SecretHeader = "X-Registration-Secret"

// CreateRegistrationRequest is the request body for registering a player
type CreateRegistrationRequest struct {
	Faction       model.Faction     `json:"faction"`
	PlayerName    string            `json:"playerName"`
	CharacterUUID *model.FlexString `json:"characterUuid,omitempty"`
	TeamName      *string           `json:"teamName,omitempty"`
}

// Input converts the request into a registry create input
func (r CreateRegistrationRequest) Input() model.CreateInput {
	return model.CreateInput{
		Faction:       r.Faction,
		PlayerName:    r.PlayerName,
		CharacterUUID: r.CharacterUUID.Ptr(),
		TeamName:      r.TeamName,
	}
}

// UpdateRegistrationRequest is a partial update. Absent fields are left
// unchanged. Fields outside this set (id, registeredAt, ownerSecret) are
// ignored.
type UpdateRegistrationRequest struct {
	Faction       *model.Faction    `json:"faction,omitempty"`
	PlayerName    *string           `json:"playerName,omitempty"`
	CharacterUUID *model.FlexString `json:"characterUuid,omitempty"`
	TeamName      *string           `json:"teamName,omitempty"`
}

// Input converts the request into a registry update input
func (r UpdateRegistrationRequest) Input() model.UpdateInput {
	return model.UpdateInput{
		PlayerName:    r.PlayerName,
		TeamName:      r.TeamName,
		CharacterUUID: r.CharacterUUID.Ptr(),
		Faction:       r.Faction,
	}
}

// UpdateFactionRequest is the request body for moving a registration to
// another faction
type UpdateFactionRequest struct {
	Faction model.Faction `json:"faction"`
}

// AdminLoginRequest is the request body for the admin login
type AdminLoginRequest struct {
	Password string `json:"password"`
}
