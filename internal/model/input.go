package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CreateInput holds the caller-settable fields of a new registration
type CreateInput struct {
	Faction       Faction
	PlayerName    string
	CharacterUUID *string
	TeamName      *string
}

// Validate checks the input against the registration schema
func (in CreateInput) Validate() error {
	if !in.Faction.Valid() {
		return newValidationError("faction", fmt.Sprintf("must be %q or %q", FactionEfemeros, FactionRosetta))
	}
	if strings.TrimSpace(in.PlayerName) == "" {
		return newValidationError("playerName", "is required")
	}
	return nil
}

// UpdateInput is a partial update. A nil field is left unchanged; a pointer
// to an empty string sets the field to empty.
type UpdateInput struct {
	PlayerName    *string
	TeamName      *string
	CharacterUUID *string
	Faction       *Faction
}

// Validate applies the create rules to every field that is present
func (in UpdateInput) Validate() error {
	if in.PlayerName != nil && strings.TrimSpace(*in.PlayerName) == "" {
		return newValidationError("playerName", "must not be empty")
	}
	if in.Faction != nil && !in.Faction.Valid() {
		return newValidationError("faction", fmt.Sprintf("must be %q or %q", FactionEfemeros, FactionRosetta))
	}
	return nil
}

// Empty reports whether the update carries no fields
func (in UpdateInput) Empty() bool {
	return in.PlayerName == nil && in.TeamName == nil && in.CharacterUUID == nil && in.Faction == nil
}

// Apply copies the present fields onto reg. Identity, timestamp and secret
// are not part of UpdateInput and so can never be changed here.
func (in UpdateInput) Apply(reg *Registration) {
	if in.PlayerName != nil {
		reg.PlayerName = *in.PlayerName
	}
	if in.TeamName != nil {
		reg.TeamName = cloneString(in.TeamName)
	}
	if in.CharacterUUID != nil {
		reg.CharacterUUID = cloneString(in.CharacterUUID)
	}
	if in.Faction != nil {
		reg.Faction = *in.Faction
	}
}

// FlexString decodes from either a JSON string or a JSON number, so
// 150464316 and "150464316" both yield "150464316".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return newValidationError("characterUuid", "must be a string or a number")
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = FlexString(n.String())
		return nil
	default:
		return newValidationError("characterUuid", "must be a string or a number")
	}
}

// Ptr returns the value as a *string, or nil for a nil receiver
func (s *FlexString) Ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
