package redis

import (
	"fmt"

	"github.com/mcoot/factionboard/internal/model"
)

// Key prefix for all registration data
const keyPrefix = "fboard"

// registrationKey returns the Redis key for a Registration
func registrationKey(id model.RegistrationID) string {
	return fmt.Sprintf("%s:registration:%s", keyPrefix, id)
}

// playerNameIndexKey returns the Redis key claiming a normalized player name.
// Its value is the owning registration ID.
func playerNameIndexKey(normalized string) string {
	return fmt.Sprintf("%s:idx:player_name:%s", keyPrefix, normalized)
}

// registrationOrderKey returns the Redis key for the LIST of IDs in insertion order
func registrationOrderKey() string {
	return fmt.Sprintf("%s:registrations", keyPrefix)
}
