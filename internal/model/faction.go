package model

import "fmt"

// Faction is one of the two groups a registration belongs to
type Faction string

const (
	FactionEfemeros Faction = "efemeros"
	FactionRosetta  Faction = "rosetta"
)

// Factions lists every recognized faction in display order
func Factions() []Faction {
	return []Faction{FactionEfemeros, FactionRosetta}
}

// Valid reports whether f is a recognized faction
func (f Faction) Valid() bool {
	return f == FactionEfemeros || f == FactionRosetta
}

// ParseFaction converts a raw string into a Faction
func ParseFaction(s string) (Faction, error) {
	f := Faction(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidFaction, s)
	}
	return f, nil
}
