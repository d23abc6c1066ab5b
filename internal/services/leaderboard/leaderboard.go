// Package leaderboard builds the ranked per-faction view of registrations.
//
// No score is recorded for a registration, so rank is the position of the
// record within its faction in store order, which is registration order.
package leaderboard

import (
	"github.com/mcoot/factionboard/internal/model"
)

// Entry is one ranked registration
type Entry struct {
	Rank         int
	Registration *model.Registration
}

// Board holds the ranked entries of every faction. Every known faction has a
// key, possibly with no entries.
type Board map[model.Faction][]Entry

// Build partitions regs by faction and ranks each partition 1..N in the
// order given
func Build(regs []*model.Registration) Board {
	board := make(Board, len(model.Factions()))
	for _, f := range model.Factions() {
		board[f] = []Entry{}
	}

	for _, reg := range regs {
		if !reg.Faction.Valid() {
			continue
		}
		entries := board[reg.Faction]
		board[reg.Faction] = append(entries, Entry{
			Rank:         len(entries) + 1,
			Registration: reg,
		})
	}
	return board
}

// Top returns at most n entries of faction. n <= 0 returns all of them.
func (b Board) Top(faction model.Faction, n int) []Entry {
	entries := b[faction]
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
