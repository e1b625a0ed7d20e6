package domain

import "sort"

// Stats accumulates a player's lifetime numbers within a game. They persist
// across rounds and reset only on a new game.
type Stats struct {
	BidsPlaced   int
	BidsWon      int
	RankingsWon  int
	RankingsLost int
	BlocksMade   int
	BlocksWon    int
	BlocksLost   int
	TokensGained int
	TokensLost   int
}

// Player holds per-game state for one participant. Score, tokens and owned
// items carry across rounds; round-scoped fields live on Round.
type Player struct {
	ID     string
	Name   string
	Seat   int // 0-based join order, used as a deterministic tie-break
	Score  int
	Tokens *Ledger
	Owned  map[string]map[string]bool // category -> item id -> true
	Stats  Stats
}

// NewPlayer creates a player with the starting token allocation from the
// active rule config.
func NewPlayer(id, name string, seat int, rules RuleConfig) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Seat:   seat,
		Tokens: NewLedger(rules.StartingTokens),
		Owned:  make(map[string]map[string]bool),
	}
}

// Owns reports whether the player owns the item in the given category.
func (p *Player) Owns(category, itemID string) bool {
	return p.Owned[category][itemID]
}

// OwnedIn returns the player's owned item ids for a category, sorted.
func (p *Player) OwnedIn(category string) []string {
	ids := make([]string, 0, len(p.Owned[category]))
	for id := range p.Owned[category] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OwnedCount returns the total number of items the player owns across all
// categories.
func (p *Player) OwnedCount() int {
	n := 0
	for _, set := range p.Owned {
		n += len(set)
	}
	return n
}
