package domain

import (
	"math/rand"
	"sort"
)

// Game is the single authoritative state object. It is owned by the app
// service and mutated only through the engine methods in this package; the
// closed token economy and exactly-once scoring depend on that exclusivity.
type Game struct {
	Phase   Phase
	Rules   RuleConfig
	Catalog *Catalog

	Players map[string]*Player
	Seats   []string // player ids in join order

	RoundNum     int
	Round        *Round
	RoundsScored int

	ownedIndex   map[string]string // item id -> owning player id
	BonusApplied bool
}

// NewGame creates a game in Idle with fresh players. Player ids must be
// unique; at least two players are required.
func NewGame(catalog *Catalog, rules RuleConfig, playerIDs []string, names map[string]string) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(playerIDs) < 2 {
		return nil, ErrTooFewPlayers
	}
	g := &Game{
		Phase:      PhaseIdle,
		Rules:      rules,
		Catalog:    catalog,
		Players:    make(map[string]*Player, len(playerIDs)),
		RoundNum:   1,
		ownedIndex: make(map[string]string),
	}
	for seat, id := range playerIDs {
		if _, dup := g.Players[id]; dup || id == "" {
			return nil, ErrUnknownPlayer
		}
		name := names[id]
		if name == "" {
			name = id
		}
		g.Players[id] = NewPlayer(id, name, seat, rules)
		g.Seats = append(g.Seats, id)
	}
	return g, nil
}

// Begin moves a freshly created game into category selection.
func (g *Game) Begin() error {
	if g.Phase != PhaseIdle {
		return ErrWrongPhase
	}
	return g.transition(PhaseCategorySelect)
}

// Player looks up a player by id.
func (g *Game) Player(id string) (*Player, bool) {
	p, ok := g.Players[id]
	return p, ok
}

// ItemOwner returns the player owning the item, if any.
func (g *Game) ItemOwner(itemID string) (string, bool) {
	id, ok := g.ownedIndex[itemID]
	return id, ok
}

// grantOwnership permanently assigns an item to a player. A duplicate grant
// for the same item is an integrity violation, not a caller error.
func (g *Game) grantOwnership(playerID, category, itemID string) error {
	if owner, taken := g.ownedIndex[itemID]; taken {
		return &IntegrityError{
			Check:  "ownership_grant",
			Detail: "item " + itemID + " already owned by " + owner,
		}
	}
	p := g.Players[playerID]
	if p.Owned[category] == nil {
		p.Owned[category] = make(map[string]bool)
	}
	p.Owned[category][itemID] = true
	g.ownedIndex[itemID] = playerID
	return nil
}

// consumeOwned removes an owned item from circulation permanently: it leaves
// the player's collection without returning to the shared pool.
func (g *Game) consumeOwned(playerID, category, itemID string) error {
	p := g.Players[playerID]
	if !p.Owns(category, itemID) {
		return ErrItemOwned
	}
	delete(p.Owned[category], itemID)
	// The item stays in ownedIndex so it can never be drawn or granted again.
	return nil
}

// SelectCategory draws the round's hand and challenge and opens the auction.
// The challenge is chosen at random among the category's challenges; the
// hand excludes anything owned by any player.
func (g *Game) SelectCategory(categoryID string, rng *rand.Rand) error {
	if g.Phase != PhaseCategorySelect {
		return ErrWrongPhase
	}
	challenges := g.Catalog.ChallengesFor(categoryID)
	if len(challenges) == 0 {
		return ErrUnknownCategory
	}
	challenge := challenges[rng.Intn(len(challenges))]

	drawn, err := g.drawHand(categoryID, challenge, rng)
	if err != nil {
		return err
	}

	g.Round = NewRound(g.RoundNum, categoryID, challenge, drawn)
	return g.transition(PhaseBidding)
}

// Standing is one row of the final (or running) score table.
type Standing struct {
	PlayerID string
	Name     string
	Score    int
	Tokens   int
	Owned    int
}

// Standings returns players ordered by descending score, ties by seat.
func (g *Game) Standings() []Standing {
	out := make([]Standing, 0, len(g.Players))
	for _, id := range g.Seats {
		p := g.Players[id]
		out = append(out, Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Tokens:   p.Tokens.Total(),
			Owned:    p.OwnedCount(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Winner returns the leading player id. Only meaningful once GameEnd is
// reached, but callable at any time for display.
func (g *Game) Winner() string {
	s := g.Standings()
	if len(s) == 0 {
		return ""
	}
	return s[0].PlayerID
}

// ContinueRound retires a scored round: either the next round opens or the
// game ends. Round-scoped state resets; player aggregates carry forward.
func (g *Game) ContinueRound() error {
	if g.Phase != PhaseRoundEnd {
		return ErrWrongPhase
	}
	if g.Round.Number >= g.Rules.MaxRounds || g.anyScoreAtLimit() {
		return g.endGame()
	}
	g.RoundNum++
	g.Round = nil
	for _, p := range g.Players {
		p.Tokens.ClearUsed()
	}
	return g.transition(PhaseCategorySelect)
}

func (g *Game) anyScoreAtLimit() bool {
	for _, p := range g.Players {
		if p.Score >= g.Rules.WinningScore {
			return true
		}
	}
	return false
}

// endGame applies the one-time end-of-game bonuses and freezes the game.
func (g *Game) endGame() error {
	if !g.BonusApplied {
		for _, p := range g.Players {
			p.Score += p.OwnedCount() * g.Rules.BonusPerOwnedItem
			p.Score += p.Tokens.Total() * g.Rules.BonusPerToken
		}
		g.BonusApplied = true
	}
	g.Round = nil
	return g.transition(PhaseGameEnd)
}
