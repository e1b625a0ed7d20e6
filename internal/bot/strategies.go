package bot

import (
	"math/rand"

	"github.com/prcass/outrank-v5-sub000/internal/domain"
)

// StandardBrain plays every phase with the probabilistic style described by
// its Tuning. It holds its own rng so agents can be seeded independently.
type StandardBrain struct {
	Tuning Tuning
	rng    *rand.Rand
}

func NewStandardBrain(tuning Tuning, rng *rand.Rand) *StandardBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &StandardBrain{Tuning: tuning, rng: rng}
}

func (b *StandardBrain) Decide(game *domain.Game, playerID string) (Action, error) {
	if game == nil {
		return Action{Kind: ActNone}, nil
	}
	switch game.Phase {
	case domain.PhaseCategorySelect:
		return b.decideCategory(game, playerID), nil
	case domain.PhaseBidding:
		return b.decideBid(game, playerID), nil
	case domain.PhaseBlocking:
		return b.decideBlock(game, playerID), nil
	case domain.PhaseCardSelection:
		return b.decideSelection(game, playerID), nil
	case domain.PhaseRanking:
		return b.decideRanking(game, playerID), nil
	case domain.PhaseReveal:
		if game.Round != nil && game.Round.BidderID == playerID {
			return Action{Kind: ActReveal}, nil
		}
		return Action{Kind: ActNone}, nil
	case domain.PhaseRoundEnd:
		if roundOpener(game) == playerID {
			return Action{Kind: ActContinue}, nil
		}
		return Action{Kind: ActNone}, nil
	default:
		return Action{Kind: ActNone}, nil
	}
}

// roundOpener rotates category selection (and the round-end continue) around
// the table.
func roundOpener(g *domain.Game) string {
	if len(g.Seats) == 0 {
		return ""
	}
	return g.Seats[(g.RoundNum-1)%len(g.Seats)]
}

func (b *StandardBrain) decideCategory(g *domain.Game, playerID string) Action {
	if roundOpener(g) != playerID {
		return Action{Kind: ActNone}
	}
	var viable []string
	for _, category := range g.Catalog.Categories() {
		free := 0
		for _, it := range g.Catalog.ItemsFor(category) {
			if _, owned := g.ItemOwner(it.ID); !owned {
				free++
			}
		}
		if free > 0 {
			viable = append(viable, category)
		}
	}
	if len(viable) == 0 {
		return Action{Kind: ActNone}
	}
	return Action{
		Kind:     ActSelectCategory,
		Category: viable[b.rng.Intn(len(viable))],
	}
}

func (b *StandardBrain) decideBid(g *domain.Game, playerID string) Action {
	r := g.Round
	if r == nil || r.Auction.Passed[playerID] {
		return Action{Kind: ActNone}
	}
	if r.Auction.HighBidder == playerID {
		// Already leading; wait for the others.
		return Action{Kind: ActNone}
	}
	if r.Auction.HighBid == 0 {
		// Someone has to open or the auction restarts forever.
		return Action{Kind: ActBid}
	}
	cap := b.Tuning.BidCap
	if cap > g.Rules.MaxBid {
		cap = g.Rules.MaxBid
	}
	if r.Auction.HighBid >= cap {
		return Action{Kind: ActPass}
	}
	if b.rng.Float64() < b.Tuning.BidProbability {
		return Action{Kind: ActBid}
	}
	return Action{Kind: ActPass}
}

func (b *StandardBrain) decideBlock(g *domain.Game, playerID string) Action {
	r := g.Round
	current, ok := r.CurrentBlocker()
	if !ok || current != playerID {
		return Action{Kind: ActNone}
	}

	if r.StagedToken != 0 {
		if target := b.pickBlockTarget(g); target != "" {
			return Action{Kind: ActBlock, ItemID: target}
		}
		return Action{Kind: ActSkipBlock}
	}

	player, ok := g.Player(playerID)
	if !ok {
		return Action{Kind: ActSkipBlock}
	}
	if b.pickBlockTarget(g) == "" || b.rng.Float64() >= b.Tuning.BlockProbability {
		return Action{Kind: ActSkipBlock}
	}
	token := b.pickToken(player)
	if token == 0 {
		return Action{Kind: ActSkipBlock}
	}
	return Action{Kind: ActStageToken, Token: token}
}

// pickToken chooses an available denomination, cheapest first unless the
// tuning prefers the expensive ones.
func (b *StandardBrain) pickToken(p *domain.Player) domain.TokenValue {
	values := domain.TokenValues
	if b.Tuning.PreferHighToken {
		for i := len(values) - 1; i >= 0; i-- {
			if p.Tokens.Available(values[i]) > 0 {
				return values[i]
			}
		}
		return 0
	}
	for _, v := range values {
		if p.Tokens.Available(v) > 0 {
			return v
		}
	}
	return 0
}

func (b *StandardBrain) pickBlockTarget(g *domain.Game) string {
	var candidates []string
	for _, id := range g.Round.Drawn {
		if g.Round.IsBlocked(id) {
			continue
		}
		if _, owned := g.ItemOwner(id); owned {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[b.rng.Intn(len(candidates))]
}

func (b *StandardBrain) decideSelection(g *domain.Game, playerID string) Action {
	r := g.Round
	if r.BidderID != playerID || len(r.Selected) >= r.Bid {
		return Action{Kind: ActNone}
	}
	for _, id := range canonicalIDs(g, g.AvailableForRanking()) {
		if !r.IsSelected(id) {
			return Action{Kind: ActSelectItem, ItemID: id}
		}
	}
	return Action{Kind: ActNone}
}

func (b *StandardBrain) decideRanking(g *domain.Game, playerID string) Action {
	r := g.Round
	if r.BidderID != playerID {
		return Action{Kind: ActNone}
	}
	order := canonicalIDs(g, r.Selected)
	if len(order) > 1 && b.rng.Float64() < b.Tuning.MistakeRate {
		i := b.rng.Intn(len(order) - 1)
		order[i], order[i+1] = order[i+1], order[i]
	}
	return Action{Kind: ActSubmitRanking, Order: order}
}

// canonicalIDs returns ids sorted in the round challenge's canonical order.
func canonicalIDs(g *domain.Game, ids []string) []string {
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := g.Catalog.Item(id); ok {
			items = append(items, it)
		}
	}
	ordered := domain.CanonicalOrder(items, g.Round.Challenge)
	out := make([]string, len(ordered))
	for i, it := range ordered {
		out[i] = it.ID
	}
	return out
}
