package domain

import "math/rand"

// drawHand picks up to HandSize items from the category at random. Items
// owned by any player (including consumed ones) and items missing the
// challenge metric are excluded.
func (g *Game) drawHand(category string, challenge Challenge, rng *rand.Rand) ([]string, error) {
	var candidates []string
	for _, it := range g.Catalog.ItemsFor(category) {
		if _, owned := g.ownedIndex[it.ID]; owned {
			continue
		}
		if _, ok := it.Metric(challenge.Metric); !ok {
			continue
		}
		candidates = append(candidates, it.ID)
	}
	if len(candidates) == 0 {
		return nil, ErrCategoryExhausted
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > g.Rules.HandSize {
		candidates = candidates[:g.Rules.HandSize]
	}
	return candidates, nil
}

// AvailableForRanking returns the items the bidder may select as ranking
// material: drawn minus blocked, plus (when the rule allows) the bidder's
// own owned items in the round's category.
func (g *Game) AvailableForRanking() []string {
	if g.Round == nil || g.Round.BidderID == "" {
		return nil
	}
	r := g.Round
	out := make([]string, 0, len(r.Drawn))
	for _, id := range r.Drawn {
		if r.IsBlocked(id) {
			continue
		}
		if _, owned := g.ownedIndex[id]; owned {
			// Ownership acquired mid-round pulls the item from the pool.
			continue
		}
		out = append(out, id)
	}
	if g.Rules.UseOwnedInRanking {
		bidder := g.Players[r.BidderID]
		out = append(out, bidder.OwnedIn(r.Category)...)
	}
	return out
}

// isAvailableForRanking reports whether one item could be picked by the
// bidder right now, ignoring the selection cap.
func (g *Game) isAvailableForRanking(itemID string) bool {
	r := g.Round
	if r.IsDrawn(itemID) && !r.IsBlocked(itemID) {
		if _, owned := g.ownedIndex[itemID]; !owned {
			return true
		}
	}
	if g.Rules.UseOwnedInRanking {
		bidder := g.Players[r.BidderID]
		if bidder.Owns(r.Category, itemID) {
			return true
		}
	}
	return false
}
