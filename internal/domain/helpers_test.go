package domain

import (
	"fmt"
	"math/rand"
	"testing"
)

// testCatalog builds a small two-category catalog with deterministic
// metrics: population strictly increases with the item index.
func testCatalog() *Catalog {
	var items []Item
	for i := 1; i <= 12; i++ {
		items = append(items, Item{
			ID:       fmt.Sprintf("country-%02d", i),
			Name:     fmt.Sprintf("Country %02d", i),
			Category: "countries",
			Metrics:  map[string]float64{"population": float64(i) * 1e6},
		})
	}
	for i := 1; i <= 12; i++ {
		items = append(items, Item{
			ID:       fmt.Sprintf("peak-%02d", i),
			Name:     fmt.Sprintf("Peak %02d", i),
			Category: "peaks",
			Metrics:  map[string]float64{"height": 9000 - float64(i)*100},
		})
	}
	challenges := []Challenge{
		{ID: "pop-asc", Category: "countries", Metric: "population", Direction: Ascending, Label: "Population, smallest first"},
		{ID: "height-desc", Category: "peaks", Metric: "height", Direction: Descending, Label: "Height, tallest first"},
	}
	return NewCatalog(items, challenges)
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func testRules() RuleConfig {
	r := DefaultRules()
	r.MaxRounds = 3
	return r
}

// newTestGame creates a started game for the given players with a fixed rng
// seed and the countries category selected.
func newTestGame(t *testing.T, playerIDs ...string) (*Game, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	g, err := NewGame(testCatalog(), testRules(), playerIDs, nil)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := g.SelectCategory("countries", rng); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	return g, rng
}

// winAuction drives the auction so that bidder wins with the given bid.
// The other players pass after the bidder's raises.
func winAuction(t *testing.T, g *Game, bidder string, bid int) {
	t.Helper()
	for i := 0; i < bid; i++ {
		if err := g.PlaceBid(bidder); err != nil {
			t.Fatalf("PlaceBid %d: %v", i+1, err)
		}
	}
	for _, id := range g.Seats {
		if id == bidder {
			continue
		}
		if err := g.PassBid(id); err != nil {
			t.Fatalf("PassBid %s: %v", id, err)
		}
	}
	if g.Round.BidderID != bidder || g.Round.Bid != bid {
		t.Fatalf("auction ended with bidder=%s bid=%d, want %s/%d", g.Round.BidderID, g.Round.Bid, bidder, bid)
	}
}

// skipAllBlocks walks every blocker through a skip.
func skipAllBlocks(t *testing.T, g *Game) {
	t.Helper()
	for g.Phase == PhaseBlocking {
		current, ok := g.Round.CurrentBlocker()
		if !ok {
			t.Fatalf("blocking phase without a current blocker")
		}
		if err := g.SkipBlock(current); err != nil {
			t.Fatalf("SkipBlock %s: %v", current, err)
		}
	}
}

// selectAndSubmit picks the first n available items and submits them in the
// given order (defaults to pick order when order is nil).
func selectAndSubmit(t *testing.T, g *Game, order []string) {
	t.Helper()
	r := g.Round
	if order == nil {
		avail := g.AvailableForRanking()
		order = append([]string(nil), avail[:r.Bid]...)
	}
	for _, id := range order {
		if err := g.SelectRankingItem(r.BidderID, id); err != nil {
			t.Fatalf("SelectRankingItem %s: %v", id, err)
		}
	}
	if err := g.SubmitRanking(r.BidderID, order); err != nil {
		t.Fatalf("SubmitRanking: %v", err)
	}
}

// revealAll steps through the whole reveal.
func revealAll(t *testing.T, g *Game) {
	t.Helper()
	for g.Phase == PhaseReveal {
		if _, err := g.RevealNext(); err != nil {
			t.Fatalf("RevealNext: %v", err)
		}
	}
}

// sortedByMetric returns the drawn hand ordered by ascending population,
// which is also the canonical order for the test challenge.
func sortedByMetric(g *Game, ids []string) []string {
	items := make([]*Item, 0, len(ids))
	for _, id := range ids {
		it, _ := g.Catalog.Item(id)
		items = append(items, it)
	}
	ordered := CanonicalOrder(items, g.Round.Challenge)
	out := make([]string, len(ordered))
	for i, it := range ordered {
		out[i] = it.ID
	}
	return out
}
