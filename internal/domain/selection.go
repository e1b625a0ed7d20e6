package domain

// SelectRankingItem adds an item to the bidder's ranking material. Owned
// items are allowed when the rule permits; they are consumed only once the
// ranking is submitted, so a deselect costs nothing.
func (g *Game) SelectRankingItem(playerID, itemID string) error {
	if g.Phase != PhaseCardSelection {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID != r.BidderID {
		return ErrNotBidder
	}
	if len(r.Selected) >= r.Bid {
		return ErrSelectionFull
	}
	if r.IsSelected(itemID) {
		return ErrItemUnavailable
	}
	if !g.isAvailableForRanking(itemID) {
		return ErrItemUnavailable
	}

	r.Selected = append(r.Selected, itemID)
	if len(r.Selected) == r.Bid {
		return g.transition(PhaseRanking)
	}
	return nil
}

// DeselectRankingItem removes an item from the material. Allowed during
// card selection and during ranking, where it reopens the selection.
func (g *Game) DeselectRankingItem(playerID, itemID string) error {
	if g.Phase != PhaseCardSelection && g.Phase != PhaseRanking {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID != r.BidderID {
		return ErrNotBidder
	}
	for i, id := range r.Selected {
		if id == itemID {
			r.Selected = append(r.Selected[:i], r.Selected[i+1:]...)
			if g.Phase == PhaseRanking {
				return g.transition(PhaseCardSelection)
			}
			return nil
		}
	}
	return ErrItemNotSelected
}

// SubmitRanking commits the bidder's candidate order and starts the reveal.
// The order must be a permutation of the selected material. Owned items
// used as material are consumed here, permanently.
func (g *Game) SubmitRanking(playerID string, order []string) error {
	if g.Phase != PhaseRanking {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID != r.BidderID {
		return ErrNotBidder
	}
	if len(order) != len(r.Selected) {
		return ErrIncompleteRanking
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] || !r.IsSelected(id) {
			return ErrIncompleteRanking
		}
		seen[id] = true
	}

	bidder := g.Players[r.BidderID]
	for _, id := range order {
		if bidder.Owns(r.Category, id) {
			if err := g.consumeOwned(r.BidderID, r.Category, id); err != nil {
				return err
			}
			r.ConsumedOwned = append(r.ConsumedOwned, id)
		}
	}

	r.Order = append([]string(nil), order...)
	r.RevealIndex = 0
	r.BreakIndex = -1
	return g.transition(PhaseReveal)
}

// RevealStep describes one progressive disclosure of the candidate order.
type RevealStep struct {
	Index      int
	ItemID     string
	Ok         bool // item still contributes to a successful ranking
	BreakIndex int  // -1 until a sequence break occurs
	Done       bool // all items revealed
}

// RevealNext discloses the next item of the candidate order and validates
// the step against the previous item. After a break the remaining items are
// still revealed but no longer contribute to success.
func (g *Game) RevealNext() (RevealStep, error) {
	if g.Phase != PhaseReveal {
		return RevealStep{}, ErrWrongPhase
	}
	r := g.Round
	if r.RevealIndex >= len(r.Order) {
		return RevealStep{}, ErrRevealFinished
	}

	i := r.RevealIndex
	itemID := r.Order[i]
	if i > 0 && r.BreakIndex == -1 {
		prev, okP := g.Catalog.Item(r.Order[i-1])
		curr, okC := g.Catalog.Item(itemID)
		if !okP || !okC {
			return RevealStep{}, &IntegrityError{Check: "reveal", Detail: "ranked item missing from catalog"}
		}
		if !ValidStep(prev, curr, r.Challenge) {
			r.BreakIndex = i
		}
	}
	r.RevealIndex++

	step := RevealStep{
		Index:      i,
		ItemID:     itemID,
		Ok:         r.BreakIndex == -1 || i < r.BreakIndex,
		BreakIndex: r.BreakIndex,
		Done:       r.RevealIndex == len(r.Order),
	}

	if step.Done {
		if r.BreakIndex == -1 {
			r.Outcome = OutcomeSuccess
		} else {
			r.Outcome = OutcomeFailure
		}
		if err := g.transition(PhaseScoring); err != nil {
			return RevealStep{}, err
		}
	}
	return step, nil
}

// RevealProgress reports how many items have been revealed and the first
// break index, for rendering.
func (g *Game) RevealProgress() (revealed, total, breakIndex int) {
	if g.Round == nil {
		return 0, 0, -1
	}
	return g.Round.RevealIndex, len(g.Round.Order), g.Round.BreakIndex
}
