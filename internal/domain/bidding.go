package domain

import "sort"

// PlaceBid raises the auction by exactly one over the current high bid. The
// first bid of a round is always 1. Passed players may not re-enter.
func (g *Game) PlaceBid(playerID string) error {
	if g.Phase != PhaseBidding {
		return ErrWrongPhase
	}
	p, ok := g.Players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	a := &g.Round.Auction
	if a.Passed[playerID] {
		return ErrAlreadyPassed
	}
	next := a.HighBid + 1
	if next > g.Rules.MaxBid {
		return ErrBidCapReached
	}

	a.HighBid = next
	a.HighBidder = playerID
	p.Stats.BidsPlaced++

	return g.maybeFinishAuction()
}

// PassBid withdraws a player from the auction. The current high bidder may
// not pass. If every player passes while the bid is still zero the passed
// set clears and bidding restarts.
func (g *Game) PassBid(playerID string) error {
	if g.Phase != PhaseBidding {
		return ErrWrongPhase
	}
	if _, ok := g.Players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	a := &g.Round.Auction
	if a.Passed[playerID] {
		return ErrAlreadyPassed
	}
	if a.HighBidder == playerID {
		return ErrHighBidderPass
	}

	a.Passed[playerID] = true

	if a.HighBid == 0 && len(a.Passed) == len(g.Players) {
		// No winner with a zero bid is possible: restart.
		a.Passed = make(map[string]bool)
		a.Restarts++
		return nil
	}
	return g.maybeFinishAuction()
}

// BiddingRestarted reports how many times this round's auction restarted
// after an all-pass at zero.
func (g *Game) BiddingRestarted() int {
	if g.Round == nil {
		return 0
	}
	return g.Round.Auction.Restarts
}

// maybeFinishAuction closes the auction when only the high bidder remains
// active with a positive bid.
func (g *Game) maybeFinishAuction() error {
	a := &g.Round.Auction
	if a.HighBid == 0 {
		return nil
	}
	active := 0
	for id := range g.Players {
		if !a.Passed[id] {
			active++
		}
	}
	// The high bidder can never be in the passed set, so active==1 means
	// everyone else has passed.
	if active > 1 {
		return nil
	}
	return g.finishAuction()
}

// finishAuction commits the winning bid as an immutable fact for the round
// and opens the blocking phase with the catch-up turn order.
func (g *Game) finishAuction() error {
	r := g.Round
	a := r.Auction
	if a.HighBidder == "" || a.HighBid <= 0 {
		return &IntegrityError{Check: "auction_close", Detail: "auction closed without a positive bid"}
	}
	r.BidderID = a.HighBidder
	r.Bid = a.HighBid
	g.Players[r.BidderID].Stats.BidsWon++

	r.BlockOrder = g.blockingOrder(r.BidderID)
	r.BlockTurn = 0

	if err := g.transition(PhaseBlocking); err != nil {
		return err
	}
	if len(r.BlockOrder) == 0 {
		return g.endBlocking()
	}
	return nil
}

// blockingOrder returns all non-bidder players ordered by ascending current
// score, ties broken by seat. Lowest score blocks first.
func (g *Game) blockingOrder(bidderID string) []string {
	order := make([]string, 0, len(g.Players)-1)
	for _, id := range g.Seats {
		if id != bidderID {
			order = append(order, id)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return g.Players[order[i]].Score < g.Players[order[j]].Score
	})
	return order
}
