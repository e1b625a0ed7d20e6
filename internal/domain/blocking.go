package domain

// SelectBlockingToken stages a denomination for the current blocker's wager.
// The token must be held and not already used this round. Staging can be
// repeated to change denominations before the block lands.
func (g *Game) SelectBlockingToken(playerID string, v TokenValue) error {
	if g.Phase != PhaseBlocking {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID == r.BidderID {
		return ErrBidderCannotBlock
	}
	current, ok := r.CurrentBlocker()
	if !ok || current != playerID {
		return ErrNotYourTurn
	}
	p := g.Players[playerID]
	if p.Tokens.Available(v) <= 0 {
		return ErrTokenUnavailable
	}
	r.StagedToken = v
	return nil
}

// BlockItem spends the staged token to block an item from the drawn pool.
// The blocker stakes a claim on the item; the token is marked used now but
// settled only at scoring.
func (g *Game) BlockItem(playerID, itemID string) error {
	if g.Phase != PhaseBlocking {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID == r.BidderID {
		return ErrBidderCannotBlock
	}
	current, ok := r.CurrentBlocker()
	if !ok || current != playerID {
		return ErrNotYourTurn
	}
	if r.StagedToken == 0 {
		return ErrNoTokenStaged
	}
	if !r.IsDrawn(itemID) {
		return ErrItemUnavailable
	}
	if r.IsBlocked(itemID) {
		return ErrItemBlocked
	}
	if _, owned := g.ItemOwner(itemID); owned {
		return ErrItemOwned
	}

	p := g.Players[playerID]
	if err := p.Tokens.MarkUsed(r.StagedToken); err != nil {
		return err
	}
	r.Blocks[playerID] = BlockRecord{ItemID: itemID, Token: r.StagedToken}
	r.Blocked[itemID] = playerID
	p.Stats.BlocksMade++
	r.StagedToken = 0

	return g.advanceBlockTurn()
}

// SkipBlock passes the current blocker's turn without a wager.
func (g *Game) SkipBlock(playerID string) error {
	if g.Phase != PhaseBlocking {
		return ErrWrongPhase
	}
	r := g.Round
	if playerID == r.BidderID {
		return ErrBidderCannotBlock
	}
	current, ok := r.CurrentBlocker()
	if !ok || current != playerID {
		return ErrNotYourTurn
	}
	r.StagedToken = 0
	return g.advanceBlockTurn()
}

// advanceBlockTurn moves to the next blocker, ending the phase once every
// non-bidder has had exactly one turn.
func (g *Game) advanceBlockTurn() error {
	r := g.Round
	r.BlockTurn++
	if r.BlockTurn < len(r.BlockOrder) {
		return nil
	}
	return g.endBlocking()
}

// endBlocking closes the blocking phase. If the remaining material cannot
// satisfy the bid the round fails immediately and goes straight to scoring.
func (g *Game) endBlocking() error {
	r := g.Round
	if len(g.AvailableForRanking()) < r.Bid {
		r.Outcome = OutcomeFailure
		r.ForcedFail = true
		return g.transition(PhaseScoring)
	}
	return g.transition(PhaseCardSelection)
}
