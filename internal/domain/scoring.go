package domain

// TokenTransfer records one wager settlement for reporting.
type TokenTransfer struct {
	From  string
	To    string // empty when the blocker keeps the token
	Token TokenValue
}

// OwnershipGrant records an item becoming a blocker's property.
type OwnershipGrant struct {
	PlayerID string
	ItemID   string
}

// Settlement summarizes what Score did, for events and logs.
type Settlement struct {
	RoundNumber   int
	Outcome       Outcome
	BidderID      string
	Bid           int
	PointsToBid   int
	BlockerPoints map[string]int
	Transfers     []TokenTransfer
	Grants        []OwnershipGrant
	Repeated      bool // round was already scored; nothing happened
}

// Score settles a completed round exactly once. A repeat invocation is a
// no-op reporting Repeated. On success the bidder scores the bid and every
// wagered token transfers to the bidder; on failure each blocker keeps the
// token, scores its denomination and, when the ownership rule is on, takes
// the blocked item permanently.
func (g *Game) Score() (Settlement, error) {
	if g.Phase != PhaseScoring {
		return Settlement{}, ErrWrongPhase
	}
	r := g.Round
	if r.Scored {
		return Settlement{RoundNumber: r.Number, Outcome: r.Outcome, Repeated: true}, nil
	}
	bidder, ok := g.Players[r.BidderID]
	if !ok {
		return Settlement{}, &IntegrityError{Check: "scoring", Detail: "round has no valid bidder"}
	}
	if r.Outcome == OutcomePending {
		return Settlement{}, &IntegrityError{Check: "scoring", Detail: "scoring reached without an outcome"}
	}

	s := Settlement{
		RoundNumber:   r.Number,
		Outcome:       r.Outcome,
		BidderID:      r.BidderID,
		Bid:           r.Bid,
		BlockerPoints: make(map[string]int),
	}

	switch r.Outcome {
	case OutcomeSuccess:
		bidder.Score += r.Bid
		s.PointsToBid = r.Bid
		bidder.Stats.RankingsWon++
		for blockerID, rec := range r.Blocks {
			blocker := g.Players[blockerID]
			if err := blocker.Tokens.Remove(rec.Token); err != nil {
				return Settlement{}, &IntegrityError{Check: "token_transfer", Detail: err.Error()}
			}
			bidder.Tokens.Add(rec.Token)
			blocker.Stats.TokensLost++
			blocker.Stats.BlocksLost++
			bidder.Stats.TokensGained++
			s.Transfers = append(s.Transfers, TokenTransfer{From: blockerID, To: r.BidderID, Token: rec.Token})
		}

	case OutcomeFailure:
		bidder.Stats.RankingsLost++
		for blockerID, rec := range r.Blocks {
			blocker := g.Players[blockerID]
			blocker.Score += int(rec.Token)
			blocker.Stats.BlocksWon++
			s.BlockerPoints[blockerID] += int(rec.Token)
			s.Transfers = append(s.Transfers, TokenTransfer{From: blockerID, Token: rec.Token})
			if g.Rules.BlockingOwnership {
				if err := g.grantOwnership(blockerID, r.Category, rec.ItemID); err != nil {
					return Settlement{}, err
				}
				s.Grants = append(s.Grants, OwnershipGrant{PlayerID: blockerID, ItemID: rec.ItemID})
			}
		}
	}

	r.Scored = true
	g.RoundsScored++

	if err := g.Verify(); err != nil {
		return Settlement{}, err
	}
	if err := g.transition(PhaseRoundEnd); err != nil {
		return Settlement{}, err
	}
	return s, nil
}
