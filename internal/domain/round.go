package domain

// Outcome is the result of a round's ranking attempt.
type Outcome string

const (
	OutcomePending Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// BlockRecord captures one blocker's wager for the round.
type BlockRecord struct {
	ItemID string
	Token  TokenValue
}

// Auction is the bidding sub-state of a round.
type Auction struct {
	HighBid    int
	HighBidder string
	Passed     map[string]bool
	Restarts   int
}

// Round holds all round-scoped state. It is created at category selection
// and fully retired at round end; only Player aggregates survive it.
type Round struct {
	Number    int
	Category  string
	Challenge Challenge

	Drawn   []string          // drawn item ids, in draw order
	Blocked map[string]string // item id -> blocker id

	Auction  Auction
	BidderID string
	Bid      int

	Blocks      map[string]BlockRecord // blocker id -> wager
	BlockOrder  []string               // non-bidders, ascending score
	BlockTurn   int
	StagedToken TokenValue // current blocker's selected denomination, 0 = none

	Selected      []string // bidder's ranking material, in pick order
	ConsumedOwned []string // owned items pulled in as material
	Order         []string // submitted candidate order

	RevealIndex int
	BreakIndex  int // first sequence break, -1 = none
	Outcome     Outcome
	ForcedFail  bool // too few unblocked items to satisfy the bid
	Scored      bool
}

// NewRound creates the round record for the given number, category and
// challenge.
func NewRound(number int, category string, challenge Challenge, drawn []string) *Round {
	return &Round{
		Number:      number,
		Category:    category,
		Challenge:   challenge,
		Drawn:       drawn,
		Blocked:     make(map[string]string),
		Auction:     Auction{Passed: make(map[string]bool)},
		Blocks:      make(map[string]BlockRecord),
		RevealIndex: 0,
		BreakIndex:  -1,
	}
}

// IsBlocked reports whether the item was blocked this round.
func (r *Round) IsBlocked(itemID string) bool {
	_, ok := r.Blocked[itemID]
	return ok
}

// IsDrawn reports whether the item is part of this round's drawn hand.
func (r *Round) IsDrawn(itemID string) bool {
	for _, id := range r.Drawn {
		if id == itemID {
			return true
		}
	}
	return false
}

// IsSelected reports whether the bidder has picked the item as material.
func (r *Round) IsSelected(itemID string) bool {
	for _, id := range r.Selected {
		if id == itemID {
			return true
		}
	}
	return false
}

// CurrentBlocker returns the player whose blocking turn it is.
func (r *Round) CurrentBlocker() (string, bool) {
	if r.BlockTurn < 0 || r.BlockTurn >= len(r.BlockOrder) {
		return "", false
	}
	return r.BlockOrder[r.BlockTurn], true
}
