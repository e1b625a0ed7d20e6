package app

import "github.com/prcass/outrank-v5-sub000/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventGameStarted     EventKind = "game_started"
	EventCategoryChosen  EventKind = "category_chosen"
	EventHandDrawn       EventKind = "hand_drawn"
	EventBidPlaced       EventKind = "bid_placed"
	EventBidPassed       EventKind = "bid_passed"
	EventBiddingRestart  EventKind = "bidding_restarted"
	EventAuctionWon      EventKind = "auction_won"
	EventTokenStaged     EventKind = "token_staged"
	EventItemBlocked     EventKind = "item_blocked"
	EventBlockSkipped    EventKind = "block_skipped"
	EventSelectionOpen   EventKind = "selection_open"
	EventItemSelected    EventKind = "item_selected"
	EventItemDeselected  EventKind = "item_deselected"
	EventRankingLocked   EventKind = "ranking_locked"
	EventItemRevealed    EventKind = "item_revealed"
	EventRoundScored     EventKind = "round_scored"
	EventRoundContinued  EventKind = "round_continued"
	EventGameEnded       EventKind = "game_ended"
	EventIntegrityFailed EventKind = "integrity_failed"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
	Owner  bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	Phase   domain.Phase
	Players []string
	Rules   string
}

type CategoryChosenPayload struct {
	Category  string
	Metric    string
	Direction domain.Direction
	Label     string
}

// HandDrawnPayload is broadcast: drawn items are public information in this
// game, unlike a card hand.
type HandDrawnPayload struct {
	Round int
	Items []string
}

type BidPlacedPayload struct {
	UserID string
	Bid    int
}

type BidPassedPayload struct {
	UserID string
}

type BiddingRestartPayload struct {
	Restarts int
}

type AuctionWonPayload struct {
	BidderID   string
	Bid        int
	BlockOrder []string
}

type TokenStagedPayload struct {
	UserID string
	Token  domain.TokenValue
}

type ItemBlockedPayload struct {
	UserID      string
	ItemID      string
	Token       domain.TokenValue
	NextBlocker string // empty when blocking is over
}

type BlockSkippedPayload struct {
	UserID      string
	NextBlocker string
}

type SelectionOpenPayload struct {
	BidderID  string
	Bid       int
	Available []string
}

type ItemSelectedPayload struct {
	ItemID   string
	Selected []string
}

type ItemDeselectedPayload struct {
	ItemID   string
	Selected []string
}

type RankingLockedPayload struct {
	BidderID string
	Order    []string
}

type ItemRevealedPayload struct {
	Step domain.RevealStep
}

type RoundScoredPayload struct {
	Settlement domain.Settlement
	Standings  []domain.Standing
}

type RoundContinuedPayload struct {
	Round     int
	Phase     domain.Phase
	Standings []domain.Standing
}

type GameEndedPayload struct {
	WinnerID       string
	Standings      []domain.Standing
	BalanceChanges map[string]int64 // gold deltas settled for online play
}

type IntegrityFailedPayload struct {
	Check  string
	Detail string
}
