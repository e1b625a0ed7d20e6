package domain

import "errors"

// Rejected-command errors. These report caller-correctable conditions; the
// game state is unchanged when one is returned.
var (
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrUnknownPlayer      = errors.New("player not found")
	ErrUnknownItem        = errors.New("item not found")
	ErrUnknownCategory    = errors.New("category not found")
	ErrTooFewPlayers      = errors.New("not enough players to start")
	ErrAlreadyPassed      = errors.New("player has already passed")
	ErrBidCapReached      = errors.New("bid cap reached")
	ErrHighBidderPass     = errors.New("highest bidder cannot pass")
	ErrNotYourTurn        = errors.New("not this player's turn")
	ErrBidderCannotBlock  = errors.New("bidder cannot block")
	ErrNoTokenStaged      = errors.New("no blocking token selected")
	ErrTokenUnavailable   = errors.New("token not available")
	ErrItemBlocked        = errors.New("item already blocked this round")
	ErrItemOwned          = errors.New("item is owned")
	ErrItemUnavailable    = errors.New("item not available for selection")
	ErrSelectionFull      = errors.New("selection already matches the bid")
	ErrItemNotSelected    = errors.New("item is not selected")
	ErrIncompleteRanking  = errors.New("ranking does not match the selected items")
	ErrNotBidder          = errors.New("only the bidder may do this")
	ErrCategoryExhausted  = errors.New("category has no drawable items left")
	ErrRevealFinished     = errors.New("all items already revealed")
)
