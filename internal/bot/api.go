package bot

import (
	"github.com/prcass/outrank-v5-sub000/internal/domain"
)

// ActionKind identifies the command an agent wants to issue.
type ActionKind string

const (
	ActNone           ActionKind = "none" // nothing to do this tick
	ActSelectCategory ActionKind = "select_category"
	ActBid            ActionKind = "bid"
	ActPass           ActionKind = "pass"
	ActStageToken     ActionKind = "stage_token"
	ActBlock          ActionKind = "block"
	ActSkipBlock      ActionKind = "skip_block"
	ActSelectItem     ActionKind = "select_item"
	ActSubmitRanking  ActionKind = "submit_ranking"
	ActReveal         ActionKind = "reveal"
	ActContinue       ActionKind = "continue"
)

// Action is the decision made by a Brain, translated into exactly one
// command by the Agent.
type Action struct {
	Kind     ActionKind
	Category string
	Token    domain.TokenValue
	ItemID   string
	Order    []string
}

// Brain is the interface all bot strategies implement. Decide inspects the
// game read-only and returns the action the player should take now, or
// ActNone when it is not the player's turn to do anything.
type Brain interface {
	Decide(game *domain.Game, playerID string) (Action, error)
}
