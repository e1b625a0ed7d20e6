package domain

import "errors"

// RuleConfig is a named, versioned set of game knobs. It is chosen once at
// game start and immutable for the game's duration.
type RuleConfig struct {
	Name    string `json:"name"`
	Version int    `json:"version"`

	// StartingTokens is the per-denomination allocation each player begins
	// the game with.
	StartingTokens map[TokenValue]int `json:"starting_tokens"`

	HandSize     int `json:"hand_size"`     // items drawn per round
	MaxBid       int `json:"max_bid"`       // auction cap
	MaxRounds    int `json:"max_rounds"`    // game ends after this many rounds
	WinningScore int `json:"winning_score"` // game ends when any score reaches this

	// BlockingOwnership grants a blocker permanent ownership of their
	// blocked item when the bidder fails.
	BlockingOwnership bool `json:"blocking_ownership"`
	// UseOwnedInRanking lets the bidder rank items they own, consuming them.
	UseOwnedInRanking bool `json:"use_owned_in_ranking"`

	// One-time end-of-game bonuses.
	BonusPerOwnedItem int `json:"bonus_per_owned_item"`
	BonusPerToken     int `json:"bonus_per_token"`
}

// DefaultRules returns the classic preset.
func DefaultRules() RuleConfig {
	return RuleConfig{
		Name:    "classic",
		Version: 1,
		StartingTokens: map[TokenValue]int{
			TokenLow:    1,
			TokenMedium: 1,
			TokenHigh:   1,
		},
		HandSize:          10,
		MaxBid:            10,
		MaxRounds:         6,
		WinningScore:      30,
		BlockingOwnership: true,
		UseOwnedInRanking: true,
		BonusPerOwnedItem: 1,
		BonusPerToken:     1,
	}
}

// Validate checks the knobs are internally consistent.
func (rc RuleConfig) Validate() error {
	if rc.HandSize <= 0 {
		return errors.New("hand size must be positive")
	}
	if rc.MaxBid <= 0 || rc.MaxBid > rc.HandSize {
		return errors.New("max bid must be in 1..hand size")
	}
	if rc.MaxRounds <= 0 {
		return errors.New("max rounds must be positive")
	}
	if rc.WinningScore <= 0 {
		return errors.New("winning score must be positive")
	}
	total := 0
	for _, n := range rc.StartingTokens {
		if n < 0 {
			return errors.New("starting token count cannot be negative")
		}
		total += n
	}
	if total == 0 {
		return errors.New("players need at least one starting token")
	}
	return nil
}
