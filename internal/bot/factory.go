package bot

import (
	"fmt"
	"math/rand"
)

// Difficulty names match the bot identity files.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// NewBrain creates a brain for the given difficulty.
func NewBrain(difficulty string, rng *rand.Rand) (Brain, error) {
	switch difficulty {
	case DifficultyEasy:
		return NewStandardBrain(CautiousTuning, rng), nil
	case DifficultyMedium, "":
		return NewStandardBrain(DefaultTuning, rng), nil
	case DifficultyHard:
		return NewStandardBrain(AggressiveTuning, rng), nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty: %s", difficulty)
	}
}

// NewAgent builds an agent with a brain for the identity's difficulty.
func NewAgent(identity BotIdentity, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(identity.Difficulty, rng)
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	return &Agent{ID: identity.UserID, Name: name, Strategy: brain}, nil
}
