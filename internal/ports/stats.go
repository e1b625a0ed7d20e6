package ports

import (
	"context"
	"time"
)

// PlayerGameStats is one player's line in a completed game record.
type PlayerGameStats struct {
	PlayerID     string
	Name         string
	Score        int
	TokensHeld   int
	ItemsOwned   int
	BidsWon      int
	RankingsWon  int
	RankingsLost int
	BlocksWon    int
	BlocksLost   int
	Winner       bool
}

// GameRecord summarizes a finished game for history and balance analysis.
type GameRecord struct {
	GameID     string
	RulePreset string
	Rounds     int
	StartedAt  time.Time
	FinishedAt time.Time
	Players    []PlayerGameStats
}

// StatsPort persists completed-game records. Implementations must tolerate
// being called once per game at most.
type StatsPort interface {
	RecordGame(ctx context.Context, rec GameRecord) error
}
