package postgres

import (
	"testing"
	"time"

	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

func TestNewGameRowMapsAllPlayerFields(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := ports.GameRecord{
		GameID:     "g-1",
		RulePreset: "classic",
		Rounds:     6,
		StartedAt:  started,
		FinishedAt: started.Add(20 * time.Minute),
		Players: []ports.PlayerGameStats{
			{
				PlayerID:     "p1",
				Name:         "Alice",
				Score:        31,
				TokensHeld:   4,
				ItemsOwned:   2,
				BidsWon:      3,
				RankingsWon:  2,
				RankingsLost: 1,
				BlocksWon:    1,
				BlocksLost:   0,
				Winner:       true,
			},
			{PlayerID: "p2", Name: "Bob", Score: 12},
		},
	}

	row := newGameRow(rec)

	if row.GameID != "g-1" || row.RulePreset != "classic" || row.Rounds != 6 {
		t.Fatalf("game columns = %q/%q/%d", row.GameID, row.RulePreset, row.Rounds)
	}
	if !row.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v", row.StartedAt)
	}
	if len(row.Players) != 2 {
		t.Fatalf("player rows = %d, want 2", len(row.Players))
	}

	p := row.Players[0]
	if p.PlayerID != "p1" || p.Name != "Alice" || !p.Winner {
		t.Fatalf("winner row = %+v", p)
	}
	if p.Score != 31 || p.TokensHeld != 4 || p.ItemsOwned != 2 {
		t.Fatalf("score columns = %d/%d/%d", p.Score, p.TokensHeld, p.ItemsOwned)
	}
	if p.BidsWon != 3 || p.RankingsWon != 2 || p.RankingsLost != 1 || p.BlocksWon != 1 || p.BlocksLost != 0 {
		t.Fatalf("stat columns = %+v", p)
	}
	if row.Players[1].Winner {
		t.Fatal("loser row marked winner")
	}
}
