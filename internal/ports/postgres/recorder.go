// Package postgres persists completed-game history through GORM.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

// gameRow is the games table.
type gameRow struct {
	ID         uint   `gorm:"primaryKey"`
	GameID     string `gorm:"uniqueIndex;not null"`
	RulePreset string `gorm:"not null"`
	Rounds     int    `gorm:"not null"`
	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time

	Players []playerRow `gorm:"foreignKey:GameRowID"`
}

func (gameRow) TableName() string { return "games" }

// playerRow is one player's line of a finished game.
type playerRow struct {
	ID           uint   `gorm:"primaryKey"`
	GameRowID    uint   `gorm:"index;not null"`
	PlayerID     string `gorm:"index;not null"`
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

func (playerRow) TableName() string { return "game_players" }

// Recorder implements ports.StatsPort on a PostgreSQL database.
type Recorder struct {
	db *gorm.DB
}

var _ ports.StatsPort = (*Recorder)(nil)

// NewRecorder connects to the database named by dsn and migrates the
// history tables.
func NewRecorder(dsn string) (*Recorder, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open stats database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&gameRow{}, &playerRow{}); err != nil {
		return nil, fmt.Errorf("migrate stats tables: %w", err)
	}

	return &Recorder{db: db}, nil
}

// NewRecorderWithDB wraps an existing GORM handle. Used by tests.
func NewRecorderWithDB(db *gorm.DB) (*Recorder, error) {
	if err := db.AutoMigrate(&gameRow{}, &playerRow{}); err != nil {
		return nil, fmt.Errorf("migrate stats tables: %w", err)
	}
	return &Recorder{db: db}, nil
}

// RecordGame writes one finished game and its player lines in a single
// transaction. Re-recording the same GameID is a no-op.
func (r *Recorder) RecordGame(ctx context.Context, rec ports.GameRecord) error {
	if rec.GameID == "" {
		return fmt.Errorf("record game: empty game id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing gameRow
		err := tx.Where("game_id = ?", rec.GameID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		row := newGameRow(rec)
		return tx.Create(&row).Error
	})
}

func newGameRow(rec ports.GameRecord) gameRow {
	row := gameRow{
		GameID:     rec.GameID,
		RulePreset: rec.RulePreset,
		Rounds:     rec.Rounds,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	for _, p := range rec.Players {
		row.Players = append(row.Players, playerRow{
			PlayerID:     p.PlayerID,
			Name:         p.Name,
			Score:        p.Score,
			TokensHeld:   p.TokensHeld,
			ItemsOwned:   p.ItemsOwned,
			BidsWon:      p.BidsWon,
			RankingsWon:  p.RankingsWon,
			RankingsLost: p.RankingsLost,
			BlocksWon:    p.BlocksWon,
			BlocksLost:   p.BlocksLost,
			Winner:       p.Winner,
		})
	}
	return row
}

// PlayerSummary aggregates a player's record across all stored games.
type PlayerSummary struct {
	PlayerID   string
	Games      int
	Wins       int
	TotalScore int
}

// Summary returns the lifetime record for one player.
func (r *Recorder) Summary(ctx context.Context, playerID string) (PlayerSummary, error) {
	var out PlayerSummary
	err := r.db.WithContext(ctx).Raw(`
        SELECT
            COUNT(*) AS games,
            SUM(CASE WHEN winner THEN 1 ELSE 0 END) AS wins,
            SUM(score) AS total_score
        FROM game_players
        WHERE player_id = ?`,
		playerID,
	).Row().Scan(&out.Games, &out.Wins, &out.TotalScore)
	if err != nil {
		return PlayerSummary{}, err
	}
	out.PlayerID = playerID
	return out, nil
}

// Close releases the underlying connection pool.
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
