// Command simulate plays full games between bot agents. It exists to soak
// the rules engine and to measure how the tunings hold up against each
// other over many games.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/prcass/outrank-v5-sub000/internal/app"
	"github.com/prcass/outrank-v5-sub000/internal/bot"
	"github.com/prcass/outrank-v5-sub000/internal/config"
	"github.com/prcass/outrank-v5-sub000/internal/domain"
	"github.com/prcass/outrank-v5-sub000/internal/ports"
	"github.com/prcass/outrank-v5-sub000/internal/ports/postgres"
)

// maxTicksPerGame bounds a single game; a healthy game finishes in well
// under a thousand commands.
const maxTicksPerGame = 50000

func main() {
	v := viper.New()
	v.SetDefault("games", 100)
	v.SetDefault("players", 4)
	v.SetDefault("seed", time.Now().UnixNano())
	v.SetDefault("preset", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("stats_dsn", "")
	v.SetConfigName("simulate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("outrank")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "read config: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	dataDir := v.GetString("data_dir")
	if err := config.LoadCatalog(dataDir + "/catalog.json"); err != nil {
		log.Fatalw("load catalog", "error", err)
	}
	if err := config.LoadRulePresets(dataDir + "/rule_presets.json"); err != nil {
		log.Warnw("load rule presets", "error", err)
	}
	if err := bot.LoadIdentities(dataDir + "/bot_identities.json"); err != nil {
		log.Warnw("load bot identities", "error", err)
	}

	var recorder ports.StatsPort
	if dsn := v.GetString("stats_dsn"); dsn != "" {
		rec, err := postgres.NewRecorder(dsn)
		if err != nil {
			log.Fatalw("connect stats database", "error", err)
		}
		defer rec.Close()
		recorder = rec
	}

	games := v.GetInt("games")
	players := v.GetInt("players")
	seed := v.GetInt64("seed")
	rules := config.GetRulePreset(v.GetString("preset"))

	log.Infow("simulation starting",
		"games", games,
		"players", players,
		"seed", seed,
		"preset", rules.Name,
	)

	// Recording runs off the game loop so a slow database never stalls
	// the simulation.
	queue := app.NewQueue(games)
	defer queue.Close()

	wins := make(map[string]int)
	var totalRounds int
	start := time.Now()

	for i := 0; i < games; i++ {
		gameSeed := seed + int64(i)
		result, err := playOneGame(log, rules, players, gameSeed)
		if err != nil {
			log.Errorw("game failed", "game", i, "seed", gameSeed, "error", err)
			continue
		}
		wins[result.winnerName]++
		totalRounds += result.rounds

		if recorder != nil {
			rec := result.record
			if err := queue.Dispatch(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := recorder.RecordGame(ctx, rec); err != nil {
					log.Warnw("record game", "game_id", rec.GameID, "error", err)
				}
			}); err != nil {
				log.Warnw("dispatch record", "error", err)
			}
		}
	}

	log.Infow("simulation finished",
		"elapsed", time.Since(start),
		"avg_rounds", float64(totalRounds)/float64(games),
	)
	for name, count := range wins {
		log.Infow("result", "player", name, "wins", count, "rate", float64(count)/float64(games))
	}
}

type gameResult struct {
	winnerName string
	rounds     int
	record     ports.GameRecord
}

func playOneGame(log *zap.SugaredLogger, rules domain.RuleConfig, players int, seed int64) (gameResult, error) {
	rng := rand.New(rand.NewSource(seed))
	svc := app.NewService(config.GetCatalog(), rules, nil, rng)

	agents := make([]*bot.Agent, 0, players)
	var ids []string
	names := make(map[string]string)
	for i := 0; i < players; i++ {
		identity := bot.GetBotIdentity(i)
		if identity.UserID == "" {
			// File identities carry no user id until provisioned against
			// a live Nakama; synthesize one for offline play.
			identity.UserID = fmt.Sprintf("sim-%d", i)
		}
		agent, err := bot.NewAgent(identity, rand.New(rand.NewSource(seed+int64(i)+1)))
		if err != nil {
			return gameResult{}, err
		}
		agents = append(agents, agent)
		ids = append(ids, identity.UserID)
		names[identity.UserID] = identity.DisplayName
	}

	startedAt := time.Now().UTC()
	if _, err := svc.StartNewGame(ids, names); err != nil {
		return gameResult{}, err
	}

	for tick := 0; tick < maxTicksPerGame; tick++ {
		if svc.Phase() == domain.PhaseGameEnd {
			break
		}
		for _, agent := range agents {
			if _, err := agent.Act(svc); err != nil {
				return gameResult{}, fmt.Errorf("agent %s: %w", agent.ID, err)
			}
		}
	}

	g := svc.Game()
	if g.Phase != domain.PhaseGameEnd {
		return gameResult{}, fmt.Errorf("game did not finish within %d ticks", maxTicksPerGame)
	}
	if err := g.Verify(); err != nil {
		return gameResult{}, fmt.Errorf("integrity after game: %w", err)
	}

	winner := g.Winner()
	result := gameResult{
		winnerName: names[winner],
		rounds:     g.RoundNum,
		record: ports.GameRecord{
			GameID:     uuid.NewString(),
			RulePreset: rules.Name,
			Rounds:     g.RoundNum,
			StartedAt:  startedAt,
			FinishedAt: time.Now().UTC(),
		},
	}
	for _, id := range g.Seats {
		p, ok := g.Player(id)
		if !ok {
			continue
		}
		result.record.Players = append(result.record.Players, ports.PlayerGameStats{
			PlayerID:     p.ID,
			Name:         p.Name,
			Score:        p.Score,
			TokensHeld:   p.Tokens.Total(),
			ItemsOwned:   p.OwnedCount(),
			BidsWon:      p.Stats.BidsWon,
			RankingsWon:  p.Stats.RankingsWon,
			RankingsLost: p.Stats.RankingsLost,
			BlocksWon:    p.Stats.BlocksWon,
			BlocksLost:   p.Stats.BlocksLost,
			Winner:       p.ID == winner,
		})
	}
	return result, nil
}
