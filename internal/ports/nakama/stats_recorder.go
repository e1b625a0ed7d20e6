package nakama

import (
	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prcass/outrank-v5-sub000/internal/config"
	"github.com/prcass/outrank-v5-sub000/internal/ports"
	"github.com/prcass/outrank-v5-sub000/internal/ports/postgres"
)

// newStatsRecorder wires the optional game-history database. A missing or
// unreachable DSN disables recording without failing the match.
func newStatsRecorder(logger runtime.Logger) ports.StatsPort {
	gc := config.GetGameConfig()
	if gc == nil || gc.StatsDSN == "" {
		return nil
	}
	rec, err := postgres.NewRecorder(gc.StatsDSN)
	if err != nil {
		logger.Warn("Stats recorder disabled: %v", err)
		return nil
	}
	return rec
}
