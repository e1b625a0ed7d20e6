package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/prcass/outrank-v5-sub000/internal/domain"
)

// presetFile is the on-disk shape: token denominations are JSON object keys
// and need remapping into the typed ledger allocation.
type presetFile struct {
	Presets []presetEntry `json:"presets"`
}

type presetEntry struct {
	Name              string         `json:"name"`
	Version           int            `json:"version"`
	StartingTokens    map[string]int `json:"starting_tokens"` // "low"/"medium"/"high"
	HandSize          int            `json:"hand_size"`
	MaxBid            int            `json:"max_bid"`
	MaxRounds         int            `json:"max_rounds"`
	WinningScore      int            `json:"winning_score"`
	BlockingOwnership bool           `json:"blocking_ownership"`
	UseOwnedInRanking bool           `json:"use_owned_in_ranking"`
	BonusPerOwnedItem int            `json:"bonus_per_owned_item"`
	BonusPerToken     int            `json:"bonus_per_token"`
}

var tokenNames = map[string]domain.TokenValue{
	"low":    domain.TokenLow,
	"medium": domain.TokenMedium,
	"high":   domain.TokenHigh,
}

var (
	presets     map[string]domain.RuleConfig
	presetsOnce sync.Once
	presetsErr  error
)

// LoadRulePresets loads the named rule presets from the given path. Each
// preset is validated before it is accepted.
func LoadRulePresets(path string) error {
	presetsOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			presetsErr = fmt.Errorf("failed to read rule presets: %w", err)
			return
		}

		var f presetFile
		if err := json.Unmarshal(data, &f); err != nil {
			presetsErr = fmt.Errorf("failed to unmarshal rule presets: %w", err)
			return
		}

		loaded := make(map[string]domain.RuleConfig, len(f.Presets))
		for _, entry := range f.Presets {
			rc, err := entry.toRuleConfig()
			if err != nil {
				presetsErr = fmt.Errorf("preset %q: %w", entry.Name, err)
				return
			}
			loaded[rc.Name] = rc
		}
		presets = loaded
	})
	return presetsErr
}

func (e presetEntry) toRuleConfig() (domain.RuleConfig, error) {
	rc := domain.RuleConfig{
		Name:              e.Name,
		Version:           e.Version,
		StartingTokens:    make(map[domain.TokenValue]int, len(e.StartingTokens)),
		HandSize:          e.HandSize,
		MaxBid:            e.MaxBid,
		MaxRounds:         e.MaxRounds,
		WinningScore:      e.WinningScore,
		BlockingOwnership: e.BlockingOwnership,
		UseOwnedInRanking: e.UseOwnedInRanking,
		BonusPerOwnedItem: e.BonusPerOwnedItem,
		BonusPerToken:     e.BonusPerToken,
	}
	for name, count := range e.StartingTokens {
		v, ok := tokenNames[name]
		if !ok {
			return domain.RuleConfig{}, fmt.Errorf("unknown token denomination %q", name)
		}
		rc.StartingTokens[v] = count
	}
	if err := rc.Validate(); err != nil {
		return domain.RuleConfig{}, err
	}
	return rc, nil
}

// GetRulePreset returns the preset by name. With no presets loaded or an
// unknown name it falls back to the classic defaults.
func GetRulePreset(name string) domain.RuleConfig {
	if presets != nil {
		if rc, ok := presets[name]; ok {
			return rc
		}
	}
	return domain.DefaultRules()
}

// RulePresetNames lists the loaded preset names.
func RulePresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
