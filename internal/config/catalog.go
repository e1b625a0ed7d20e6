package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/prcass/outrank-v5-sub000/internal/domain"
)

type catalogFile struct {
	Items      []itemEntry      `json:"items"`
	Challenges []challengeEntry `json:"challenges"`
}

type itemEntry struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Metrics  map[string]float64 `json:"metrics"`
}

type challengeEntry struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Metric    string `json:"metric"`
	Direction string `json:"direction"` // "asc" or "desc"
	Label     string `json:"label"`
}

var (
	catalog     *domain.Catalog
	catalogOnce sync.Once
	catalogErr  error
)

// LoadCatalog loads the item catalog from the given path. Challenges must
// reference a category that has items and a direction of asc or desc.
func LoadCatalog(path string) error {
	catalogOnce.Do(func() {
		catalog, catalogErr = readCatalog(path)
	})
	return catalogErr
}

func readCatalog(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("catalog has no items")
	}

	categories := make(map[string]bool)
	items := make([]domain.Item, 0, len(f.Items))
	for _, entry := range f.Items {
		if entry.ID == "" || entry.Category == "" {
			return nil, fmt.Errorf("catalog item %q needs an id and a category", entry.ID)
		}
		categories[entry.Category] = true
		items = append(items, domain.Item{
			ID:       entry.ID,
			Name:     entry.Name,
			Category: entry.Category,
			Metrics:  entry.Metrics,
		})
	}

	challenges := make([]domain.Challenge, 0, len(f.Challenges))
	for _, entry := range f.Challenges {
		if !categories[entry.Category] {
			return nil, fmt.Errorf("challenge %q references empty category %q", entry.ID, entry.Category)
		}
		var dir domain.Direction
		switch entry.Direction {
		case "asc":
			dir = domain.Ascending
		case "desc":
			dir = domain.Descending
		default:
			return nil, fmt.Errorf("challenge %q has direction %q, want asc or desc", entry.ID, entry.Direction)
		}
		challenges = append(challenges, domain.Challenge{
			ID:        entry.ID,
			Category:  entry.Category,
			Metric:    entry.Metric,
			Direction: dir,
			Label:     entry.Label,
		})
	}
	if len(challenges) == 0 {
		return nil, fmt.Errorf("catalog has no challenges")
	}

	return domain.NewCatalog(items, challenges), nil
}

// GetCatalog returns the loaded catalog, or nil before LoadCatalog.
func GetCatalog() *domain.Catalog {
	return catalog
}
