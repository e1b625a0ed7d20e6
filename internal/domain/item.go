package domain

import "sort"

// Direction declares how a challenge orders its items.
type Direction string

const (
	// Ascending requires each revealed item's metric to be >= the previous one.
	Ascending Direction = "ascending"
	// Descending requires each revealed item's metric to be <= the previous one.
	Descending Direction = "descending"
)

// Item is a rankable card belonging to exactly one category. Metrics holds
// the statistical values challenges rank by, keyed by metric id.
type Item struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Metric returns the item's value for the given metric key.
func (i *Item) Metric(key string) (float64, bool) {
	v, ok := i.Metrics[key]
	return v, ok
}

// Challenge defines the canonical ordering for a round: a category, the
// metric to rank by, and the required direction. Label is display text only
// and is never used to infer direction.
type Challenge struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Metric    string    `json:"metric"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
}

// Catalog is the full set of items and challenges available to a game.
type Catalog struct {
	items      map[string]*Item
	byCategory map[string][]*Item
	challenges map[string][]Challenge
}

// NewCatalog indexes the given items and challenges.
func NewCatalog(items []Item, challenges []Challenge) *Catalog {
	c := &Catalog{
		items:      make(map[string]*Item, len(items)),
		byCategory: make(map[string][]*Item),
		challenges: make(map[string][]Challenge),
	}
	for i := range items {
		it := items[i]
		c.items[it.ID] = &it
		c.byCategory[it.Category] = append(c.byCategory[it.Category], &it)
	}
	for _, ch := range challenges {
		c.challenges[ch.Category] = append(c.challenges[ch.Category], ch)
	}
	return c
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// ItemsFor returns all items in a category.
func (c *Catalog) ItemsFor(category string) []*Item {
	return c.byCategory[category]
}

// ChallengesFor returns all challenges defined for a category.
func (c *Catalog) ChallengesFor(category string) []Challenge {
	return c.challenges[category]
}

// Categories returns the ids of all categories that have both items and at
// least one challenge, sorted for deterministic iteration.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.byCategory))
	for cat := range c.byCategory {
		if len(c.challenges[cat]) > 0 {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}
