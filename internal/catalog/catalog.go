// internal/catalog/catalog.go
package catalog

import (
	"errors"
	"sort"

	"mcp-nutricalci/internal/models"
)

var ErrDishNotFound = errors.New("dish not found")

// Catalog is the read-only dish table. It is safe to share between sessions
// because nothing mutates it after New returns.
type Catalog struct {
	entries []models.DishEntry
	index   map[string]int
}

// New builds a catalog from entries. The first entry for a name wins; later
// duplicates are ignored and reported through the second return value.
func New(entries []models.DishEntry) (*Catalog, int) {
	c := &Catalog{index: make(map[string]int, len(entries))}
	duplicates := 0
	for _, e := range entries {
		if _, exists := c.index[e.Name]; exists {
			duplicates++
			continue
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, duplicates
}

// Lookup returns the per-100g nutrients for name. Matching is exact.
func (c *Catalog) Lookup(name string) (models.NutrientVector, error) {
	i, ok := c.index[name]
	if !ok {
		return models.NutrientVector{}, ErrDishNotFound
	}
	return c.entries[i].PerHundredGrams, nil
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Names returns every dish name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
