package regions

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNotADestination = errors.New("region is not a valid destination")

// Tour is a run through the catalog: regions are cleared one at a time and
// the next region is picked among the neighbors of the last one.
type Tour struct {
	Current string
	Beaten  []string
}

// Clearance describes what happens after the current region is cleared.
type Clearance struct {
	Region   string   `json:"region"`
	Champion bool     `json:"champion"`
	Next     string   `json:"next,omitempty"`
	Choices  []string `json:"choices,omitempty"`
}

func NewTour(c *Catalog, start string) (*Tour, error) {
	if start == "" {
		start = c.Start
	}
	if _, err := c.Get(start); err != nil {
		return nil, err
	}
	return &Tour{Current: start}, nil
}

func (t *Tour) HasBeaten(key string) bool {
	return slices.Contains(t.Beaten, key)
}

func (t *Tour) Champion(c *Catalog) bool {
	for _, key := range c.order {
		if !t.HasBeaten(key) {
			return false
		}
	}
	return true
}

// Clear marks the current region as beaten. When exactly one neighbor is
// left unbeaten the tour moves there on its own.
func (t *Tour) Clear(c *Catalog) Clearance {
	cleared := t.Current
	if !t.HasBeaten(cleared) {
		t.Beaten = append(t.Beaten, cleared)
	}
	clearance := Clearance{Region: cleared}

	if t.Champion(c) {
		clearance.Champion = true
		return clearance
	}

	adjacent := t.unbeatenNeighbors(c)
	if len(adjacent) == 1 {
		clearance.Next = adjacent[0]
		t.Current = adjacent[0]
		return clearance
	}

	clearance.Choices = t.Destinations(c)
	return clearance
}

// Destinations lists the regions the tour may travel to: unbeaten neighbors
// of the current region, or every unbeaten region once the neighborhood is
// exhausted.
func (t *Tour) Destinations(c *Catalog) []string {
	if adjacent := t.unbeatenNeighbors(c); len(adjacent) > 0 {
		return adjacent
	}
	var rest []string
	for _, key := range c.order {
		if key != t.Current && !t.HasBeaten(key) {
			rest = append(rest, key)
		}
	}
	return rest
}

func (t *Tour) Travel(c *Catalog, key string) error {
	if _, err := c.Get(key); err != nil {
		return err
	}
	if !slices.Contains(t.Destinations(c), key) {
		return fmt.Errorf("%w: %q", ErrNotADestination, key)
	}
	t.Current = key
	return nil
}

func (t *Tour) unbeatenNeighbors(c *Catalog) []string {
	region, err := c.Get(t.Current)
	if err != nil {
		return nil
	}
	var keys []string
	for _, adj := range region.Adjacent {
		if !t.HasBeaten(adj) {
			keys = append(keys, adj)
		}
	}
	return keys
}
