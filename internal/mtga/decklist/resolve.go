package decklist

import (
	"fmt"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// Lookup finds the catalog card for a key. When several printings match,
// the last one in catalog order wins. Name-only keys match any set.
func Lookup(catalog *cards.Catalog, key string) (*cards.Card, error) {
	pk := ParseKey(key)

	f := cards.Filter{
		PrettyName:   pk.Name,
		Set:          pk.Set,
		SetNumber:    pk.Number,
		IsRebalanced: cards.Bool(pk.Rebalanced),
	}
	matches := catalog.Query(f)
	if len(matches) == 0 {
		f.PrettyName, f.Name = "", pk.Name
		matches = catalog.Query(f)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", key, cards.ErrCardNotFound)
	}
	return matches[len(matches)-1], nil
}

// Resolve materializes count copies of the catalog card behind every key,
// in key order. Keys that match no card are returned as misses; they are
// not an error.
func Resolve(catalog *cards.Catalog, c *Cards) (resolved []*cards.Card, misses []string) {
	for _, key := range c.keys {
		n := c.counts[key]
		if n <= 0 {
			continue
		}
		card, err := Lookup(catalog, key)
		if err != nil {
			misses = append(misses, key)
			continue
		}
		for i := 0; i < n; i++ {
			resolved = append(resolved, card)
		}
	}
	return resolved, misses
}
