package decklist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

func resolveCatalog() *cards.Catalog {
	return cards.NewCatalog([]*cards.Card{
		{Name: "Shock", PrettyName: "Shock", SetCode: "M21", SetNumber: 159, MtgaID: 1, Collectible: true, Rarity: cards.RarityCommon},
		{Name: "Shock", PrettyName: "Shock", SetCode: "M21", SetNumber: 159, MtgaID: 2, Collectible: true, Rarity: cards.RarityCommon},
		{Name: "Shock", PrettyName: "Shock", SetCode: "STA", SetNumber: 44, MtgaID: 3, Collectible: true, Rarity: cards.RarityUncommon},
		{Name: "Ox of Agonas", PrettyName: "Ox of Agonas", SetCode: "THB", SetNumber: 147, MtgaID: 4, Collectible: true, Rarity: cards.RarityMythicRare},
		{Name: "Ox of Agonas", PrettyName: "Ox of Agonas", SetCode: "THB", SetNumber: 147, MtgaID: 5, Collectible: true, Rarity: cards.RarityMythicRare, IsRebalanced: true},
		{Name: "Island", PrettyName: "島", SetCode: "NEO", SetNumber: 294, MtgaID: 6, Collectible: true, Rarity: cards.RarityBasic},
	})
}

func TestLookup(t *testing.T) {
	catalog := resolveCatalog()

	tests := []struct {
		key  string
		want int
	}{
		{"Shock (M21) 159", 2}, // last of two identical printings
		{"Shock (STA) 44", 3},
		{"Shock", 3},
		{"Ox of Agonas (THB) 147", 4},
		{"A-Ox of Agonas (THB) 147", 5},
		{"Ox of Agonas (THB) A-147", 5},
		{"A-Ox of Agonas", 5},
		{"島 (NEO) 294", 6},
		{"Island (NEO) 294", 6},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			card, err := Lookup(catalog, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, card.MtgaID)
		})
	}

	_, err := Lookup(catalog, "Shock (NEO) 1")
	assert.True(t, errors.Is(err, cards.ErrCardNotFound))
}

func TestResolve(t *testing.T) {
	c := NewCards()
	c.Add("Shock (STA) 44", 2)
	c.Add("Lightning Bolt (M10) 146", 4)
	c.Set("Ox of Agonas (THB) 147", 0)
	c.Add("A-Ox of Agonas (THB) 147", 1)

	resolved, misses := Resolve(resolveCatalog(), c)

	require.Len(t, resolved, 3)
	assert.Equal(t, 3, resolved[0].MtgaID)
	assert.Same(t, resolved[0], resolved[1])
	assert.Equal(t, 5, resolved[2].MtgaID)
	assert.Equal(t, []string{"Lightning Bolt (M10) 146"}, misses)
}

func TestResolve_RoundTripsPool(t *testing.T) {
	catalog := resolveCatalog()
	pool := catalog.Query(cards.Filter{Set: "STA"})
	pool = append(pool, pool...)

	resolved, misses := Resolve(catalog, FromCards(pool, false))
	assert.Empty(t, misses)
	assert.Equal(t, pool, resolved)
}
