package decklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

func repeat(c *cards.Card, n int) []*cards.Card {
	out := make([]*cards.Card, n)
	for i := range out {
		out[i] = c
	}
	return out
}

var (
	islandNEO = &cards.Card{PrettyName: "Island", SetCode: "NEO", SetNumber: 1}
	shockM21  = &cards.Card{PrettyName: "Shock", SetCode: "M21", SetNumber: 159}
	wakWak    = &cards.Card{PrettyName: "Island of Wak-Wak", SetCode: "MIR", SetNumber: 65}
)

func TestValidate_BasicLandAllowlist(t *testing.T) {
	pool := repeat(islandNEO, 3)
	decklist := "Deck\n4 Island (NEO) 1\n"

	strict := NewReconciler(nil, EnglishHeaders)
	invalid := strict.Validate(decklist, pool)
	assert.Equal(t, []string{"Island"}, invalid.Keys())
	assert.Equal(t, 1, invalid.Get("Island"))

	assert.Zero(t, DefaultReconciler().Validate(decklist, pool).Len())
}

func TestValidate(t *testing.T) {
	pool := append(repeat(shockM21, 2), wakWak)

	tests := []struct {
		name     string
		decklist string
		want     map[string]int
	}{
		{"satisfiable", "Deck\n2 Shock (M21) 159\n1 Island of Wak-Wak (MIR) 65\n", map[string]int{}},
		{"excess", "Deck\n3 Shock (M21) 159\n", map[string]int{"Shock": 1}},
		{"absent", "Deck\n2 Lightning Bolt (M10) 146\n", map[string]int{"Lightning Bolt": 2}},
		{"deck and sideboard summed", "Deck\n2 Shock (M21) 159\nSideboard\n1 Shock (M21) 159\n", map[string]int{"Shock": 1}},
		{"other printing counts by name", "Deck\n2 Shock (STA) 44\n", map[string]int{}},
		{"basic lands exempt", "Deck\n20 Mountain (M21) 271\n17 山\n", map[string]int{}},
	}

	r := DefaultReconciler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invalid := r.Validate(tt.decklist, pool)
			got := map[string]int{}
			for _, k := range invalid.Keys() {
				got[k] = invalid.Get(k)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripInvalid_SideboardFirst(t *testing.T) {
	deck := NewCards()
	sideboard := NewCards()
	sideboard.Add("Foo (X) 1", 2)
	invalid := NewCards()
	invalid.Add("Foo", 2)

	StripInvalid(deck, sideboard, invalid)

	assert.False(t, sideboard.Has("Foo (X) 1"))
	assert.Zero(t, invalid.Len())
	assert.Zero(t, deck.Len())
}

func TestStripInvalid_FallsBackToDeck(t *testing.T) {
	deck := NewCards()
	deck.Add("Foo (X) 1", 3)
	deck.Add("Bar (X) 2", 1)
	sideboard := NewCards()
	sideboard.Add("Foo (X) 1", 1)
	invalid := NewCards()
	invalid.Add("Foo", 3)

	StripInvalid(deck, sideboard, invalid)

	assert.False(t, sideboard.Has("Foo (X) 1"))
	assert.Equal(t, 1, deck.Get("Foo (X) 1"))
	assert.Equal(t, 1, deck.Get("Bar (X) 2"))
	assert.Zero(t, invalid.Len())
}

func TestStripInvalid_AcrossPrintings(t *testing.T) {
	deck := NewCards()
	deck.Add("Foo (X) 1", 1)
	deck.Add("Foo (Y) 7", 2)
	invalid := NewCards()
	invalid.Add("Foo", 2)

	StripInvalid(deck, NewCards(), invalid)

	assert.False(t, deck.Has("Foo (X) 1"))
	assert.Equal(t, 1, deck.Get("Foo (Y) 7"))
}

func TestStripInvalid_LeavesUnresolvableRemainder(t *testing.T) {
	deck := NewCards()
	deck.Add("Foo (X) 1", 1)
	invalid := NewCards()
	invalid.Add("Foo", 3)

	StripInvalid(deck, NewCards(), invalid)

	assert.Zero(t, deck.Len())
	assert.Equal(t, 2, invalid.Get("Foo"))
}

func TestStripInvalid_NamePrefixDoesNotMatch(t *testing.T) {
	deck := NewCards()
	deck.Add("Island of Wak-Wak (MIR) 65", 1)
	deck.Add("Island (NEO) 1", 2)
	invalid := NewCards()
	invalid.Add("Island", 1)

	StripInvalid(deck, NewCards(), invalid)

	assert.Equal(t, 1, deck.Get("Island of Wak-Wak (MIR) 65"))
	assert.Equal(t, 1, deck.Get("Island (NEO) 1"))
}

func TestStripInvalidCards_Text(t *testing.T) {
	decklist := "Deck\n2 Shock (M21) 159\n1 Foo (X) 1\n\nSideboard\n1 Foo (X) 1\n"
	invalid := NewCards()
	invalid.Add("Foo", 2)

	got := DefaultReconciler().StripInvalidCards(decklist, invalid)

	assert.Equal(t, "Deck\n2 Shock (M21) 159\n", got)
	assert.Equal(t, 2, invalid.Get("Foo"), "caller's map must not change")
}

func TestDiffCards(t *testing.T) {
	pool := append(repeat(shockM21, 3), wakWak, islandNEO)
	decklist := "Deck\n2 Shock (STA) 44\n1 Island (NEO) 1\n10 Mountain\n"

	diff := DefaultReconciler().DiffCards(pool, decklist)

	assert.Equal(t, []string{"Shock (M21) 159", "Island of Wak-Wak (MIR) 65"}, diff.Keys())
	assert.Equal(t, 1, diff.Get("Shock (M21) 159"))
	assert.Equal(t, 1, diff.Get("Island of Wak-Wak (MIR) 65"))
}

func TestAddDiffToSideboard(t *testing.T) {
	pool := append(repeat(shockM21, 3), wakWak)
	r := DefaultReconciler()

	t.Run("new sideboard", func(t *testing.T) {
		got := r.AddDiffToSideboard("Deck\n2 Shock (M21) 159\n", pool)
		assert.Equal(t, "Deck\n2 Shock (M21) 159\n\nSideboard\n1 Shock (M21) 159\n1 Island of Wak-Wak (MIR) 65\n", got)
	})

	t.Run("merges existing sideboard", func(t *testing.T) {
		got := r.AddDiffToSideboard("Deck\n2 Shock (M21) 159\n\nSideboard\n1 Shock (M21) 159\n", pool)
		assert.Equal(t, "Deck\n2 Shock (M21) 159\n\nSideboard\n1 Shock (M21) 159\n1 Island of Wak-Wak (MIR) 65\n", got)
	})

	t.Run("japanese headers", func(t *testing.T) {
		got := NewReconciler(DefaultBasicLands, JapaneseHeaders).AddDiffToSideboard("デッキ\n3 Shock (M21) 159", pool)
		assert.Equal(t, "デッキ\n3 Shock (M21) 159\n\nサイドボード\n1 Island of Wak-Wak (MIR) 65\n", got)
	})

	t.Run("result validates", func(t *testing.T) {
		got := r.AddDiffToSideboard("Deck\n1 Shock (M21) 159\n", pool)
		require.Zero(t, r.Validate(got, pool).Len())
		assert.Zero(t, r.DiffCards(pool, got).Total())
	})
}
