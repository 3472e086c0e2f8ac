package decklist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

func TestFormat(t *testing.T) {
	c := NewCards()
	c.Add("Shock (M21) 159", 2)
	c.Set("Unused (M21) 1", 0)
	c.Add("Island (NEO) 294", 17)

	assert.Equal(t, "Deck\n2 Shock (M21) 159\n17 Island (NEO) 294\n", Format(c, false, EnglishHeaders))
	assert.Equal(t, "サイドボード\n2 Shock (M21) 159\n17 Island (NEO) 294\n", Format(c, true, JapaneseHeaders))
	assert.Equal(t, "Deck\n", Format(NewCards(), false, EnglishHeaders))
}

func TestParse(t *testing.T) {
	text := "Deck\n" +
		"2 Shock (M21) 159\n" +
		"\n" +
		"not a card line\n" +
		"3\n" +
		"  1 Fire // Ice (MH2) 290  \n" +
		"Sideboard\n" +
		"1 Shock (M21) 159\n" +
		"4 Island\n"

	full := Parse(text, false)
	assert.Equal(t, []string{"Shock (M21) 159", "Fire // Ice (MH2) 290", "Island"}, full.Keys())
	assert.Equal(t, 3, full.Get("Shock (M21) 159"))
	assert.Equal(t, 4, full.Get("Island"))

	names := Parse(text, true)
	assert.Equal(t, []string{"Shock", "Fire // Ice", "Island"}, names.Keys())
	assert.Equal(t, 3, names.Get("Shock"))
}

func TestParse_KeepsNameSpacing(t *testing.T) {
	c := NewCards()
	c.Add("Odd  Name (XYZ) 7", 2)

	parsed := Parse(Format(c, false, EnglishHeaders), false)
	assert.Equal(t, []string{"Odd  Name (XYZ) 7"}, parsed.Keys())
	assert.Equal(t, 2, parsed.Get("Odd  Name (XYZ) 7"))

	assert.Equal(t, []string{"Fire // Ice"}, Parse("1\tFire // Ice\n", false).Keys())
}

func TestParse_JapaneseAndCRLF(t *testing.T) {
	text := "デッキ\r\n2 島 (NEO) 294\r\nサイドボード\r\n1 ショック (M21) 159\r\n"
	c := Parse(text, true)
	assert.Equal(t, []string{"島", "ショック"}, c.Keys())
}

func TestSeparate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantDeck      string
		wantSideboard string
	}{
		{"english", "Deck\n2 A\n\nSideboard\n1 B\n", "Deck\n2 A\n", "1 B\n"},
		{"japanese", "デッキ\n2 A\nサイドボード\n1 B", "デッキ\n2 A", "1 B"},
		{"no sideboard", "Deck\n2 A\n", "Deck\n2 A\n", ""},
		{"header with spaces", "2 A\n  Sideboard \n1 B", "2 A", "1 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, side := Separate(tt.text)
			assert.Equal(t, tt.wantDeck, deck)
			assert.Equal(t, tt.wantSideboard, side)
		})
	}
}

func TestJoin(t *testing.T) {
	deck := NewCards()
	deck.Add("A (X) 1", 2)
	side := NewCards()
	side.Add("B (X) 2", 1)

	assert.Equal(t, "Deck\n2 A (X) 1\n\nSideboard\n1 B (X) 2\n", Join(deck, side, EnglishHeaders))
	assert.Equal(t, "Deck\n2 A (X) 1\n", Join(deck, NewCards(), EnglishHeaders))
}

func TestRoundTrip(t *testing.T) {
	pool := []*cards.Card{
		{PrettyName: "Shock", SetCode: "M21", SetNumber: 159},
		{PrettyName: "Island", SetCode: "NEO", SetNumber: 294},
		{PrettyName: "Shock", SetCode: "M21", SetNumber: 159},
		{PrettyName: "Ox of Agonas", SetCode: "THB", SetNumber: 147, IsRebalanced: true},
		{PrettyName: "Fire // Ice", SetCode: "MH2", SetNumber: 290},
		{PrettyName: "島", SetCode: "NEO", SetNumber: 294},
	}

	for _, nameOnly := range []bool{false, true} {
		for _, h := range []Headers{EnglishHeaders, JapaneseHeaders} {
			want := FromCards(pool, nameOnly)
			got := Parse(Format(want, false, h), nameOnly)
			assert.True(t, want.Equal(got), "nameOnly=%v headers=%v: got %v, want %v", nameOnly, h, got, want)
		}
	}
}

func TestHeadersFor(t *testing.T) {
	assert.Equal(t, JapaneseHeaders, HeadersFor("ja"))
	assert.Equal(t, JapaneseHeaders, HeadersFor("JA-JP"))
	assert.Equal(t, EnglishHeaders, HeadersFor("en"))
	assert.Equal(t, EnglishHeaders, HeadersFor(""))
}
