package decklist

import (
	"strings"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// DefaultBasicLands are always available regardless of the pool.
var DefaultBasicLands = []string{
	"Plains", "Island", "Swamp", "Mountain", "Forest", "Wastes",
	"平地", "島", "沼", "山", "森", "荒地",
}

// Reconciler checks decklists against card pools.
type Reconciler struct {
	basicLands map[string]bool
	headers    Headers
}

// NewReconciler creates a reconciler that exempts the given basic land
// names and writes section headers with h.
func NewReconciler(basicLands []string, h Headers) *Reconciler {
	r := &Reconciler{
		basicLands: make(map[string]bool, len(basicLands)),
		headers:    h,
	}
	for _, name := range basicLands {
		r.basicLands[name] = true
	}
	return r
}

// DefaultReconciler exempts DefaultBasicLands and writes English headers.
func DefaultReconciler() *Reconciler {
	return NewReconciler(DefaultBasicLands, EnglishHeaders)
}

// IsBasicLand reports whether name is exempt from pool checks.
func (r *Reconciler) IsBasicLand(name string) bool {
	return r.basicLands[name]
}

// Validate returns, by name-only key, how many copies of each card the
// decklist uses beyond what the pool provides. An empty result means the
// decklist can be built from the pool.
func (r *Reconciler) Validate(decklist string, pool []*cards.Card) *Cards {
	requested := Parse(decklist, true)
	available := FromCards(pool, true)

	invalid := NewCards()
	for _, name := range requested.keys {
		if r.IsBasicLand(name) {
			continue
		}
		want := requested.counts[name]
		if have := available.Get(name); want > have {
			invalid.Add(name, want-have)
		}
	}
	return invalid
}

// StripInvalid removes the invalid counts from full-key deck and sideboard
// maps, taking from the sideboard first. Entries that reach zero are
// deleted from all three maps.
func StripInvalid(deck, sideboard, invalid *Cards) {
	for _, name := range invalid.Keys() {
		remaining := invalid.counts[name]
		for _, board := range []*Cards{sideboard, deck} {
			remaining = takeByName(board, name, remaining)
			if remaining == 0 {
				break
			}
		}
		if remaining == 0 {
			invalid.Delete(name)
		} else {
			invalid.Set(name, remaining)
		}
	}
}

// takeByName removes up to n copies of the cards named name from board and
// returns how many could not be removed.
func takeByName(board *Cards, name string, n int) int {
	for _, key := range board.Keys() {
		if n == 0 {
			break
		}
		if NameOf(key) != name {
			continue
		}
		have := board.counts[key]
		take := min(have, n)
		n -= take
		if have == take {
			board.Delete(key)
		} else {
			board.counts[key] = have - take
		}
	}
	return n
}

// StripInvalidCards removes the invalid counts from a decklist text and
// renders it again. invalid is not modified.
func (r *Reconciler) StripInvalidCards(decklist string, invalid *Cards) string {
	deckText, sideText := Separate(decklist)
	deck, sideboard := Parse(deckText, false), Parse(sideText, false)
	StripInvalid(deck, sideboard, invalid.Clone())
	return Join(deck, sideboard, r.headers)
}

// DiffCards returns the pool cards, by full key, that the decklist does
// not use.
func (r *Reconciler) DiffCards(pool []*cards.Card, decklist string) *Cards {
	unused := FromCards(pool, false)
	used := Parse(decklist, true)
	for _, name := range used.keys {
		takeByName(unused, name, used.counts[name])
	}
	return unused
}

// AddDiffToSideboard appends the unused pool cards to the decklist's
// sideboard, merging with any sideboard already present.
func (r *Reconciler) AddDiffToSideboard(decklist string, pool []*cards.Card) string {
	diff := r.DiffCards(pool, decklist)
	deckText, sideText := Separate(decklist)

	sideboard := Parse(sideText, false)
	for _, key := range diff.keys {
		sideboard.Add(key, diff.counts[key])
	}

	deckText = strings.TrimRight(deckText, "\n")
	if strings.TrimSpace(deckText) == "" {
		return Format(sideboard, true, r.headers)
	}
	return deckText + "\n\n" + Format(sideboard, true, r.headers)
}
