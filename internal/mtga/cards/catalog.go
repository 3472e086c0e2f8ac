package cards

import (
	"errors"
	"sort"
)

// ErrCardNotFound is returned when a lookup matches no catalog card.
var ErrCardNotFound = errors.New("card not found")

// Minimum per-rarity counts for a set to yield a pack.
const (
	MinRaresPerSet     = 1
	MinUncommonsPerSet = 3
	MinCommonsPerSet   = 10
)

// SetInfo counts the pack-eligible cards of one set per rarity tier.
type SetInfo struct {
	SetCode  string `json:"set"`
	Mythic   int    `json:"mythic"`
	Rare     int    `json:"rare"`
	Uncommon int    `json:"uncommon"`
	Common   int    `json:"common"`
	Basic    int    `json:"basic"`
}

// Sealedable reports whether the set has enough cards of every rarity to
// fill one pack.
func (si SetInfo) Sealedable() bool {
	return si.Rare >= MinRaresPerSet &&
		si.Uncommon >= MinUncommonsPerSet &&
		si.Common >= MinCommonsPerSet
}

// Count returns the number of cards at the given rarity.
func (si SetInfo) Count(r Rarity) int {
	switch r {
	case RarityMythicRare:
		return si.Mythic
	case RarityRare:
		return si.Rare
	case RarityUncommon:
		return si.Uncommon
	case RarityCommon:
		return si.Common
	case RarityBasic:
		return si.Basic
	default:
		return 0
	}
}

func (si *SetInfo) add(r Rarity) {
	switch r {
	case RarityMythicRare:
		si.Mythic++
	case RarityRare:
		si.Rare++
	case RarityUncommon:
		si.Uncommon++
	case RarityCommon:
		si.Common++
	case RarityBasic:
		si.Basic++
	}
}

// Catalog is an immutable, queryable collection of cards. It is built once
// and may be shared freely between goroutines.
type Catalog struct {
	cards   []*Card
	bySet   map[string][]*Card
	setInfo map[string]SetInfo
	total   SetInfo
}

// NewCatalog builds a catalog from the given cards. The slice is copied;
// the cards themselves are shared and must not be modified afterwards.
func NewCatalog(cards []*Card) *Catalog {
	c := &Catalog{
		cards:   make([]*Card, 0, len(cards)),
		bySet:   make(map[string][]*Card),
		setInfo: make(map[string]SetInfo),
	}

	eligible := Filter{}
	for _, card := range cards {
		if card == nil {
			continue
		}
		c.cards = append(c.cards, card)
		c.bySet[card.SetCode] = append(c.bySet[card.SetCode], card)

		if !eligible.Matches(card) {
			continue
		}
		info := c.setInfo[card.SetCode]
		info.SetCode = card.SetCode
		info.add(card.Rarity)
		c.setInfo[card.SetCode] = info
		c.total.add(card.Rarity)
	}

	return c
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Query returns every card matching the filter, in catalog order.
func (c *Catalog) Query(f Filter) []*Card {
	source := c.cards
	if f.Set != "" {
		source = c.bySet[f.Set]
	}

	var result []*Card
	for _, card := range source {
		if f.Matches(card) {
			result = append(result, card)
		}
	}
	return result
}

// Sets returns all set codes present in the catalog, sorted.
func (c *Catalog) Sets() []string {
	sets := make([]string, 0, len(c.bySet))
	for code := range c.bySet {
		sets = append(sets, code)
	}
	sort.Strings(sets)
	return sets
}

// SetInfo returns the rarity counts for a set. An empty set code returns
// the counts across the whole catalog.
func (c *Catalog) SetInfo(setCode string) SetInfo {
	if setCode == "" {
		return c.total
	}
	info, ok := c.setInfo[setCode]
	if !ok {
		return SetInfo{SetCode: setCode}
	}
	return info
}

// Sealedable reports whether a pack can be opened for the set.
func (c *Catalog) Sealedable(setCode string) bool {
	return c.SetInfo(setCode).Sealedable()
}

// SealedableSets returns the sorted set codes that can produce a pack.
func (c *Catalog) SealedableSets() []string {
	var sets []string
	for _, code := range c.Sets() {
		if c.Sealedable(code) {
			sets = append(sets, code)
		}
	}
	return sets
}
