package sealed

import (
	"fmt"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// setSpec describes how many eligible cards of each rarity a fixture set has.
type setSpec struct {
	code                                   string
	mythic, rare, uncommon, common, basics int
}

var nextMtgaID = 70000

// buildSet creates the cards of one fixture set. Collector numbers are
// assigned in reverse so that ordering tests notice a missing sort.
func buildSet(s setSpec) []*cards.Card {
	counts := []struct {
		rarity cards.Rarity
		n      int
	}{
		{cards.RarityMythicRare, s.mythic},
		{cards.RarityRare, s.rare},
		{cards.RarityUncommon, s.uncommon},
		{cards.RarityCommon, s.common},
		{cards.RarityBasic, s.basics},
	}

	total := s.mythic + s.rare + s.uncommon + s.common + s.basics
	number := total
	var result []*cards.Card
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			nextMtgaID++
			name := fmt.Sprintf("%s %s %d", s.code, c.rarity, i)
			result = append(result, &cards.Card{
				Name:        name,
				PrettyName:  name,
				SetCode:     s.code,
				Rarity:      c.rarity,
				Collectible: true,
				SetNumber:   number,
				MtgaID:      nextMtgaID,
			})
			number--
		}
	}
	return result
}

func buildCatalog(specs ...setSpec) *cards.Catalog {
	var all []*cards.Card
	for _, s := range specs {
		all = append(all, buildSet(s)...)
	}
	return cards.NewCatalog(all)
}
