package sealed

import (
	"math/rand/v2"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// Pack composition.
const (
	RareSlots     = 1
	UncommonSlots = 3
	CommonSlots   = 10
	BasicSlots    = 1

	// MythicChance is the probability the rare slot upgrades to a mythic.
	MythicChance = 1 / 7.4
)

// Opener draws packs from a catalog. It holds no random state; the caller
// threads one seeded generator through every Open call of an assembly.
type Opener struct {
	catalog *cards.Catalog
}

// NewOpener creates an opener over the catalog.
func NewOpener(catalog *cards.Catalog) *Opener {
	return &Opener{catalog: catalog}
}

// Sealedable reports whether a pack can be opened for the set. An empty set
// code means the whole catalog.
func (o *Opener) Sealedable(setCode string) bool {
	return o.catalog.SetInfo(setCode).Sealedable()
}

// Open draws one pack. The slots are filled in a fixed order (rare/mythic,
// uncommons, commons, basic land) because each draw consumes r; no card is
// drawn twice within the same pack.
func (o *Opener) Open(setCode string, r *rand.Rand) ([]*cards.Card, error) {
	info := o.catalog.SetInfo(setCode)
	if !info.Sealedable() {
		return nil, &PackInfeasibleError{Set: setCode, Info: info}
	}

	pool := o.candidates(setCode)
	pack := make([]*cards.Card, 0, RareSlots+UncommonSlots+CommonSlots+BasicSlots)
	picked := make(map[*cards.Card]struct{}, cap(pack))

	draw := func(candidates []*cards.Card) {
		pack = append(pack, drawUnpicked(candidates, picked, r))
	}

	for i := 0; i < RareSlots; i++ {
		draw(pool[rareSlotRarity(info, r)])
	}
	for i := 0; i < UncommonSlots; i++ {
		draw(pool[cards.RarityUncommon])
	}
	for i := 0; i < CommonSlots; i++ {
		draw(pool[cards.RarityCommon])
	}
	if info.Basic > 0 {
		for i := 0; i < BasicSlots; i++ {
			draw(pool[cards.RarityBasic])
		}
	}

	return pack, nil
}

// candidates groups the pack-eligible cards of a set by rarity.
func (o *Opener) candidates(setCode string) map[cards.Rarity][]*cards.Card {
	byRarity := make(map[cards.Rarity][]*cards.Card, 5)
	for _, card := range o.catalog.Query(cards.Filter{Set: setCode}) {
		byRarity[card.Rarity] = append(byRarity[card.Rarity], card)
	}
	return byRarity
}

// rareSlotRarity decides between rare and mythic for the rare slot. Sets
// without mythics always yield a rare and consume no randomness.
func rareSlotRarity(info cards.SetInfo, r *rand.Rand) cards.Rarity {
	if info.Mythic == 0 {
		return cards.RarityRare
	}
	if r.Float64() < MythicChance {
		return cards.RarityMythicRare
	}
	return cards.RarityRare
}

// drawUnpicked samples uniformly until it finds a card not yet in the pack.
// Sealedable guarantees enough distinct candidates for this to terminate.
func drawUnpicked(candidates []*cards.Card, picked map[*cards.Card]struct{}, r *rand.Rand) *cards.Card {
	for {
		card := candidates[r.IntN(len(candidates))]
		if _, dup := picked[card]; dup {
			continue
		}
		picked[card] = struct{}{}
		return card
	}
}
