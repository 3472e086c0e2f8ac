package cards

import (
	"fmt"
	"strings"
)

// Rarity is the printed rarity tier of a card.
type Rarity int

const (
	RarityUnknown Rarity = iota
	RarityToken
	RarityBasic
	RarityCommon
	RarityUncommon
	RarityRare
	RarityMythicRare
)

var rarityNames = map[Rarity]string{
	RarityUnknown:    "Unknown",
	RarityToken:      "Token",
	RarityBasic:      "Basic",
	RarityCommon:     "Common",
	RarityUncommon:   "Uncommon",
	RarityRare:       "Rare",
	RarityMythicRare: "Mythic Rare",
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}

// ParseRarity converts a rarity name to a Rarity. It accepts both the
// display names ("Mythic Rare") and Scryfall's lower-case names ("mythic").
func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "token":
		return RarityToken, nil
	case "basic", "land":
		return RarityBasic, nil
	case "common":
		return RarityCommon, nil
	case "uncommon":
		return RarityUncommon, nil
	case "rare":
		return RarityRare, nil
	case "mythic", "mythic rare", "mythicrare":
		return RarityMythicRare, nil
	default:
		return RarityUnknown, fmt.Errorf("unknown rarity %q", s)
	}
}

// MarshalText encodes the rarity as its display name.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rarity name.
func (r *Rarity) UnmarshalText(text []byte) error {
	parsed, err := ParseRarity(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is an immutable catalog record. Cards are shared by pointer between
// the catalog and every pool drawn from it, and must never be mutated after
// the catalog is built.
type Card struct {
	Name       string `json:"name"`
	PrettyName string `json:"pretty_name"` // Display (possibly localized) name

	Cost          string   `json:"cost"`
	ColorIdentity string   `json:"color_identity"` // WUBRG order, e.g. "WU"
	CardType      string   `json:"card_type"`
	SubTypes      []string `json:"sub_types,omitempty"`
	SuperType     string   `json:"super_type,omitempty"`
	Abilities     []string `json:"abilities,omitempty"`
	CMC           float64  `json:"cmc"`

	SetCode     string `json:"set"`
	Rarity      Rarity `json:"rarity"`
	Collectible bool   `json:"collectible"`
	SetNumber   int    `json:"set_number"` // Collector number; may collide across finishes
	MtgaID      int    `json:"mtga_id"`

	IsToken                bool `json:"is_token"`
	IsSecondaryCard        bool `json:"is_secondary_card"`
	IsRebalanced           bool `json:"is_rebalanced"` // Alchemy variant
	IsCreatureCard         bool `json:"is_creature_card"`
	IsNoncreatureSpellCard bool `json:"is_noncreature_spell_card"`
	IsLandCard             bool `json:"is_land_card"`
}

// HasSubType reports whether the card carries the given sub type.
func (c *Card) HasSubType(subType string) bool {
	for _, s := range c.SubTypes {
		if s == subType {
			return true
		}
	}
	return false
}

// HasAbility reports whether the card carries the given ability.
func (c *Card) HasAbility(ability string) bool {
	for _, a := range c.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}

func (c *Card) String() string {
	return fmt.Sprintf("%s (%s) %d", c.PrettyName, c.SetCode, c.SetNumber)
}
