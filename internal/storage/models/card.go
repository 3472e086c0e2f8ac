package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// Card is one printing stored in the cards table.
type Card struct {
	ID            int64   `db:"id"`
	ScryfallID    string  `db:"scryfall_id"`
	SetCode       string  `db:"set_code"`
	SetNumber     int     `db:"set_number"`
	Name          string  `db:"name"`
	PrettyName    string  `db:"pretty_name"`
	Lang          string  `db:"lang"`
	Cost          string  `db:"cost"`
	ColorIdentity string  `db:"color_identity"`
	CardType      string  `db:"card_type"`
	SubTypes      string  `db:"sub_types"` // JSON array
	SuperType     string  `db:"super_type"`
	Abilities     string  `db:"abilities"` // JSON array
	CMC           float64 `db:"cmc"`
	Rarity        string  `db:"rarity"`
	Collectible   bool    `db:"collectible"`
	MtgaID        int     `db:"mtga_id"`

	IsToken                bool `db:"is_token"`
	IsSecondaryCard        bool `db:"is_secondary_card"`
	IsRebalanced           bool `db:"is_rebalanced"`
	IsCreatureCard         bool `db:"is_creature_card"`
	IsNoncreatureSpellCard bool `db:"is_noncreature_spell_card"`
	IsLandCard             bool `db:"is_land_card"`

	ImageURI     string `db:"image_uri"`
	BackImageURI string `db:"back_image_uri"`
	ImportedAt   string `db:"imported_at"`
}

// NewCard converts a catalog card to a row.
func NewCard(c *cards.Card, scryfallID, lang string) (*Card, error) {
	subTypes, err := json.Marshal(nonNil(c.SubTypes))
	if err != nil {
		return nil, fmt.Errorf("encode sub types: %w", err)
	}
	abilities, err := json.Marshal(nonNil(c.Abilities))
	if err != nil {
		return nil, fmt.Errorf("encode abilities: %w", err)
	}

	return &Card{
		ScryfallID:             scryfallID,
		SetCode:                c.SetCode,
		SetNumber:              c.SetNumber,
		Name:                   c.Name,
		PrettyName:             c.PrettyName,
		Lang:                   lang,
		Cost:                   c.Cost,
		ColorIdentity:          c.ColorIdentity,
		CardType:               c.CardType,
		SubTypes:               string(subTypes),
		SuperType:              c.SuperType,
		Abilities:              string(abilities),
		CMC:                    c.CMC,
		Rarity:                 c.Rarity.String(),
		Collectible:            c.Collectible,
		MtgaID:                 c.MtgaID,
		IsToken:                c.IsToken,
		IsSecondaryCard:        c.IsSecondaryCard,
		IsRebalanced:           c.IsRebalanced,
		IsCreatureCard:         c.IsCreatureCard,
		IsNoncreatureSpellCard: c.IsNoncreatureSpellCard,
		IsLandCard:             c.IsLandCard,
	}, nil
}

// ToCard converts the row back to a catalog card.
func (m *Card) ToCard() (*cards.Card, error) {
	rarity, err := cards.ParseRarity(m.Rarity)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", m.ScryfallID, err)
	}

	c := &cards.Card{
		Name:                   m.Name,
		PrettyName:             m.PrettyName,
		Cost:                   m.Cost,
		ColorIdentity:          m.ColorIdentity,
		CardType:               m.CardType,
		SuperType:              m.SuperType,
		CMC:                    m.CMC,
		SetCode:                m.SetCode,
		Rarity:                 rarity,
		Collectible:            m.Collectible,
		SetNumber:              m.SetNumber,
		MtgaID:                 m.MtgaID,
		IsToken:                m.IsToken,
		IsSecondaryCard:        m.IsSecondaryCard,
		IsRebalanced:           m.IsRebalanced,
		IsCreatureCard:         m.IsCreatureCard,
		IsNoncreatureSpellCard: m.IsNoncreatureSpellCard,
		IsLandCard:             m.IsLandCard,
	}
	if err := decodeList(m.SubTypes, &c.SubTypes); err != nil {
		return nil, fmt.Errorf("card %s sub types: %w", m.ScryfallID, err)
	}
	if err := decodeList(m.Abilities, &c.Abilities); err != nil {
		return nil, fmt.Errorf("card %s abilities: %w", m.ScryfallID, err)
	}
	return c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeList(raw string, dst *[]string) error {
	if raw == "" || raw == "[]" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// CardSet records a synced set.
type CardSet struct {
	Code       string `db:"code"`
	Name       string `db:"name"`
	ReleasedAt string `db:"released_at"`
	CardCount  int    `db:"card_count"`
	SyncedAt   string `db:"synced_at"` // RFC 3339
}

// SyncedTime parses SyncedAt, returning the zero time if it is unset.
func (s *CardSet) SyncedTime() time.Time {
	t, err := time.Parse(time.RFC3339, s.SyncedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
