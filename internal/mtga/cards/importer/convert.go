// Package importer syncs card data from Scryfall into set files and imports
// those files into the card database.
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/scryfall"
	"github.com/poslogithub/magic-league-generator/internal/storage/models"
)

// Scryfall names rebalanced cards "A-<name>".
const alchemyPrefix = "A-"

// Layouts whose name is the name of their front face.
var frontFaceLayouts = map[string]bool{
	"transform":  true,
	"modal_dfc":  true,
	"flip":       true,
	"adventure":  true,
	"meld":       true,
	"reversible": true,
}

// Layouts that are never part of a pack.
var tokenLayouts = map[string]bool{
	"token":              true,
	"double_faced_token": true,
	"emblem":             true,
	"art_series":         true,
}

var superTypes = map[string]bool{
	"Basic":     true,
	"Legendary": true,
	"Snow":      true,
	"World":     true,
	"Ongoing":   true,
	"Host":      true,
}

// Convert maps a Scryfall printing to a catalog card.
func Convert(sc *scryfall.Card) *cards.Card {
	name, prettyName, cost, typeLine := sc.Name, sc.DisplayName(), sc.ManaCost, sc.TypeLine
	if frontFaceLayouts[sc.Layout] && len(sc.CardFaces) > 0 {
		front := sc.CardFaces[0]
		name, typeLine = front.Name, front.TypeLine
		prettyName = front.PrintedName
		if prettyName == "" {
			prettyName = front.Name
		}
		if cost == "" {
			cost = front.ManaCost
		}
	}

	c := &cards.Card{
		Name:          name,
		PrettyName:    prettyName,
		Cost:          cost,
		ColorIdentity: colorIdentity(sc.ColorIdentity),
		Abilities:     sc.Keywords,
		CMC:           sc.CMC,
		SetCode:       strings.ToUpper(sc.SetCode),
		SetNumber:     collectorNumber(sc.CollectorNumber),
		Collectible:   sc.Booster && !sc.Promo,
	}
	if sc.ArenaID != nil {
		c.MtgaID = *sc.ArenaID
	}

	if strings.HasPrefix(c.Name, alchemyPrefix) {
		c.IsRebalanced = true
		c.Name = strings.TrimPrefix(c.Name, alchemyPrefix)
		c.PrettyName = strings.TrimPrefix(c.PrettyName, alchemyPrefix)
	}

	c.SuperType, c.CardType, c.SubTypes = parseTypeLine(typeLine)
	c.IsLandCard = strings.Contains(c.CardType, "Land")
	c.IsCreatureCard = strings.Contains(c.CardType, "Creature")
	c.IsNoncreatureSpellCard = !c.IsLandCard && !c.IsCreatureCard
	c.IsSecondaryCard = sc.Layout == "meld" && strings.HasSuffix(sc.CollectorNumber, "b")

	switch {
	case tokenLayouts[sc.Layout]:
		c.IsToken = true
		c.Rarity = cards.RarityToken
	case strings.Contains(c.SuperType, "Basic") && c.IsLandCard:
		c.Rarity = cards.RarityBasic
	default:
		c.Rarity, _ = cards.ParseRarity(sc.Rarity)
	}

	return c
}

// ToRow converts a Scryfall printing to a database row. Printings with a
// rarity the catalog does not model ("special", "bonus") are rejected.
func ToRow(sc *scryfall.Card) (*models.Card, error) {
	c := Convert(sc)
	if c.Rarity == cards.RarityUnknown {
		return nil, fmt.Errorf("unsupported rarity %q", sc.Rarity)
	}
	row, err := models.NewCard(c, sc.ID, sc.Lang)
	if err != nil {
		return nil, err
	}
	row.ImageURI = sc.ImageURL(false)
	row.BackImageURI = sc.ImageURL(true)
	if row.Lang == "" {
		row.Lang = "en"
	}
	return row, nil
}

// parseTypeLine splits "Legendary Creature — Human Wizard" into its super
// types, card types and sub types.
func parseTypeLine(line string) (superType, cardType string, subTypes []string) {
	main, sub, _ := strings.Cut(line, "—")

	var supers, types []string
	for _, word := range strings.Fields(main) {
		if superTypes[word] {
			supers = append(supers, word)
		} else {
			types = append(types, word)
		}
	}
	return strings.Join(supers, " "), strings.Join(types, " "), strings.Fields(sub)
}

// colorIdentity renders Scryfall's color list in WUBRG order.
func colorIdentity(colors []string) string {
	var b strings.Builder
	for _, c := range "WUBRG" {
		for _, have := range colors {
			if have == string(c) {
				b.WriteRune(c)
				break
			}
		}
	}
	return b.String()
}

// collectorNumber returns the leading digits of a collector number, so
// "123", "123★" and the rebalanced "A-123" share a number. Numbers without
// digits yield 0.
func collectorNumber(s string) int {
	s = strings.TrimPrefix(s, alchemyPrefix)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
