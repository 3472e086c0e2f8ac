package charts

import (
	"strconv"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// MaxCurveBucket is the mana value from which cards share the last bucket.
const MaxCurveBucket = 7

// ManaCurve counts non-land cards by mana value, 0 through "7+".
func ManaCurve(cs []*cards.Card) []DataPoint {
	counts := make([]float64, MaxCurveBucket+1)
	for _, c := range cs {
		if c.IsLandCard {
			continue
		}
		bucket := min(int(c.CMC), MaxCurveBucket)
		counts[bucket]++
	}

	points := make([]DataPoint, len(counts))
	for i, n := range counts {
		label := strconv.Itoa(i)
		if i == MaxCurveBucket {
			label += "+"
		}
		points[i] = DataPoint{Label: label, Value: n}
	}
	return points
}

var colorNames = []struct {
	code byte
	name string
}{
	{'W', "White"}, {'U', "Blue"}, {'B', "Black"}, {'R', "Red"}, {'G', "Green"},
}

// ColorCounts counts cards by color identity. Cards of two or more colors
// count as "Multicolor"; cards with none count as "Colorless".
func ColorCounts(cs []*cards.Card) []DataPoint {
	counts := make(map[string]float64)
	for _, c := range cs {
		switch len(c.ColorIdentity) {
		case 0:
			counts["Colorless"]++
		case 1:
			for _, cn := range colorNames {
				if c.ColorIdentity[0] == cn.code {
					counts[cn.name]++
				}
			}
		default:
			counts["Multicolor"]++
		}
	}

	var points []DataPoint
	for _, cn := range colorNames {
		points = append(points, DataPoint{Label: cn.name, Value: counts[cn.name]})
	}
	points = append(points,
		DataPoint{Label: "Multicolor", Value: counts["Multicolor"]},
		DataPoint{Label: "Colorless", Value: counts["Colorless"]},
	)
	return points
}

// RarityCounts counts cards by rarity, commons first.
func RarityCounts(cs []*cards.Card) []DataPoint {
	order := []cards.Rarity{cards.RarityBasic, cards.RarityCommon, cards.RarityUncommon, cards.RarityRare, cards.RarityMythicRare}
	counts := make(map[cards.Rarity]float64)
	for _, c := range cs {
		counts[c.Rarity]++
	}

	points := make([]DataPoint, len(order))
	for i, r := range order {
		points[i] = DataPoint{Label: r.String(), Value: counts[r]}
	}
	return points
}

// TypeCounts splits cards into creatures, noncreature spells and lands.
func TypeCounts(cs []*cards.Card) []DataPoint {
	var creatures, spells, lands float64
	for _, c := range cs {
		switch {
		case c.IsLandCard:
			lands++
		case c.IsCreatureCard:
			creatures++
		default:
			spells++
		}
	}
	return []DataPoint{
		{Label: "Creatures", Value: creatures},
		{Label: "Noncreature spells", Value: spells},
		{Label: "Lands", Value: lands},
	}
}
