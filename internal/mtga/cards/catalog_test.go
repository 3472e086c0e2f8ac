package cards

import (
	"fmt"
	"testing"
)

func makeCards(set string, rarity Rarity, n, startNumber int) []*Card {
	out := make([]*Card, 0, n)
	for i := 0; i < n; i++ {
		number := startNumber + i
		out = append(out, &Card{
			Name:        fmt.Sprintf("%s %s %d", set, rarity, number),
			PrettyName:  fmt.Sprintf("%s %s %d", set, rarity, number),
			SetCode:     set,
			Rarity:      rarity,
			Collectible: true,
			SetNumber:   number,
			MtgaID:      number,
		})
	}
	return out
}

func TestCatalog_SetInfo(t *testing.T) {
	var all []*Card
	all = append(all, makeCards("NEO", RarityMythicRare, 2, 1)...)
	all = append(all, makeCards("NEO", RarityRare, 5, 10)...)
	all = append(all, makeCards("NEO", RarityUncommon, 4, 20)...)
	all = append(all, makeCards("NEO", RarityCommon, 12, 30)...)
	all = append(all, makeCards("NEO", RarityBasic, 1, 50)...)
	all = append(all, &Card{Name: "Spirit", SetCode: "NEO", Rarity: RarityToken, IsToken: true, Collectible: true, SetNumber: 99})
	all = append(all, &Card{Name: "Rebalanced", SetCode: "NEO", Rarity: RarityRare, IsRebalanced: true, Collectible: true, SetNumber: 98})

	catalog := NewCatalog(all)
	info := catalog.SetInfo("NEO")

	want := SetInfo{SetCode: "NEO", Mythic: 2, Rare: 5, Uncommon: 4, Common: 12, Basic: 1}
	if info != want {
		t.Errorf("SetInfo() = %+v, want %+v", info, want)
	}
	if !catalog.Sealedable("NEO") {
		t.Error("NEO should be sealedable")
	}
	if catalog.Len() != len(all) {
		t.Errorf("Len() = %d, want %d", catalog.Len(), len(all))
	}
}

func TestCatalog_Sealedable(t *testing.T) {
	tests := []struct {
		name      string
		rares     int
		uncommons int
		commons   int
		want      bool
	}{
		{"enough of everything", 1, 3, 10, true},
		{"no rares", 0, 3, 10, false},
		{"no uncommons", 5, 0, 50, false},
		{"two uncommons", 5, 2, 50, false},
		{"nine commons", 5, 3, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var all []*Card
			all = append(all, makeCards("TST", RarityRare, tt.rares, 1)...)
			all = append(all, makeCards("TST", RarityUncommon, tt.uncommons, 100)...)
			all = append(all, makeCards("TST", RarityCommon, tt.commons, 200)...)

			catalog := NewCatalog(all)
			if got := catalog.Sealedable("TST"); got != tt.want {
				t.Errorf("Sealedable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalog_UnknownSet(t *testing.T) {
	catalog := NewCatalog(nil)
	if catalog.Sealedable("XYZ") {
		t.Error("unknown set should not be sealedable")
	}
	if got := catalog.SetInfo("XYZ"); got.SetCode != "XYZ" || got.Rare != 0 {
		t.Errorf("SetInfo() = %+v, want empty info for XYZ", got)
	}
}

func TestCatalog_Query(t *testing.T) {
	island := &Card{Name: "Island", PrettyName: "島", SetCode: "NEO", Rarity: RarityBasic, Collectible: true, SetNumber: 295, MtgaID: 1, CardType: "Land", SubTypes: []string{"Island"}, SuperType: "Basic"}
	rebalanced := &Card{Name: "Divide by Zero", PrettyName: "Divide by Zero", SetCode: "STX", Rarity: RarityUncommon, Collectible: true, SetNumber: 41, MtgaID: 2, IsRebalanced: true}
	original := &Card{Name: "Divide by Zero", PrettyName: "Divide by Zero", SetCode: "STX", Rarity: RarityUncommon, Collectible: true, SetNumber: 41, MtgaID: 3}
	token := &Card{Name: "Spirit", SetCode: "NEO", Rarity: RarityToken, IsToken: true, Collectible: true, MtgaID: 4}
	uncollectible := &Card{Name: "Hidden", SetCode: "NEO", Rarity: RarityCommon, MtgaID: 5}

	catalog := NewCatalog([]*Card{island, rebalanced, original, token, uncollectible})

	tests := []struct {
		name   string
		filter Filter
		want   []*Card
	}{
		{"by pretty name", Filter{PrettyName: "島"}, []*Card{island}},
		{"by sub type", Filter{SubType: "Island"}, []*Card{island}},
		{"defaults exclude rebalanced", Filter{Name: "Divide by Zero"}, []*Card{original}},
		{"rebalanced only", Filter{Name: "Divide by Zero", IsRebalanced: Bool(true)}, []*Card{rebalanced}},
		{"set and number", Filter{Set: "STX", SetNumber: 41}, []*Card{original}},
		{"tokens", Filter{IsToken: Bool(true)}, []*Card{token}},
		{"uncollectible", Filter{Collectible: Bool(false)}, []*Card{uncollectible}},
		{"by mtga id", Filter{MtgaID: 1}, []*Card{island}},
		{"no match", Filter{Set: "XYZ"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Query(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("Query() returned %d cards, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Query()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCatalog_SealedableSets(t *testing.T) {
	var all []*Card
	for _, set := range []string{"VOW", "MID"} {
		all = append(all, makeCards(set, RarityRare, 1, 1)...)
		all = append(all, makeCards(set, RarityUncommon, 3, 10)...)
		all = append(all, makeCards(set, RarityCommon, 10, 20)...)
	}
	all = append(all, makeCards("SMALL", RarityCommon, 3, 1)...)

	catalog := NewCatalog(all)
	got := catalog.SealedableSets()
	if len(got) != 2 || got[0] != "MID" || got[1] != "VOW" {
		t.Errorf("SealedableSets() = %v, want [MID VOW]", got)
	}
	if sets := catalog.Sets(); len(sets) != 3 {
		t.Errorf("Sets() = %v, want 3 sets", sets)
	}
}

func TestParseRarity(t *testing.T) {
	tests := []struct {
		in   string
		want Rarity
		ok   bool
	}{
		{"common", RarityCommon, true},
		{"Uncommon", RarityUncommon, true},
		{"mythic", RarityMythicRare, true},
		{"Mythic Rare", RarityMythicRare, true},
		{"Basic", RarityBasic, true},
		{"special", RarityUnknown, false},
	}

	for _, tt := range tests {
		got, err := ParseRarity(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseRarity(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
		}
		if got != tt.want {
			t.Errorf("ParseRarity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
