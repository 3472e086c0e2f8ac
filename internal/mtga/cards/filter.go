package cards

// Filter constrains a catalog query. Zero-valued fields do not constrain.
// The boolean flags are pointers so that "unset" can fall back to the
// catalog defaults: collectible cards only, no tokens, no secondary faces
// and no Alchemy rebalanced variants.
type Filter struct {
	Name          string
	PrettyName    string
	Cost          string
	ColorIdentity string
	CardType      string
	SubType       string
	SuperType     string
	Ability       string
	Set           string
	Rarity        Rarity
	SetNumber     int
	MtgaID        int

	Collectible     *bool // default true
	IsToken         *bool // default false
	IsSecondaryCard *bool // default false
	IsRebalanced    *bool // default false
}

// Bool returns a pointer to b, for use in Filter literals.
func Bool(b bool) *bool {
	return &b
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Matches reports whether the card satisfies every constraint in the filter.
func (f Filter) Matches(c *Card) bool {
	if f.Name != "" && c.Name != f.Name {
		return false
	}
	if f.PrettyName != "" && c.PrettyName != f.PrettyName {
		return false
	}
	if f.Cost != "" && c.Cost != f.Cost {
		return false
	}
	if f.ColorIdentity != "" && c.ColorIdentity != f.ColorIdentity {
		return false
	}
	if f.CardType != "" && c.CardType != f.CardType {
		return false
	}
	if f.SubType != "" && !c.HasSubType(f.SubType) {
		return false
	}
	if f.SuperType != "" && c.SuperType != f.SuperType {
		return false
	}
	if f.Ability != "" && !c.HasAbility(f.Ability) {
		return false
	}
	if f.Set != "" && c.SetCode != f.Set {
		return false
	}
	if f.Rarity != RarityUnknown && c.Rarity != f.Rarity {
		return false
	}
	if f.SetNumber != 0 && c.SetNumber != f.SetNumber {
		return false
	}
	if f.MtgaID != 0 && c.MtgaID != f.MtgaID {
		return false
	}
	if c.Collectible != boolOr(f.Collectible, true) {
		return false
	}
	if c.IsToken != boolOr(f.IsToken, false) {
		return false
	}
	if c.IsSecondaryCard != boolOr(f.IsSecondaryCard, false) {
		return false
	}
	if c.IsRebalanced != boolOr(f.IsRebalanced, false) {
		return false
	}
	return true
}
