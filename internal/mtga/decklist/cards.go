package decklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// AlchemyPrefix marks rebalanced cards in decklist keys.
const AlchemyPrefix = "A-"

// Cards maps card keys to counts, remembering the order in which keys were
// first added. The zero value is not usable; use NewCards.
type Cards struct {
	keys   []string
	counts map[string]int
}

// NewCards creates an empty count map.
func NewCards() *Cards {
	return &Cards{counts: make(map[string]int)}
}

// Add increases the count of key by n, appending key if it is new.
func (c *Cards) Add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Set replaces the count of key, appending key if it is new. A zero count
// keeps the entry; use Delete to remove it.
func (c *Cards) Set(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] = n
}

// Get returns the count of key, or 0 if absent.
func (c *Cards) Get(key string) int {
	return c.counts[key]
}

// Has reports whether key is present, even with a zero count.
func (c *Cards) Has(key string) bool {
	_, ok := c.counts[key]
	return ok
}

// Delete removes key.
func (c *Cards) Delete(key string) {
	if _, ok := c.counts[key]; !ok {
		return
	}
	delete(c.counts, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in first-seen order.
func (c *Cards) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of distinct keys.
func (c *Cards) Len() int {
	return len(c.keys)
}

// Total returns the sum of all counts.
func (c *Cards) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Clone returns an independent copy.
func (c *Cards) Clone() *Cards {
	clone := &Cards{
		keys:   make([]string, len(c.keys)),
		counts: make(map[string]int, len(c.counts)),
	}
	copy(clone.keys, c.keys)
	for k, n := range c.counts {
		clone.counts[k] = n
	}
	return clone
}

// Equal reports whether both maps hold the same keys, counts and order.
func (c *Cards) Equal(other *Cards) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, k := range c.keys {
		if other.keys[i] != k || other.counts[k] != c.counts[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object in key order.
func (c *Cards) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Cards) String() string {
	parts := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		parts = append(parts, fmt.Sprintf("%q: %d", k, c.counts[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Key returns the decklist key of a card: its display name, prefixed for
// rebalanced cards, followed by " (SET) number" unless nameOnly is set.
func Key(c *cards.Card, nameOnly bool) string {
	name := c.PrettyName
	if name == "" {
		name = c.Name
	}
	if c.IsRebalanced && !strings.HasPrefix(name, AlchemyPrefix) {
		name = AlchemyPrefix + name
	}
	if nameOnly {
		return name
	}
	return fmt.Sprintf("%s (%s) %d", name, c.SetCode, c.SetNumber)
}

// FromCards counts cards by key in first-seen order.
func FromCards(cs []*cards.Card, nameOnly bool) *Cards {
	out := NewCards()
	for _, c := range cs {
		out.Add(Key(c, nameOnly), 1)
	}
	return out
}

var fullKeyPattern = regexp.MustCompile(`^(.+) \(([^()\s]+)\) (A-)?(\d+)$`)

// ParsedKey is a decklist key split into its parts.
type ParsedKey struct {
	Name       string // without the rebalanced prefix
	Set        string // empty for name-only keys
	Number     int
	Rebalanced bool
}

// ParseKey splits a full or name-only key.
func ParseKey(key string) ParsedKey {
	var pk ParsedKey
	if m := fullKeyPattern.FindStringSubmatch(key); m != nil {
		pk.Name = m[1]
		pk.Set = m[2]
		pk.Number, _ = strconv.Atoi(m[4])
		pk.Rebalanced = m[3] != ""
	} else {
		pk.Name = key
	}
	if strings.HasPrefix(pk.Name, AlchemyPrefix) {
		pk.Name = strings.TrimPrefix(pk.Name, AlchemyPrefix)
		pk.Rebalanced = true
	}
	return pk
}

// NameOf returns the name part of a key with the rebalanced prefix, so
// that full keys compare equal to the name-only keys of the same card.
func NameOf(key string) string {
	m := fullKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return key
	}
	if m[3] != "" && !strings.HasPrefix(m[1], AlchemyPrefix) {
		return AlchemyPrefix + m[1]
	}
	return m[1]
}
