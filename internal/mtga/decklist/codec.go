package decklist

import (
	"strconv"
	"strings"
)

// Headers are the section header literals written by Format.
type Headers struct {
	Deck      string
	Sideboard string
}

var (
	EnglishHeaders  = Headers{Deck: "Deck", Sideboard: "Sideboard"}
	JapaneseHeaders = Headers{Deck: "デッキ", Sideboard: "サイドボード"}
)

// HeadersFor returns the headers for a language code. Anything other than
// Japanese falls back to English.
func HeadersFor(lang string) Headers {
	switch strings.ToLower(lang) {
	case "ja", "ja-jp", "japanese":
		return JapaneseHeaders
	default:
		return EnglishHeaders
	}
}

// Sideboard header literals recognised when reading, in any language.
var sideboardHeaders = map[string]bool{
	EnglishHeaders.Sideboard:  true,
	JapaneseHeaders.Sideboard: true,
}

// Format renders a section: the header line, then one "<count> <key>" line
// per entry with a positive count.
func Format(c *Cards, sideboard bool, h Headers) string {
	var b strings.Builder
	if sideboard {
		b.WriteString(h.Sideboard)
	} else {
		b.WriteString(h.Deck)
	}
	b.WriteByte('\n')

	for _, key := range c.keys {
		n := c.counts[key]
		if n <= 0 {
			continue
		}
		b.WriteString(strconv.Itoa(n))
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse reads every "<count> <key>" line of a decklist. Lines that do not
// start with a digit or have no key are skipped. Counts of a key repeated
// in several sections are summed. With nameOnly, the trailing
// "(SET) number" of each key is dropped.
func Parse(text string, nameOnly bool) *Cards {
	out := NewCards()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}

		// The key is the rest of the line, internal spacing included.
		sep := strings.IndexAny(line, " \t")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[sep:])
		if key == "" {
			continue
		}
		n, err := strconv.Atoi(line[:sep])
		if err != nil {
			continue
		}

		if nameOnly {
			key = NameOf(key)
		}
		out.Add(key, n)
	}
	return out
}

// Separate splits a decklist at its sideboard header line. Everything
// before the header is the deck; the header itself belongs to neither
// part. Without a header the whole text is the deck.
func Separate(text string) (deck, sideboard string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if sideboardHeaders[strings.TrimSpace(line)] {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return text, ""
}

// Join renders a deck and an optional sideboard as one decklist, with a
// blank line between the sections.
func Join(deck, sideboard *Cards, h Headers) string {
	text := Format(deck, false, h)
	if sideboard != nil && sideboard.Total() > 0 {
		text += "\n" + Format(sideboard, true, h)
	}
	return text
}
