package sealed

import (
	"crypto/sha512"
	"encoding/hex"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Seed is the 512-bit value that determines every draw of one set's packs.
// SHA-512 is used only as a deterministic mixing function.
type Seed [sha512.Size]byte

// DeriveSeed hashes "<player>@<set>@<timestamp>" into a seed. The timestamp
// is rendered as floating-point UNIX seconds, e.g. "1650009600.0".
func DeriveSeed(playerID, setCode string, anchor time.Time) Seed {
	key := playerID + "@" + setCode + "@" + FormatTimestamp(anchor)
	return Seed(sha512.Sum512([]byte(key)))
}

// FormatTimestamp renders t as floating-point UNIX seconds. Whole seconds
// keep a trailing ".0" so the text is stable regardless of precision.
func FormatTimestamp(t time.Time) string {
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	s := strconv.FormatFloat(secs, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Hex returns the hex digest of the seed.
func (s Seed) Hex() string {
	return hex.EncodeToString(s[:])
}

// Int interprets the hex digest as a base-16 integer.
func (s Seed) Int() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

// Rand returns a fresh pseudo-random generator seeded from s. ChaCha8 keeps
// its output stable across Go releases, so pools reproduce between runs.
func (s Seed) Rand() *rand.Rand {
	var key [32]byte
	copy(key[:], s[:32])
	return rand.New(rand.NewChaCha8(key))
}
