package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/scryfall"
)

type stubResolver struct {
	front, back string
	err         error
	calls       int
}

func (r *stubResolver) ImageURIs(context.Context, string, int) (string, string, error) {
	r.calls++
	return r.front, r.back, r.err
}

func TestFallbackResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("primary hit", func(t *testing.T) {
		primary := &stubResolver{front: "db-front"}
		fallback := &stubResolver{front: "api-front"}
		front, _, err := (&fallbackResolver{primary: primary, fallback: fallback}).ImageURIs(ctx, "NEO", 1)
		require.NoError(t, err)
		assert.Equal(t, "db-front", front)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("falls back on not found", func(t *testing.T) {
		primary := &stubResolver{err: cards.ErrCardNotFound}
		fallback := &stubResolver{front: "api-front", back: "api-back"}
		front, back, err := (&fallbackResolver{primary: primary, fallback: fallback}).ImageURIs(ctx, "NEO", 1)
		require.NoError(t, err)
		assert.Equal(t, "api-front", front)
		assert.Equal(t, "api-back", back)
	})

	t.Run("other errors do not fall back", func(t *testing.T) {
		primary := &stubResolver{err: errors.New("disk on fire")}
		fallback := &stubResolver{front: "api-front"}
		_, _, err := (&fallbackResolver{primary: primary, fallback: fallback}).ImageURIs(ctx, "NEO", 1)
		assert.Error(t, err)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("fallback not found maps to card not found", func(t *testing.T) {
		primary := &stubResolver{err: cards.ErrCardNotFound}
		fallback := &stubResolver{err: &scryfall.NotFoundError{URL: "x"}}
		_, _, err := (&fallbackResolver{primary: primary, fallback: fallback}).ImageURIs(ctx, "NEO", 1)
		assert.ErrorIs(t, err, cards.ErrCardNotFound)
	})
}

func TestLeagueFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.League.PlayerID = "alice"
	cfg.League.Sets = []string{"NEO"}
	cfg.League.PackMode = config.PackModeManual
	cfg.League.PackCounts = []int{6}

	var lf leagueFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	lf.register(fs)
	require.NoError(t, fs.Parse([]string{"-player", "bob", "-sets", "NEO,SNC", "-mode", "weekly"}))
	require.NoError(t, lf.apply(cfg))

	assert.Equal(t, "bob", cfg.League.PlayerID)
	assert.Equal(t, []string{"NEO", "SNC"}, cfg.League.Sets)
	assert.Equal(t, "weekly", cfg.League.CadenceMode)
	// Manual counts no longer match the sets.
	assert.Equal(t, config.PackModeAuto, cfg.League.PackMode)
}

func TestLeagueFlags_InvalidMode(t *testing.T) {
	cfg := config.DefaultConfig()
	lf := leagueFlags{mode: "hourly"}
	assert.Error(t, lf.apply(cfg))
}

func TestSetArgs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.League.Sets = []string{"neo", " ", "snc"}

	assert.Equal(t, []string{"NEO", "SNC"}, setArgs(cfg, nil))
	assert.Equal(t, []string{"DMU"}, setArgs(cfg, []string{"dmu"}))
}

func TestRunPrefetch_Clear(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.League.Sets = nil
	cfg.Paths.DatabasePath = filepath.Join(t.TempDir(), "cards.db")
	cfg.Paths.ImageCacheDir = t.TempDir()
	cached := filepath.Join(cfg.Paths.ImageCacheDir, "cached.jpg")
	require.NoError(t, os.WriteFile(cached, []byte("jpeg"), 0o644))

	require.NoError(t, runPrefetch(context.Background(), cfg, []string{"-clear"}))

	_, err := os.Stat(cached)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunPrefetch_NoSets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.League.Sets = nil
	assert.Error(t, runPrefetch(context.Background(), cfg, nil))
}

func TestPrintSets(t *testing.T) {
	catalog := cards.NewCatalog([]*cards.Card{
		{Name: "Opt", SetCode: "NEO", SetNumber: 60, Rarity: cards.RarityCommon, Collectible: true},
		{Name: "Shock", SetCode: "SNC", SetNumber: 1, Rarity: cards.RarityCommon, Collectible: true},
	})
	synced := map[string]time.Time{"NEO": time.Date(2022, 4, 15, 12, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	printSets(&buf, catalog, []string{"NEO", "SNC"}, synced)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "SYNCED")
	assert.Contains(t, lines[2], "NEO")
	assert.Contains(t, lines[2], synced["NEO"].Local().Format("2006-01-02"))
	assert.Contains(t, lines[3], "SNC")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "-"))
}

func TestOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = t.TempDir()

	assert.Equal(t, filepath.Join(cfg.Paths.OutputDir, "deck.png"), outputPath(cfg, "deck.png"))
	abs := filepath.Join(t.TempDir(), "pool.txt")
	assert.Equal(t, abs, outputPath(cfg, abs))
}

func TestReadDecklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.txt")
	require.NoError(t, writeOutput(path, "Deck\n1 Island\n"))

	text, err := readDecklist(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Deck\n1 Island\n", text)

	_, err = readDecklist("", false)
	assert.Error(t, err)
}
