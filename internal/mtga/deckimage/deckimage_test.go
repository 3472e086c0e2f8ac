package deckimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/decklist"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

// dirSource serves solid-color PNGs; numbers listed in backs also have a
// back face.
type dirSource struct {
	dir   string
	backs map[int]bool
}

func (s *dirSource) write(name string, c color.Color) (string, error) {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 40, 56))
	for y := 0; y < 56; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, buf.Bytes(), 0o644)
}

func (s *dirSource) GetCardImage(_ context.Context, _, set string, number int) (string, error) {
	return s.write(fmt.Sprintf("%s-%d.png", set, number), red)
}

func (s *dirSource) GetCardBackImage(_ context.Context, _, set string, number int) (string, error) {
	if !s.backs[number] {
		return "", fmt.Errorf("no back face")
	}
	return s.write(fmt.Sprintf("%s-%d-back.png", set, number), blue)
}

func testCatalog() *cards.Catalog {
	mk := func(name string, number int) *cards.Card {
		return &cards.Card{Name: name, PrettyName: name, SetCode: "MID", SetNumber: number, Rarity: cards.RarityCommon, Collectible: true}
	}
	return cards.NewCatalog([]*cards.Card{
		mk("Consider", 44), mk("Delver of Secrets", 47), mk("Island", 268), mk("Duress", 94),
	})
}

func TestLayout(t *testing.T) {
	opts := Options{Columns: 2, CardWidth: 10, CardHeight: 20, Gap: 1}

	rects, bounds := Layout(3, 1, opts)
	require.Len(t, rects, 4)
	assert.Equal(t, image.Rect(1, 1, 11, 21), rects[0])
	assert.Equal(t, image.Rect(12, 1, 22, 21), rects[1])
	assert.Equal(t, image.Rect(1, 22, 11, 42), rects[2])
	// Sideboard starts on its own row after an extra gap.
	assert.Equal(t, image.Rect(1, 45, 11, 65), rects[3])
	assert.Equal(t, image.Rect(0, 0, 23, 66), bounds)

	rects, bounds = Layout(0, 1, opts)
	assert.Equal(t, []image.Rectangle{image.Rect(1, 1, 11, 21)}, rects)
	assert.Equal(t, image.Rect(0, 0, 12, 22), bounds)
}

func TestCompose(t *testing.T) {
	deck := decklist.Parse("4 Consider (MID) 44\n2 Delver of Secrets (MID) 47\n9 Island (MID) 268\n1 Nonexistent (MID) 999\n", false)
	side := decklist.Parse("2 Duress (MID) 94\n", false)
	source := &dirSource{dir: t.TempDir(), backs: map[int]bool{47: true}}

	opts := Options{Columns: 3, CardWidth: 60, CardHeight: 84, Gap: 4, BackFaces: true}
	result, err := NewComposer(testCatalog(), source, opts).Compose(context.Background(), deck, side)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nonexistent (MID) 999"}, result.Misses)

	// Deck: Consider, Delver, Delver back, Island. Sideboard: Duress.
	rects, bounds := Layout(4, 1, opts)
	assert.Equal(t, bounds, result.Image.Bounds())

	center := func(r image.Rectangle) color.RGBA {
		p := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		return result.Image.RGBAAt(p.X, p.Y)
	}
	assertColor(t, red, center(rects[0]))
	assertColor(t, red, center(rects[1]))
	assertColor(t, blue, center(rects[2]))
	assertColor(t, red, center(rects[4]))
	assert.Equal(t, background, result.Image.RGBAAt(0, 0))
}

// assertColor allows for rounding in the scaler.
func assertColor(t *testing.T, want, got color.RGBA) {
	t.Helper()
	near := func(a, b uint8) bool {
		d := int(a) - int(b)
		return d > -4 && d < 4
	}
	if !near(want.R, got.R) || !near(want.G, got.G) || !near(want.B, got.B) {
		t.Errorf("color = %v, want %v", got, want)
	}
}

func TestCompose_Empty(t *testing.T) {
	source := &dirSource{dir: t.TempDir()}
	_, err := NewComposer(testCatalog(), source, Options{}).Compose(context.Background(), decklist.NewCards(), nil)
	assert.ErrorIs(t, err, ErrEmptyDecklist)
}

func TestWritePNG(t *testing.T) {
	deck := decklist.Parse("1 Consider (MID) 44\n", false)
	source := &dirSource{dir: t.TempDir()}

	var buf bytes.Buffer
	misses, err := NewComposer(testCatalog(), source, Options{}).WritePNG(context.Background(), &buf, deck, nil)
	require.NoError(t, err)
	assert.Empty(t, misses)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	def := DefaultOptions()
	assert.Equal(t, def.CardWidth+2*def.Gap, img.Bounds().Dx())
}
