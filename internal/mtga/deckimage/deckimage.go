// Package deckimage renders a decklist as a grid of card images.
package deckimage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // card images are JPEG
	"image/png"
	"io"
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/decklist"
)

// ImageSource returns local paths of card images. *imagecache.Cache
// implements it.
type ImageSource interface {
	GetCardImage(ctx context.Context, name, setCode string, number int) (string, error)
	GetCardBackImage(ctx context.Context, name, setCode string, number int) (string, error)
}

// Options controls the grid layout.
type Options struct {
	Columns    int
	CardWidth  int
	CardHeight int
	Gap        int
	BackFaces  bool // Add a tile for the back face of double-faced cards
	Workers    int  // Concurrent image loads
	Logger     *slog.Logger
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		Columns:    10,
		CardWidth:  146,
		CardHeight: 204,
		Gap:        6,
		Workers:    4,
	}
}

// ErrEmptyDecklist is returned when neither board has a card to draw.
var ErrEmptyDecklist = errors.New("decklist is empty")

var (
	background = color.RGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff}
	missing    = color.RGBA{R: 0x55, G: 0x55, B: 0x5a, A: 0xff}
	labelBox   = color.RGBA{A: 0xc0}
)

// Composer draws decklists from catalog cards and cached images.
type Composer struct {
	catalog *cards.Catalog
	images  ImageSource
	opts    Options
	logger  *slog.Logger
}

// NewComposer creates a composer. Zero option fields take their defaults.
func NewComposer(catalog *cards.Catalog, images ImageSource, opts Options) *Composer {
	def := DefaultOptions()
	if opts.Columns <= 0 {
		opts.Columns = def.Columns
	}
	if opts.CardWidth <= 0 || opts.CardHeight <= 0 {
		opts.CardWidth, opts.CardHeight = def.CardWidth, def.CardHeight
	}
	if opts.Gap <= 0 {
		opts.Gap = def.Gap
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{catalog: catalog, images: images, opts: opts, logger: logger}
}

// Result is a composed decklist image.
type Result struct {
	Image *image.RGBA
	// Keys that matched no catalog card, or whose image could not be loaded.
	Misses []string
}

type tile struct {
	key   string
	card  *cards.Card
	count int
	back  bool
	img   image.Image
}

// Compose draws the deck, then the sideboard starting on a new row. Each
// distinct card is one tile labelled with its count.
func (c *Composer) Compose(ctx context.Context, deck, sideboard *decklist.Cards) (*Result, error) {
	result := &Result{}
	deckTiles := c.tiles(deck, result)
	sideTiles := c.tiles(sideboard, result)

	all := append(append([]*tile{}, deckTiles...), sideTiles...)
	if len(all) == 0 && len(result.Misses) == 0 {
		return nil, ErrEmptyDecklist
	}
	if err := c.load(ctx, all); err != nil {
		return nil, err
	}

	// Back-face tiles whose card turned out to be single faced are dropped.
	deckTiles = withoutMissingBacks(deckTiles)
	sideTiles = withoutMissingBacks(sideTiles)
	for _, t := range append(append([]*tile{}, deckTiles...), sideTiles...) {
		if t.img == nil {
			result.Misses = append(result.Misses, t.key)
		}
	}

	rects, bounds := Layout(len(deckTiles), len(sideTiles), c.opts)
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.NewUniform(background), image.Point{}, draw.Src)

	for i, t := range append(deckTiles, sideTiles...) {
		c.drawTile(canvas, rects[i], t)
	}

	result.Image = canvas
	return result, nil
}

// WritePNG composes the decklist and encodes it as PNG.
func (c *Composer) WritePNG(ctx context.Context, w io.Writer, deck, sideboard *decklist.Cards) ([]string, error) {
	result, err := c.Compose(ctx, deck, sideboard)
	if err != nil {
		return nil, err
	}
	if err := png.Encode(w, result.Image); err != nil {
		return nil, fmt.Errorf("failed to encode deck image: %w", err)
	}
	return result.Misses, nil
}

// SavePNG composes the decklist into a PNG file.
func (c *Composer) SavePNG(ctx context.Context, path string, deck, sideboard *decklist.Cards) ([]string, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck image: %w", err)
	}
	misses, err := c.WritePNG(ctx, f, deck, sideboard)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return misses, err
}

func (c *Composer) tiles(board *decklist.Cards, result *Result) []*tile {
	if board == nil {
		return nil
	}
	var tiles []*tile
	for _, key := range board.Keys() {
		n := board.Get(key)
		if n <= 0 {
			continue
		}
		card, err := decklist.Lookup(c.catalog, key)
		if err != nil {
			c.logger.Warn("Card not in catalog", "key", key)
			result.Misses = append(result.Misses, key)
			continue
		}
		tiles = append(tiles, &tile{key: key, card: card, count: n})
		if c.opts.BackFaces {
			tiles = append(tiles, &tile{key: key, card: card, count: n, back: true})
		}
	}
	return tiles
}

// load fetches and decodes tile images concurrently. Images that cannot be
// loaded leave the tile empty.
func (c *Composer) load(ctx context.Context, tiles []*tile) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for _, t := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := c.loadImage(ctx, t)
			if err != nil {
				if !t.back {
					c.logger.Warn("Card image unavailable", "key", t.key, "error", err)
				}
				return nil
			}
			t.img = img
			return nil
		})
	}
	return g.Wait()
}

func (c *Composer) loadImage(ctx context.Context, t *tile) (image.Image, error) {
	get := c.images.GetCardImage
	if t.back {
		get = c.images.GetCardBackImage
	}
	path, err := get(ctx, t.card.Name, t.card.SetCode, t.card.SetNumber)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func (c *Composer) drawTile(canvas *image.RGBA, r image.Rectangle, t *tile) {
	if t.img == nil {
		draw.Draw(canvas, r, image.NewUniform(missing), image.Point{}, draw.Src)
		drawText(canvas, r.Min.X+4, r.Min.Y+16, t.card.Name)
	} else {
		draw.CatmullRom.Scale(canvas, r, t.img, t.img.Bounds(), draw.Over, nil)
	}
	if t.back {
		return
	}

	label := "x" + strconv.Itoa(t.count)
	face := basicfont.Face7x13
	width := font.MeasureString(face, label).Ceil()
	box := image.Rect(r.Min.X, r.Max.Y-face.Height-6, r.Min.X+width+8, r.Max.Y)
	draw.Draw(canvas, box, image.NewUniform(labelBox), image.Point{}, draw.Over)
	drawText(canvas, box.Min.X+4, r.Max.Y-4-face.Descent, label)
}

func drawText(dst draw.Image, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func withoutMissingBacks(tiles []*tile) []*tile {
	kept := tiles[:0]
	for _, t := range tiles {
		if t.back && t.img == nil {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// Layout returns the rectangle of every deck tile followed by every
// sideboard tile, and the canvas bounds. The sideboard starts on a new row
// separated by an extra gap.
func Layout(deckTiles, sideTiles int, opts Options) ([]image.Rectangle, image.Rectangle) {
	cols, w, h, gap := opts.Columns, opts.CardWidth, opts.CardHeight, opts.Gap
	rects := make([]image.Rectangle, 0, deckTiles+sideTiles)

	y := gap
	place := func(n int) {
		for i := 0; i < n; i++ {
			col := i % cols
			if i > 0 && col == 0 {
				y += h + gap
			}
			x := gap + col*(w+gap)
			rects = append(rects, image.Rect(x, y, x+w, y+h))
		}
		if n > 0 {
			y += h + gap
		}
	}

	place(deckTiles)
	if sideTiles > 0 {
		if deckTiles > 0 {
			y += 2 * gap
		}
		place(sideTiles)
	}

	used := min(cols, max(deckTiles, sideTiles))
	if used == 0 {
		return rects, image.Rect(0, 0, 2*gap, 2*gap)
	}
	return rects, image.Rect(0, 0, gap+used*(w+gap), y)
}
