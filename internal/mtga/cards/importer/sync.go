package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/scryfall"
)

// SetFile is the on-disk form of one synced set.
type SetFile struct {
	Set       scryfall.Set    `json:"set"`
	Lang      string          `json:"lang"`
	FetchedAt time.Time       `json:"fetched_at"`
	Cards     []scryfall.Card `json:"cards"`
}

// SetSource fetches set data. *scryfall.Client implements it.
type SetSource interface {
	GetSet(ctx context.Context, code string) (*scryfall.Set, error)
	SetCards(ctx context.Context, setCode, lang string) ([]scryfall.Card, error)
}

// Syncer downloads sets into a data directory, one JSON file per set.
type Syncer struct {
	source  SetSource
	dataDir string
	lang    string
	maxAge  time.Duration
}

// SyncOptions configures a Syncer.
type SyncOptions struct {
	DataDir string
	Lang    string        // Scryfall language code; empty means English
	MaxAge  time.Duration // Files younger than this are reused; 0 always re-downloads
}

// NewSyncer creates a syncer.
func NewSyncer(source SetSource, opts SyncOptions) *Syncer {
	return &Syncer{
		source:  source,
		dataDir: opts.DataDir,
		lang:    opts.Lang,
		maxAge:  opts.MaxAge,
	}
}

// SetPath returns the file a set is synced to.
func SetPath(dataDir, setCode string) string {
	return filepath.Join(dataDir, strings.ToUpper(setCode)+".json")
}

// SyncSet downloads one set unless a fresh copy exists, and returns the
// path of its file.
func (s *Syncer) SyncSet(ctx context.Context, setCode string) (string, error) {
	path := SetPath(s.dataDir, setCode)

	if s.maxAge > 0 {
		if info, err := os.Stat(path); err == nil {
			if age := time.Since(info.ModTime()); age < s.maxAge {
				log.Printf("[Syncer] Using cached set %s (age: %v)", setCode, age.Round(time.Minute))
				return path, nil
			}
		}
	}

	set, err := s.source.GetSet(ctx, setCode)
	if err != nil {
		return "", fmt.Errorf("failed to sync set %s: %w", setCode, err)
	}
	printings, err := s.source.SetCards(ctx, setCode, s.lang)
	if err != nil {
		return "", fmt.Errorf("failed to sync set %s: %w", setCode, err)
	}

	file := SetFile{Set: *set, Lang: s.lang, FetchedAt: time.Now().UTC(), Cards: printings}
	if err := writeJSON(path, &file); err != nil {
		return "", fmt.Errorf("failed to write set %s: %w", setCode, err)
	}

	log.Printf("[Syncer] Synced %d cards of %s to %s", len(printings), setCode, path)
	return path, nil
}

// SyncSets syncs several sets concurrently and returns their paths in the
// order given.
func (s *Syncer) SyncSets(ctx context.Context, setCodes []string) ([]string, error) {
	paths := make([]string, len(setCodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, code := range setCodes {
		g.Go(func() error {
			path, err := s.SyncSet(ctx, code)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeJSON writes v to a temporary file and renames it into place, so an
// interrupted sync never leaves a truncated set file.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "set-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
