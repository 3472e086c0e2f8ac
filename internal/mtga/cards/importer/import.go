package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poslogithub/magic-league-generator/internal/storage/models"
	"github.com/poslogithub/magic-league-generator/internal/storage/repository"
)

// ImportStats summarizes one import.
type ImportStats struct {
	Sets     int
	Cards    int
	Skipped  int
	Duration time.Duration
}

// Importer loads synced set files into the card repository.
type Importer struct {
	repo repository.CardRepository
}

// NewImporter creates an importer.
func NewImporter(repo repository.CardRepository) *Importer {
	return &Importer{repo: repo}
}

// ReadSetFile reads a synced set file.
func ReadSetFile(path string) (*SetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read set file: %w", err)
	}
	var file SetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse set file %s: %w", path, err)
	}
	return &file, nil
}

// ImportFile imports one set file, replacing the set's previous cards.
func (im *Importer) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	start := time.Now()
	file, err := ReadSetFile(path)
	if err != nil {
		return nil, err
	}

	stats, err := im.importSet(ctx, file)
	if err != nil {
		return nil, err
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

// ImportDir imports every *.json set file in dir. Files are parsed
// concurrently and saved one set at a time.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*ImportStats, error) {
	start := time.Now()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list set files: %w", err)
	}
	sort.Strings(paths)

	files := make([]*SetFile, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			file, err := ReadSetFile(path)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &ImportStats{}
	for _, file := range files {
		stats, err := im.importSet(ctx, file)
		if err != nil {
			return nil, err
		}
		total.Sets += stats.Sets
		total.Cards += stats.Cards
		total.Skipped += stats.Skipped
	}
	total.Duration = time.Since(start)

	log.Printf("[Importer] Imported %d cards from %d sets in %v", total.Cards, total.Sets, total.Duration.Round(time.Millisecond))
	return total, nil
}

func (im *Importer) importSet(ctx context.Context, file *SetFile) (*ImportStats, error) {
	code := strings.ToUpper(file.Set.Code)
	if code == "" && len(file.Cards) > 0 {
		code = strings.ToUpper(file.Cards[0].SetCode)
	}
	if code == "" {
		return nil, fmt.Errorf("set file has no set code")
	}

	stats := &ImportStats{Sets: 1}
	rows := make([]*models.Card, 0, len(file.Cards))
	for i := range file.Cards {
		sc := &file.Cards[i]
		if sc.ID == "" {
			stats.Skipped++
			continue
		}
		row, err := ToRow(sc)
		if err != nil {
			log.Printf("[Importer] Warning: skipping %s: %v", sc.Name, err)
			stats.Skipped++
			continue
		}
		if row.SetCode != code {
			log.Printf("[Importer] Warning: skipping %s: set %s in %s file", sc.Name, row.SetCode, code)
			stats.Skipped++
			continue
		}
		rows = append(rows, row)
	}

	set := &models.CardSet{
		Code:       code,
		Name:       file.Set.Name,
		ReleasedAt: file.Set.ReleasedAt,
		CardCount:  len(rows),
		SyncedAt:   file.FetchedAt.UTC().Format(time.RFC3339),
	}
	if err := im.repo.ReplaceSet(ctx, set, rows); err != nil {
		return nil, fmt.Errorf("failed to import set %s: %w", code, err)
	}

	stats.Cards = len(rows)
	log.Printf("[Importer] Imported %d cards of %s (%d skipped)", stats.Cards, code, stats.Skipped)
	return stats, nil
}
