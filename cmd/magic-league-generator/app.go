package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/imagecache"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/scryfall"
	"github.com/poslogithub/magic-league-generator/internal/storage"
	"github.com/poslogithub/magic-league-generator/internal/storage/repository"
	"github.com/poslogithub/magic-league-generator/internal/version"
)

// app holds the resources shared by the subcommands.
type app struct {
	cfg     *config.Config
	db      *storage.DB
	repo    repository.CardRepository
	service *league.Service
}

// openStore opens the card database, applying pending migrations.
func openStore(cfg *config.Config) (*app, error) {
	dbConfig := storage.DefaultConfig(cfg.Paths.DatabasePath)
	dbConfig.AutoMigrate = true

	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &app{
		cfg:  cfg,
		db:   db,
		repo: repository.NewCardRepository(db.Conn(), slog.Default()),
	}, nil
}

// openApp opens the database and loads the catalog into a league service.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := a.repo.LoadCatalog(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if catalog.Len() == 0 {
		slog.Warn("Card catalog is empty, run 'sync' to download sets", "database", cfg.Paths.DatabasePath)
	}

	a.service = league.NewService(catalog, league.Options{Language: cfg.App.Language})
	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func newScryfallClient() *scryfall.Client {
	return scryfall.NewClient(scryfall.WithUserAgent(version.UserAgent()))
}

// imageCache builds the image cache. Image URIs come from the card
// database, falling back to Scryfall for printings it does not hold.
func (a *app) imageCache(client *scryfall.Client) (*imagecache.Cache, error) {
	return imagecache.New(imagecache.Options{
		CacheDir: a.cfg.Paths.ImageCacheDir,
		MaxSize:  a.cfg.ImageCacheBytes(),
		Resolver: &fallbackResolver{primary: a.repo, fallback: client},
		Fetcher:  client,
		Logger:   slog.Default(),
	})
}

type fallbackResolver struct {
	primary  imagecache.Resolver
	fallback imagecache.Resolver
}

func (r *fallbackResolver) ImageURIs(ctx context.Context, setCode string, number int) (string, string, error) {
	front, back, err := r.primary.ImageURIs(ctx, setCode, number)
	if err == nil || !errors.Is(err, cards.ErrCardNotFound) {
		return front, back, err
	}

	front, back, err = r.fallback.ImageURIs(ctx, setCode, number)
	if scryfall.IsNotFound(err) {
		return "", "", fmt.Errorf("%s %d: %w", setCode, number, cards.ErrCardNotFound)
	}
	return front, back, err
}

// leagueFlags overrides league settings of the loaded config for one run.
type leagueFlags struct {
	player string
	sets   string
	mode   string
	anchor string
}

func (lf *leagueFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&lf.player, "player", "", "Player ID (overrides config)")
	fs.StringVar(&lf.sets, "sets", "", "Comma-separated set codes (overrides config)")
	fs.StringVar(&lf.mode, "mode", "", "Cadence mode: daily, weekly, monthly, random or static")
	fs.StringVar(&lf.anchor, "anchor", "", "Anchor timestamp for static mode (RFC 3339)")
}

func (lf *leagueFlags) apply(cfg *config.Config) error {
	if lf.player != "" {
		cfg.League.PlayerID = lf.player
	}
	if lf.sets != "" {
		cfg.League.Sets = strings.Split(lf.sets, ",")
		if cfg.League.PackMode == config.PackModeManual && len(cfg.League.PackCounts) != len(cfg.League.Sets) {
			cfg.League.PackMode = config.PackModeAuto
		}
	}
	if lf.mode != "" {
		cfg.League.CadenceMode = lf.mode
	}
	if lf.anchor != "" {
		cfg.League.AnchorTimestamp = lf.anchor
	}
	return cfg.Validate()
}

// readDecklist reads a decklist from a file or the clipboard.
func readDecklist(path string, fromClipboard bool) (string, error) {
	switch {
	case fromClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read decklist: %w", err)
		}
		return string(data), nil
	default:
		return "", errors.New("specify a decklist with -file or -clipboard")
	}
}

// outputPath places relative file names in the configured output directory.
func outputPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Paths.OutputDir, name)
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
