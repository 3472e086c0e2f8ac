// Package main runs the league REST API as a standalone server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/api"
	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/imagecache"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/scryfall"
	"github.com/poslogithub/magic-league-generator/internal/mtga/deckimage"
	"github.com/poslogithub/magic-league-generator/internal/storage"
	"github.com/poslogithub/magic-league-generator/internal/storage/repository"
	"github.com/poslogithub/magic-league-generator/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default ~/.magic-league-generator/config.toml)")
	addr       = flag.String("addr", "", "Listen address (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	noImages   = flag.Bool("no-images", false, "Disable the decklist image endpoint")
	debugMode  = flag.Bool("debug-mode", false, "Enable verbose debug logging")
)

func main() {
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if *dbPath != "" {
		cfg.Paths.DatabasePath = *dbPath
	}

	level := slog.LevelInfo
	if *debugMode || cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	fmt.Println("Magic League Generator - REST API Server")
	fmt.Println("========================================")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.Paths.DatabasePath)

	dbConfig := storage.DefaultConfig(cfg.Paths.DatabasePath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	repo := repository.NewCardRepository(db.Conn(), slog.Default())
	catalog, err := repo.LoadCatalog(context.Background())
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	fmt.Printf("Catalog: %d cards in %d sets\n", catalog.Len(), len(catalog.Sets()))

	service := league.NewService(catalog, league.Options{Language: cfg.App.Language})

	apiConfig := &api.Config{Address: cfg.Server.Address}
	if !*noImages {
		cache, err := imagecache.New(imagecache.Options{
			CacheDir: cfg.Paths.ImageCacheDir,
			MaxSize:  cfg.ImageCacheBytes(),
			Resolver: repo,
			Fetcher:  scryfall.NewClient(scryfall.WithUserAgent(version.UserAgent())),
		})
		if err != nil {
			log.Fatalf("Failed to open image cache: %v", err)
		}
		opts := deckimage.DefaultOptions()
		opts.Columns = cfg.Image.Columns
		opts.BackFaces = cfg.Image.BackFaces
		apiConfig.Images = deckimage.NewComposer(catalog, cache, opts)
	}

	server := api.NewServer(apiConfig, service)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}
