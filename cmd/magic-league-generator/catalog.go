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
	"strconv"
	"strings"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards/importer"
	"github.com/poslogithub/magic-league-generator/internal/storage"
)

// setArgs returns the set codes named on the command line, or the
// configured sets when none are.
func setArgs(cfg *config.Config, args []string) []string {
	if len(args) == 0 {
		args = cfg.League.Sets
	}
	var codes []string
	for _, code := range args {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func runSync(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	maxAge := fs.Duration("max-age", 24*time.Hour, "Reuse set files younger than this")
	lang := fs.String("lang", "", "Scryfall language code (default English)")
	noImport := fs.Bool("no-import", false, "Only download, do not import into the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codes := setArgs(cfg, fs.Args())
	if len(codes) == 0 {
		return errors.New("no sets given and none configured")
	}

	syncer := importer.NewSyncer(newScryfallClient(), importer.SyncOptions{
		DataDir: cfg.Paths.CatalogDataDir,
		Lang:    *lang,
		MaxAge:  *maxAge,
	})
	paths, err := syncer.SyncSets(ctx, codes)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Synced %s\n", p)
	}
	if *noImport {
		return nil
	}

	a, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	im := importer.NewImporter(a.repo)
	for _, p := range paths {
		stats, err := im.ImportFile(ctx, p)
		if err != nil {
			return err
		}
		printImportStats(stats)
	}
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dir := fs.String("dir", cfg.Paths.CatalogDataDir, "Directory of synced set files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	im := importer.NewImporter(a.repo)
	var stats *importer.ImportStats
	if files := fs.Args(); len(files) > 0 {
		for _, f := range files {
			if stats, err = im.ImportFile(ctx, f); err != nil {
				return err
			}
			printImportStats(stats)
		}
		return nil
	}

	if stats, err = im.ImportDir(ctx, *dir); err != nil {
		return err
	}
	printImportStats(stats)
	return nil
}

func printImportStats(stats *importer.ImportStats) {
	fmt.Printf("Imported %d sets, %d cards (%d skipped) in %s\n",
		stats.Sets, stats.Cards, stats.Skipped, stats.Duration.Round(time.Millisecond))
}

func runPrefetch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prefetch", flag.ContinueOnError)
	workers := fs.Int("workers", 4, "Concurrent downloads")
	clearCache := fs.Bool("clear", false, "Remove every cached image first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codes := setArgs(cfg, fs.Args())
	if len(codes) == 0 && !*clearCache {
		return errors.New("no sets given and none configured")
	}

	a, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	cache, err := a.imageCache(newScryfallClient())
	if err != nil {
		return err
	}

	if *clearCache {
		removed := cache.Stats().TotalFiles
		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Printf("Removed %d cached images\n", removed)
	}

	for _, code := range codes {
		rows, err := a.repo.ListCardsBySet(ctx, code)
		if err != nil {
			return err
		}
		seen := make(map[int]bool)
		var numbers []int
		for _, row := range rows {
			if !seen[row.SetNumber] {
				seen[row.SetNumber] = true
				numbers = append(numbers, row.SetNumber)
			}
		}
		if len(numbers) == 0 {
			slog.Warn("Set has no cards in the database", "set", code)
			continue
		}

		result, err := cache.PrefetchSet(ctx, code, numbers, *workers)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d cached, %d without image\n", code, result.Cached, result.Missing)
	}

	stats := cache.Stats()
	fmt.Println(dimStyle.Render(fmt.Sprintf("Cache: %d files, %.1f MB", stats.TotalFiles, float64(stats.TotalSize)/(1024*1024))))
	return nil
}

func runMigrate(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		printMigrationUsage()
		return errors.New("missing migrate command")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	mgr, err := storage.NewMigrationManager(cfg.Paths.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()
	mgr.SetLogger(slog.Default(), *debugMode || *debugModeShort)

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return err
		}
	case "down":
		fmt.Println("Rolling back all migrations...")
		if err := mgr.Down(); err != nil {
			return err
		}
	case "steps":
		if len(args) < 2 {
			return errors.New("usage: migrate steps <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[1], err)
		}
		if err := mgr.Steps(n); err != nil {
			return err
		}
	case "force":
		if len(args) < 2 {
			return errors.New("usage: migrate force <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := mgr.Force(v); err != nil {
			return err
		}
	case "status", "version":
	default:
		printMigrationUsage()
		return fmt.Errorf("unknown migrate command %q", args[0])
	}

	status, err := mgr.Status()
	if err != nil {
		return err
	}
	switch {
	case status.Dirty:
		fmt.Println(errorStyle.Render(fmt.Sprintf("Current version: %d (dirty - migration failed or interrupted)", status.Version)))
		fmt.Println("Use 'migrate force <version>' to recover")
	case status.Pending():
		fmt.Println(warnStyle.Render(fmt.Sprintf("Current version: %d (latest %d)", status.Version, status.Latest)))
	default:
		fmt.Println(okStyle.Render(fmt.Sprintf("Current version: %d (up to date)", status.Version)))
	}
	return nil
}

func printMigrationUsage() {
	fmt.Println("Usage: magic-league-generator migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply all pending migrations")
	fmt.Println("  down            Roll back all migrations")
	fmt.Println("  steps <n>       Apply n migrations (negative rolls back)")
	fmt.Println("  status          Show the current schema version")
	fmt.Println("  force <version> Set the version without migrating (recovery only)")
}

func runBackup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dir := fs.String("dir", "", "Backup directory (default: backups next to the database)")
	name := fs.String("name", "", "Backup name for create (default: timestamp)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bm := storage.NewBackupManager(cfg.Paths.DatabasePath, *dir)
	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"create"}
	}

	switch rest[0] {
	case "create":
		path, err := bm.Backup(ctx, *name)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Backup written to " + path))
	case "list":
		backups, err := bm.ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println(dimStyle.Render("No backups in " + bm.Dir()))
			return nil
		}
		for _, b := range backups {
			fmt.Printf("  %s %8.1f KB  %s  %s\n",
				commandStyle.Render(fmt.Sprintf("%-28s", b.Name)), float64(b.Size)/1024,
				b.ModTime.Format("2006-01-02 15:04"), dimStyle.Render(b.Checksum[:min(12, len(b.Checksum))]))
		}
	case "restore":
		if len(rest) < 2 {
			return errors.New("usage: backup restore <file>")
		}
		path := rest[1]
		if filepath.Base(path) == path {
			path = filepath.Join(bm.Dir(), path)
		}
		if err := bm.Restore(ctx, path); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Restored " + path))
	default:
		return fmt.Errorf("unknown backup command %q (create, list, restore)", rest[0])
	}
	return nil
}
