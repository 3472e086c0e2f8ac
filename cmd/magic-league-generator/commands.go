package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fsnotify/fsnotify"

	"github.com/poslogithub/magic-league-generator/internal/charts"
	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/deckimage"
	"github.com/poslogithub/magic-league-generator/internal/mtga/decklist"
	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

// errDecklistInvalid makes the process exit with status 2.
var errDecklistInvalid = errors.New("decklist is invalid")

func runInit(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	var lf leagueFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := configFile()
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := lf.apply(cfg); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runPool(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pool", flag.ContinueOnError)
	toClipboard := fs.Bool("clipboard", false, "Copy the decklist to the clipboard")
	out := fs.String("out", "", "Write the decklist to this file (relative to output_dir)")
	chart := fs.String("chart", "", "Also write an HTML pool report to this file")
	var lf leagueFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := lf.apply(cfg); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	req, err := a.service.RequestFromConfig(cfg)
	if err != nil {
		return err
	}
	pool, err := a.service.Pool(req)
	if err != nil {
		return err
	}
	printPoolSummary(os.Stderr, pool)

	text := a.service.ExportDecklist(pool)
	switch {
	case *toClipboard:
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, okStyle.Render(fmt.Sprintf("Copied %d cards to the clipboard", len(pool.Cards))))
	case *out != "":
		path := outputPath(cfg, *out)
		if err := writeOutput(path, text); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	default:
		fmt.Print(text)
	}

	if *chart != "" {
		path := outputPath(cfg, *chart)
		title := fmt.Sprintf("%s %s pool", pool.PlayerID, pool.Anchor.Format("2006-01-02"))
		if err := charts.SavePoolReport(path, title, pool.Cards); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}
	return nil
}

func runValidate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	file := fs.String("file", "", "Decklist file")
	fromClipboard := fs.Bool("clipboard", false, "Read the decklist from the clipboard")
	strip := fs.Bool("strip", false, "Remove invalid cards and put the unused pool in the sideboard")
	addUnused := fs.Bool("add-unused", false, "Put unused pool cards in the sideboard of a valid decklist")
	write := fs.Bool("write", false, "Write the fixed decklist back to -file")
	var lf leagueFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := lf.apply(cfg); err != nil {
		return err
	}

	text, err := readDecklist(*file, *fromClipboard)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	req, err := a.service.RequestFromConfig(cfg)
	if err != nil {
		return err
	}
	fixed, result, err := a.service.Fix(req, text, league.FixOptions{StripInvalid: *strip, AddUnused: *addUnused})
	if err != nil {
		return err
	}
	printValidation(os.Stdout, result)

	if fixed != text {
		switch {
		case *fromClipboard:
			if err := clipboard.WriteAll(fixed); err != nil {
				return fmt.Errorf("failed to write clipboard: %w", err)
			}
			fmt.Println(okStyle.Render("Copied the fixed decklist to the clipboard"))
		case *write:
			if err := writeOutput(*file, fixed); err != nil {
				return err
			}
			fmt.Println(okStyle.Render("Updated " + *file))
		default:
			fmt.Println()
			fmt.Print(fixed)
		}
		return nil
	}

	if !result.Valid {
		return errDecklistInvalid
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	file := fs.String("file", "", "Decklist file to watch")
	var lf leagueFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("specify the decklist with -file")
	}
	if err := lf.apply(cfg); err != nil {
		return err
	}
	path, err := filepath.Abs(*file)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	// The period can roll over while watching, so the request is rebuilt
	// on every check.
	check := func() {
		text, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[Watch] Error reading %s: %v", path, err)
			return
		}
		req, err := a.service.RequestFromConfig(cfg)
		if err != nil {
			log.Printf("[Watch] Error: %v", err)
			return
		}
		result, err := a.service.Validate(req, string(text))
		if err != nil {
			log.Printf("[Watch] Error: %v", err)
			return
		}
		fmt.Println(dimStyle.Render(time.Now().Format("15:04:05")))
		printValidation(os.Stdout, result)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("Error closing file watcher: %v", err)
		}
	}()

	// Editors often replace the file instead of writing it, so the
	// directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	check()
	fmt.Println(dimStyle.Render("Watching " + path + " (Ctrl+C to stop)"))

	const settle = 200 * time.Millisecond
	debounce := time.NewTimer(settle)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watch] File watcher error: %v", err)
		case <-debounce.C:
			check()
		}
	}
}

func runImage(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	file := fs.String("file", "", "Decklist file")
	fromClipboard := fs.Bool("clipboard", false, "Read the decklist from the clipboard")
	out := fs.String("out", "decklist.png", "Output PNG (relative to output_dir)")
	columns := fs.Int("columns", cfg.Image.Columns, "Cards per row")
	backFaces := fs.Bool("back", cfg.Image.BackFaces, "Add back faces of double-faced cards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := readDecklist(*file, *fromClipboard)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	cache, err := a.imageCache(newScryfallClient())
	if err != nil {
		return err
	}

	opts := deckimage.DefaultOptions()
	opts.Columns = *columns
	opts.BackFaces = *backFaces
	composer := deckimage.NewComposer(a.service.Catalog(), cache, opts)

	deckText, sideText := decklist.Separate(text)
	path := outputPath(cfg, *out)
	misses, err := composer.SavePNG(ctx, path, decklist.Parse(deckText, false), decklist.Parse(sideText, false))
	if err != nil {
		return err
	}

	for _, key := range misses {
		fmt.Fprintln(os.Stderr, warnStyle.Render("No image: "+key))
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runChart(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	file := fs.String("file", "", "Chart this decklist instead of the pool")
	out := fs.String("out", "pool-report.html", "Output HTML (relative to output_dir)")
	open := fs.Bool("open", false, "Open the report in a browser")
	var lf leagueFlags
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := lf.apply(cfg); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		title string
		cs    []*cards.Card
	)
	if *file != "" {
		text, err := readDecklist(*file, false)
		if err != nil {
			return err
		}
		deckText, _ := decklist.Separate(text)
		var misses []string
		cs, misses = a.service.Resolve(decklist.Parse(deckText, false))
		for _, key := range misses {
			fmt.Fprintln(os.Stderr, warnStyle.Render("Unknown card: "+key))
		}
		title = filepath.Base(*file)
	} else {
		req, err := a.service.RequestFromConfig(cfg)
		if err != nil {
			return err
		}
		pool, err := a.service.Pool(req)
		if err != nil {
			return err
		}
		cs = pool.Cards
		title = fmt.Sprintf("%s %s pool", pool.PlayerID, pool.Anchor.Format("2006-01-02"))
	}

	path := outputPath(cfg, *out)
	if err := charts.SavePoolReport(path, title, cs); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)

	if *open {
		return charts.OpenInBrowser(path)
	}
	return nil
}

func runSets(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sets", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.repo.ListSets(ctx)
	if err != nil {
		return err
	}
	synced := make(map[string]time.Time, len(records))
	for _, set := range records {
		synced[set.Code] = set.SyncedTime()
	}

	printSets(os.Stdout, a.service.Catalog(), a.service.Sets(), synced)
	return nil
}

func runPeriod(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("period", flag.ContinueOnError)
	mode := fs.String("mode", cfg.League.CadenceMode, "Cadence mode")
	anchor := fs.String("anchor", cfg.League.AnchorTimestamp, "Anchor timestamp for static mode (RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := sealed.ParseMode(*mode)
	if err != nil {
		return err
	}
	var static time.Time
	if s := strings.TrimSpace(*anchor); s != "" {
		if static, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("invalid anchor timestamp %q: %w", s, err)
		}
	}

	p, err := sealed.ResolvePeriod(m, time.Now(), static)
	if err != nil {
		return err
	}
	printPeriod(os.Stdout, p)
	return nil
}
