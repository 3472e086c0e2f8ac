package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/version"
)

var (
	configPath     = flag.String("config", "", "Path to config.toml (default ~/.magic-league-generator/config.toml)")
	debugMode      = flag.Bool("debug-mode", false, "Enable verbose debug logging")
	debugModeShort = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")
)

// command is a subcommand entry point. args excludes the command name.
type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"init":     runInit,
	"pool":     runPool,
	"validate": runValidate,
	"watch":    runWatch,
	"image":    runImage,
	"chart":    runChart,
	"sets":     runSets,
	"period":   runPeriod,
	"sync":     runSync,
	"import":   runImport,
	"prefetch": runPrefetch,
	"migrate":  runMigrate,
	"backup":   runBackup,
	"version":  runVersion,
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 || args[0] == "help" {
		printUsage()
		if len(args) == 0 {
			os.Exit(1)
		}
		return
	}

	run, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	setupLogging(cfg.App.DebugMode || *debugMode || *debugModeShort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, args[1:])
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errDecklistInvalid):
		os.Exit(2)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		log.Fatalf("Error: %v", err)
	}
}

func runVersion(context.Context, *config.Config, []string) error {
	fmt.Println("magic-league-generator " + version.String())
	return nil
}

func configFile() string {
	if *configPath != "" {
		return *configPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile())
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	if debug {
		log.Println("Debug logging enabled")
	}
}

func printUsage() {
	fmt.Println(titleStyle.Render("Magic League Generator"))
	fmt.Println()
	fmt.Println("Usage: magic-league-generator [-config path] [-d] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	usage := []struct{ cmd, desc string }{
		{"init", "Write a default config file"},
		{"pool", "Generate the current pool as a decklist"},
		{"validate", "Check a decklist against the pool, optionally fixing it"},
		{"watch", "Re-validate a decklist file whenever it is saved"},
		{"image", "Render a decklist as a PNG image"},
		{"chart", "Write an HTML report of mana curve, colors and rarities"},
		{"sets", "List sets that can produce a pack"},
		{"period", "Show the current allotment period"},
		{"sync", "Download set data from Scryfall and import it"},
		{"import", "Import downloaded set files into the card database"},
		{"prefetch", "Download card images of sets into the image cache"},
		{"migrate", "Run database migrations (up/down/steps/status/force)"},
		{"backup", "Back up or restore the card database (create/list/restore)"},
		{"version", "Show version"},
	}
	for _, u := range usage {
		fmt.Printf("  %s %s\n", commandStyle.Render(fmt.Sprintf("%-10s", u.cmd)), dimStyle.Render(u.desc))
	}
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  magic-league-generator sync NEO SNC")
	fmt.Println("  magic-league-generator pool -clipboard")
	fmt.Println("  magic-league-generator validate -clipboard -strip")
	fmt.Println("  magic-league-generator image -file deck.txt -out deck.png")
	fmt.Println()
	fmt.Printf("Config file: %s\n", configFile())
}
