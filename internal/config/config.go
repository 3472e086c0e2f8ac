// Package config loads and saves the league configuration document.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

// Pack modes.
const (
	PackModeAuto   = "auto"
	PackModeManual = "manual"
)

// DirName is the per-user directory holding the config file and data.
const DirName = ".magic-league-generator"

// Config represents the application configuration. Every key can be
// overridden by an MLG_* environment variable.
type Config struct {
	League LeagueConfig `toml:"league"`
	Paths  PathsConfig  `toml:"paths"`
	Image  ImageConfig  `toml:"image"`
	Server ServerConfig `toml:"server"`
	App    AppConfig    `toml:"app"`
}

// LeagueConfig identifies the player and how their pool is issued.
type LeagueConfig struct {
	PlayerID        string   `toml:"player_id" env:"MLG_PLAYER_ID"`
	Sets            []string `toml:"sets" env:"MLG_SETS"`
	CadenceMode     string   `toml:"cadence_mode" env:"MLG_CADENCE_MODE"`         // daily, weekly, monthly, random or static
	PackMode        string   `toml:"pack_mode" env:"MLG_PACK_MODE"`               // auto or manual
	PackCounts      []int    `toml:"pack_counts" env:"MLG_PACK_COUNTS"`           // Used in manual pack mode
	AnchorTimestamp string   `toml:"anchor_timestamp" env:"MLG_ANCHOR_TIMESTAMP"` // RFC 3339, static mode only
}

// PathsConfig contains file locations.
type PathsConfig struct {
	CatalogDataDir string `toml:"catalog_data_dir" env:"MLG_CATALOG_DATA_DIR"`
	ImageCacheDir  string `toml:"image_cache_dir" env:"MLG_IMAGE_CACHE_DIR"`
	OutputDir      string `toml:"output_dir" env:"MLG_OUTPUT_DIR"`
	DatabasePath   string `toml:"database_path" env:"MLG_DATABASE_PATH"`
}

// ImageConfig contains decklist image settings.
type ImageConfig struct {
	Columns   int  `toml:"columns" env:"MLG_IMAGE_COLUMNS"`
	BackFaces bool `toml:"back_faces" env:"MLG_IMAGE_BACK_FACES"`
	CacheMB   int  `toml:"cache_mb" env:"MLG_IMAGE_CACHE_MB"` // 0 = unlimited
}

// ServerConfig contains REST API settings.
type ServerConfig struct {
	Address string `toml:"address" env:"MLG_SERVER_ADDRESS"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	Language  string `toml:"language" env:"MLG_LANGUAGE"` // Decklist language: en or ja
	DebugMode bool   `toml:"debug_mode" env:"MLG_DEBUG_MODE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	base := baseDir()
	return &Config{
		League: LeagueConfig{
			CadenceMode: string(sealed.ModeMonthly),
			PackMode:    PackModeAuto,
		},
		Paths: PathsConfig{
			CatalogDataDir: filepath.Join(base, "sets"),
			ImageCacheDir:  filepath.Join(base, "image-cache"),
			OutputDir:      ".",
			DatabasePath:   filepath.Join(base, "cards.db"),
		},
		Image: ImageConfig{
			Columns: 10,
			CacheMB: 500,
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		App: AppConfig{
			Language: "en",
		},
	}
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(homeDir, DirName)
}

// DefaultPath returns the path of the user's config file.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// Load loads the user's config file, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads the config file at path over the defaults, then applies
// environment overrides from the process and an optional .env file. A
// missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Variables already in the environment win over .env entries.
	_ = godotenv.Load()
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the user's config file.
func (c *Config) Save() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo writes the configuration as TOML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	mode, err := c.Mode()
	if err != nil {
		return err
	}

	switch c.League.PackMode {
	case PackModeAuto:
	case PackModeManual:
		if len(c.League.PackCounts) != len(c.League.Sets) {
			return fmt.Errorf("manual pack mode needs one pack count per set: got %d for %d sets",
				len(c.League.PackCounts), len(c.League.Sets))
		}
		for i, n := range c.League.PackCounts {
			if n < 0 {
				return fmt.Errorf("pack count for %s cannot be negative: %d", c.League.Sets[i], n)
			}
		}
	default:
		return fmt.Errorf("invalid pack mode %q", c.League.PackMode)
	}

	anchor, err := c.Anchor()
	if err != nil {
		return err
	}
	if mode == sealed.ModeStatic && anchor.IsZero() {
		return fmt.Errorf("static cadence mode requires anchor_timestamp")
	}

	if c.Image.Columns < 1 {
		return fmt.Errorf("image columns must be at least 1: %d", c.Image.Columns)
	}
	if c.Image.CacheMB < 0 {
		return fmt.Errorf("image cache size cannot be negative: %d", c.Image.CacheMB)
	}

	return nil
}

// Mode returns the configured cadence mode.
func (c *Config) Mode() (sealed.Mode, error) {
	return sealed.ParseMode(c.League.CadenceMode)
}

// Anchor returns the configured anchor timestamp, or the zero time when
// none is set.
func (c *Config) Anchor() (time.Time, error) {
	s := strings.TrimSpace(c.League.AnchorTimestamp)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor timestamp %q: %w", s, err)
	}
	return t, nil
}

// PackCounts returns the packs per set at now. In auto mode the first set
// receives the cadence's pack count and the other sets none; in manual mode
// the configured counts are used as they are.
func (c *Config) PackCounts(now time.Time) ([]int, error) {
	if c.League.PackMode == PackModeManual {
		return append([]int(nil), c.League.PackCounts...), nil
	}

	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	anchor, err := c.Anchor()
	if err != nil {
		return nil, err
	}
	period, err := sealed.ResolvePeriod(mode, now, anchor)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(c.League.Sets))
	if len(counts) > 0 {
		counts[0] = period.Packs
	}
	return counts, nil
}

// ImageCacheBytes returns the image cache limit in bytes.
func (c *Config) ImageCacheBytes() int64 {
	return int64(c.Image.CacheMB) * 1024 * 1024
}
