// Package league ties the catalog, pool generation and decklist
// reconciliation together for the command line and the REST API.
package league

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/config"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/decklist"
	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

// Options configures a Service.
type Options struct {
	Logger     *slog.Logger
	Language   string           // Decklist headers: en or ja
	BasicLands []string         // Defaults to decklist.DefaultBasicLands
	Now        func() time.Time // Defaults to time.Now
}

// Service answers pool and decklist questions against one catalog.
type Service struct {
	catalog    *cards.Catalog
	assembler  *sealed.Assembler
	reconciler *decklist.Reconciler
	headers    decklist.Headers
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a service over the catalog.
func NewService(catalog *cards.Catalog, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	basics := opts.BasicLands
	if basics == nil {
		basics = decklist.DefaultBasicLands
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	headers := decklist.HeadersFor(opts.Language)

	return &Service{
		catalog:    catalog,
		assembler:  &sealed.Assembler{Logger: logger},
		reconciler: decklist.NewReconciler(basics, headers),
		headers:    headers,
		logger:     logger,
		now:        now,
	}
}

// Catalog returns the service's catalog.
func (s *Service) Catalog() *cards.Catalog {
	return s.catalog
}

// Headers returns the decklist section headers in use.
func (s *Service) Headers() decklist.Headers {
	return s.headers
}

// RequestFromConfig builds the pool request the configuration describes at
// the current time. Blank set entries are skipped.
func (s *Service) RequestFromConfig(cfg *config.Config) (sealed.PoolRequest, error) {
	now := s.now()

	mode, err := cfg.Mode()
	if err != nil {
		return sealed.PoolRequest{}, err
	}
	anchor, err := cfg.Anchor()
	if err != nil {
		return sealed.PoolRequest{}, &sealed.ConfigurationError{Field: "anchor", Reason: err.Error()}
	}
	counts, err := cfg.PackCounts(now)
	if err != nil {
		return sealed.PoolRequest{}, err
	}
	if len(counts) != len(cfg.League.Sets) {
		return sealed.PoolRequest{}, &sealed.ConfigurationError{
			Field:  "pack_counts",
			Reason: fmt.Sprintf("got %d pack counts for %d sets", len(counts), len(cfg.League.Sets)),
		}
	}

	req := sealed.PoolRequest{
		PlayerID: cfg.League.PlayerID,
		Mode:     mode,
		Anchor:   anchor,
		Now:      now,
	}
	for i, set := range cfg.League.Sets {
		set = strings.ToUpper(strings.TrimSpace(set))
		if set == "" {
			continue
		}
		req.Sets = append(req.Sets, set)
		req.PackCounts = append(req.PackCounts, counts[i])
	}
	return req, nil
}

// Pool assembles the pool for a request.
func (s *Service) Pool(req sealed.PoolRequest) (*sealed.Pool, error) {
	if req.Now.IsZero() {
		req.Now = s.now()
	}
	pool, err := s.assembler.Assemble(s.catalog, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Generated pool", "player", req.PlayerID, "mode", req.Mode, "cards", len(pool.Cards))
	return pool, nil
}

// ExportDecklist renders a pool as a deck section of full keys.
func (s *Service) ExportDecklist(pool *sealed.Pool) string {
	return decklist.Format(decklist.FromCards(pool.Cards, false), false, s.headers)
}

// ValidationResult is the outcome of checking a decklist against a pool.
// Invalid holds the cards used beyond what the pool holds, by key and
// excess count. Unused holds the pool cards the decklist does not use.
type ValidationResult struct {
	Valid   bool            `json:"valid"`
	Invalid *decklist.Cards `json:"invalid"`
	Unused  *decklist.Cards `json:"unused"`
	Pool    *sealed.Pool    `json:"-"`
}

// Validate regenerates the request's pool and checks the decklist against
// it. Random-mode pools cannot be regenerated and are refused.
func (s *Service) Validate(req sealed.PoolRequest, text string) (*ValidationResult, error) {
	if !req.Mode.Reproducible() {
		return nil, &sealed.ConfigurationError{Field: "mode", Reason: "random pools cannot be regenerated for validation"}
	}
	pool, err := s.Pool(req)
	if err != nil {
		return nil, err
	}

	invalid := s.reconciler.Validate(text, pool.Cards)
	result := &ValidationResult{
		Valid:   invalid.Total() == 0,
		Invalid: invalid,
		Unused:  s.reconciler.DiffCards(pool.Cards, text),
		Pool:    pool,
	}
	if !result.Valid {
		s.logger.Warn("Decklist uses cards outside the pool", "player", req.PlayerID, "cards", invalid.Total())
	}
	return result, nil
}

// FixOptions selects the corrections Fix applies.
type FixOptions struct {
	StripInvalid bool // Remove cards the pool does not hold
	AddUnused    bool // Put unused pool cards in the sideboard
}

// Fix validates the decklist and returns it corrected. An invalid decklist
// is only rewritten when StripInvalid is set, and then always gets the
// unused pool cards as its sideboard. A valid decklist gets them only when
// AddUnused is set. Otherwise the text is returned unchanged.
func (s *Service) Fix(req sealed.PoolRequest, text string, opts FixOptions) (string, *ValidationResult, error) {
	result, err := s.Validate(req, text)
	if err != nil {
		return "", nil, err
	}

	switch {
	case !result.Valid && opts.StripInvalid:
		stripped := s.reconciler.StripInvalidCards(text, result.Invalid)
		return s.reconciler.AddDiffToSideboard(stripped, result.Pool.Cards), result, nil
	case result.Valid && opts.AddUnused && result.Unused.Total() > 0:
		return s.reconciler.AddDiffToSideboard(text, result.Pool.Cards), result, nil
	default:
		return text, result, nil
	}
}

// Period returns the allotment period of a mode at the current time.
func (s *Service) Period(mode sealed.Mode, static time.Time) (sealed.Period, error) {
	return sealed.ResolvePeriod(mode, s.now(), static)
}

// Sets returns the sorted codes of sets that can produce a pack.
func (s *Service) Sets() []string {
	return s.catalog.SealedableSets()
}

// Resolve maps decklist keys to catalog cards.
func (s *Service) Resolve(c *decklist.Cards) ([]*cards.Card, []string) {
	return decklist.Resolve(s.catalog, c)
}
