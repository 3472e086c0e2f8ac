package sealed

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// PoolRequest identifies a pool. The same request against the same catalog
// always yields the same pool, so pools are regenerated rather than stored.
type PoolRequest struct {
	PlayerID   string
	Sets       []string // "" opens packs from the whole catalog
	PackCounts []int    // one per set; 0 skips the set
	Mode       Mode
	Anchor     time.Time // required in static mode, ignored otherwise
	Now        time.Time // defaults to time.Now()
}

// SetContribution records what one set added to the pool.
type SetContribution struct {
	Set   string `json:"set"`
	Packs int    `json:"packs"`
	Cards int    `json:"cards"`
	Err   error  `json:"-"`
}

// Pool is an ordered card pool. Each set's cards are sorted by collector
// number and the sets appear in request order.
type Pool struct {
	PlayerID      string            `json:"player_id"`
	Mode          Mode              `json:"mode"`
	Anchor        time.Time         `json:"anchor"`
	Cards         []*cards.Card     `json:"cards"`
	Contributions []SetContribution `json:"contributions"`
}

// Infeasible returns the sets that could not produce packs.
func (p *Pool) Infeasible() []string {
	var sets []string
	for _, c := range p.Contributions {
		if errors.Is(c.Err, ErrPackInfeasible) {
			sets = append(sets, c.Set)
		}
	}
	return sets
}

// Assembler opens packs for every set of a request.
type Assembler struct {
	Logger *slog.Logger
}

// AssemblePool assembles a pool with the default logger.
func AssemblePool(catalog *cards.Catalog, req PoolRequest) (*Pool, error) {
	return (&Assembler{}).Assemble(catalog, req)
}

// Assemble validates the request and assembles the pool. Request errors
// are returned as *ConfigurationError before any pack is opened. Sets that
// cannot produce a pack contribute nothing and are reported in the pool.
func (a *Assembler) Assemble(catalog *cards.Catalog, req PoolRequest) (*Pool, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	anchor, err := Anchor(req.Mode, now, req.Anchor)
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		PlayerID: req.PlayerID,
		Mode:     req.Mode,
		Anchor:   anchor,
	}
	opener := NewOpener(catalog)

	for i, setCode := range req.Sets {
		count := req.PackCounts[i]
		if count == 0 {
			continue
		}

		contribution := SetContribution{Set: setCode, Packs: count}
		r := DeriveSeed(req.PlayerID, setCode, anchor).Rand()

		var setCards []*cards.Card
		for n := 0; n < count; n++ {
			pack, err := opener.Open(setCode, r)
			if err != nil {
				contribution.Err = err
				setCards = nil
				break
			}
			setCards = append(setCards, pack...)
		}

		if contribution.Err != nil {
			logger.Warn("Skipping set", "set", setCode, "error", contribution.Err)
		} else {
			sort.SliceStable(setCards, func(i, j int) bool {
				return setCards[i].SetNumber < setCards[j].SetNumber
			})
			logger.Debug("Opened packs", "player", req.PlayerID, "set", setCode, "packs", count, "cards", len(setCards))
		}

		contribution.Cards = len(setCards)
		pool.Cards = append(pool.Cards, setCards...)
		pool.Contributions = append(pool.Contributions, contribution)
	}

	return pool, nil
}

func (req PoolRequest) validate() error {
	if req.PlayerID == "" {
		return configErrorf("player_id", "player id is required")
	}
	if !req.Mode.Valid() {
		return configErrorf("mode", "unknown cadence mode %q", string(req.Mode))
	}
	if req.Mode == ModeStatic && req.Anchor.IsZero() {
		return configErrorf("anchor", "static mode requires an anchor timestamp")
	}
	if len(req.Sets) != len(req.PackCounts) {
		return configErrorf("pack_counts", "got %d pack counts for %d sets", len(req.PackCounts), len(req.Sets))
	}
	for i, n := range req.PackCounts {
		if n < 0 {
			return configErrorf("pack_counts", "negative pack count %d for set %q", n, req.Sets[i])
		}
	}
	return nil
}
