package sealed

import (
	"bytes"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

func poolCatalog() *cards.Catalog {
	return buildCatalog(
		setSpec{code: "NEO", mythic: 5, rare: 20, uncommon: 40, common: 80, basics: 5},
		setSpec{code: "SNC", mythic: 5, rare: 20, uncommon: 40, common: 80},
		setSpec{code: "BAD", rare: 10, uncommon: 0, common: 50},
	)
}

var poolNow = time.Date(2022, 4, 15, 12, 0, 0, 0, time.UTC)

func TestAssemble_Deterministic(t *testing.T) {
	catalog := poolCatalog()
	req := PoolRequest{
		PlayerID:   "player#12345",
		Sets:       []string{"NEO", "SNC"},
		PackCounts: []int{6, 6},
		Mode:       ModeMonthly,
		Now:        poolNow,
	}

	p1, err := AssemblePool(catalog, req)
	require.NoError(t, err)

	// Any time inside the same period yields the same pool.
	req.Now = poolNow.Add(5 * 24 * time.Hour)
	p2, err := AssemblePool(catalog, req)
	require.NoError(t, err)

	assert.Equal(t, p1.Anchor, p2.Anchor)
	assert.Equal(t, p1.Cards, p2.Cards)
	assert.Len(t, p1.Cards, 6*15+6*14)
}

func TestAssemble_DifferentPlayersDiffer(t *testing.T) {
	catalog := poolCatalog()
	req := PoolRequest{PlayerID: "alice", Sets: []string{"NEO"}, PackCounts: []int{6}, Mode: ModeWeekly, Now: poolNow}

	a, err := AssemblePool(catalog, req)
	require.NoError(t, err)
	req.PlayerID = "bob"
	b, err := AssemblePool(catalog, req)
	require.NoError(t, err)

	assert.NotEqual(t, a.Cards, b.Cards)
}

func TestAssemble_Ordering(t *testing.T) {
	pool, err := AssemblePool(poolCatalog(), PoolRequest{
		PlayerID:   "alice",
		Sets:       []string{"SNC", "NEO"},
		PackCounts: []int{2, 3},
		Mode:       ModeDaily,
		Now:        poolNow,
	})
	require.NoError(t, err)
	require.Len(t, pool.Cards, 2*14+3*15)

	snc, neo := pool.Cards[:28], pool.Cards[28:]
	for _, c := range snc {
		assert.Equal(t, "SNC", c.SetCode)
	}
	for _, c := range neo {
		assert.Equal(t, "NEO", c.SetCode)
	}

	bySetNumber := func(s []*cards.Card) func(i, j int) bool {
		return func(i, j int) bool { return s[i].SetNumber < s[j].SetNumber }
	}
	assert.True(t, sort.SliceIsSorted(snc, bySetNumber(snc)))
	assert.True(t, sort.SliceIsSorted(neo, bySetNumber(neo)))
}

func TestAssemble_InfeasibleSetIsSkipped(t *testing.T) {
	var logs bytes.Buffer
	a := &Assembler{Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	pool, err := a.Assemble(poolCatalog(), PoolRequest{
		PlayerID:   "alice",
		Sets:       []string{"BAD", "NEO"},
		PackCounts: []int{6, 1},
		Mode:       ModeDaily,
		Now:        poolNow,
	})
	require.NoError(t, err)

	assert.Len(t, pool.Cards, 15)
	for _, c := range pool.Cards {
		assert.Equal(t, "NEO", c.SetCode)
	}
	assert.Equal(t, []string{"BAD"}, pool.Infeasible())

	require.Len(t, pool.Contributions, 2)
	assert.True(t, errors.Is(pool.Contributions[0].Err, ErrPackInfeasible))
	assert.Zero(t, pool.Contributions[0].Cards)
	assert.NoError(t, pool.Contributions[1].Err)
	assert.Equal(t, 15, pool.Contributions[1].Cards)

	assert.Contains(t, logs.String(), "set=BAD")
}

func TestAssemble_InfeasibleSetDoesNotShiftOthers(t *testing.T) {
	catalog := poolCatalog()
	base := PoolRequest{PlayerID: "alice", Mode: ModeDaily, Now: poolNow}

	withBad := base
	withBad.Sets, withBad.PackCounts = []string{"BAD", "NEO"}, []int{6, 2}
	withoutBad := base
	withoutBad.Sets, withoutBad.PackCounts = []string{"NEO"}, []int{2}

	p1, err := AssemblePool(catalog, withBad)
	require.NoError(t, err)
	p2, err := AssemblePool(catalog, withoutBad)
	require.NoError(t, err)

	assert.Equal(t, p2.Cards, p1.Cards)
}

func TestAssemble_ZeroCountSkipsSet(t *testing.T) {
	pool, err := AssemblePool(poolCatalog(), PoolRequest{
		PlayerID:   "alice",
		Sets:       []string{"NEO", "SNC"},
		PackCounts: []int{0, 1},
		Mode:       ModeDaily,
		Now:        poolNow,
	})
	require.NoError(t, err)

	assert.Len(t, pool.Cards, 14)
	require.Len(t, pool.Contributions, 1)
	assert.Equal(t, "SNC", pool.Contributions[0].Set)
}

func TestAssemble_StaticMode(t *testing.T) {
	anchor := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	req := PoolRequest{
		PlayerID:   "alice",
		Sets:       []string{"NEO"},
		PackCounts: []int{1},
		Mode:       ModeStatic,
		Anchor:     anchor,
		Now:        poolNow,
	}

	catalog := poolCatalog()
	p1, err := AssemblePool(catalog, req)
	require.NoError(t, err)
	assert.Equal(t, anchor, p1.Anchor)

	req.Now = poolNow.AddDate(1, 0, 0)
	p2, err := AssemblePool(catalog, req)
	require.NoError(t, err)
	assert.Equal(t, p1.Cards, p2.Cards)
}

func TestAssemble_ConfigurationErrors(t *testing.T) {
	valid := PoolRequest{PlayerID: "alice", Sets: []string{"NEO"}, PackCounts: []int{6}, Mode: ModeDaily, Now: poolNow}

	tests := []struct {
		name      string
		mutate    func(*PoolRequest)
		wantField string
	}{
		{"missing player", func(r *PoolRequest) { r.PlayerID = "" }, "player_id"},
		{"unknown mode", func(r *PoolRequest) { r.Mode = "hourly" }, "mode"},
		{"static without anchor", func(r *PoolRequest) { r.Mode = ModeStatic }, "anchor"},
		{"mismatched counts", func(r *PoolRequest) { r.PackCounts = []int{6, 6} }, "pack_counts"},
		{"negative count", func(r *PoolRequest) { r.PackCounts = []int{-1} }, "pack_counts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			pool, err := AssemblePool(poolCatalog(), req)
			assert.Nil(t, pool)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestAssemble_RandomModeVaries(t *testing.T) {
	req := PoolRequest{PlayerID: "alice", Sets: []string{"NEO"}, PackCounts: []int{3}, Mode: ModeRandom, Now: poolNow}
	catalog := poolCatalog()
	p1, err := AssemblePool(catalog, req)
	require.NoError(t, err)
	req.Now = poolNow.Add(time.Millisecond)
	p2, err := AssemblePool(catalog, req)
	require.NoError(t, err)

	assert.NotEqual(t, p1.Cards, p2.Cards)
}
