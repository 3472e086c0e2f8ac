package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

func samplePool() []*cards.Card {
	return []*cards.Card{
		{Name: "Opt", CMC: 1, ColorIdentity: "U", Rarity: cards.RarityCommon, IsNoncreatureSpellCard: true},
		{Name: "Grizzly Bears", CMC: 2, ColorIdentity: "G", Rarity: cards.RarityCommon, IsCreatureCard: true},
		{Name: "Kraul Harpooner", CMC: 2, ColorIdentity: "BG", Rarity: cards.RarityUncommon, IsCreatureCard: true},
		{Name: "Emrakul", CMC: 15, Rarity: cards.RarityMythicRare, IsCreatureCard: true},
		{Name: "Island", ColorIdentity: "U", Rarity: cards.RarityBasic, IsLandCard: true},
	}
}

func values(points []DataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func TestManaCurve(t *testing.T) {
	curve := ManaCurve(samplePool())
	require.Len(t, curve, MaxCurveBucket+1)
	assert.Equal(t, "7+", curve[MaxCurveBucket].Label)
	assert.Equal(t, []float64{0, 1, 2, 0, 0, 0, 0, 1}, values(curve))
}

func TestColorCounts(t *testing.T) {
	got := ColorCounts(samplePool())
	labels := make([]string, len(got))
	for i, p := range got {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"White", "Blue", "Black", "Red", "Green", "Multicolor", "Colorless"}, labels)
	assert.Equal(t, []float64{0, 2, 0, 0, 1, 1, 1}, values(got))
	assert.Len(t, manaColors, len(got))
}

func TestRarityAndTypeCounts(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 1, 0, 1}, values(RarityCounts(samplePool())))
	assert.Equal(t, []float64{3, 1, 1}, values(TypeCounts(samplePool())))
}

func TestRenderPoolReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPoolReport(&buf, "alice NEO pool", samplePool()))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"), "page should load echarts")
	assert.Contains(t, html, "alice NEO pool")
	assert.Contains(t, html, "Mana value")
}

func TestSavePoolReportAndBarChart(t *testing.T) {
	dir := t.TempDir()

	report := filepath.Join(dir, "pool.html")
	require.NoError(t, SavePoolReport(report, "pool", samplePool()))
	info, err := os.Stat(report)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	bar := filepath.Join(dir, "curve.html")
	require.NoError(t, RenderBarChart("Mana value", ManaCurve(samplePool()), DefaultChartConfig(), bar))
	_, err = os.Stat(bar)
	assert.NoError(t, err)
}
