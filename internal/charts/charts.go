// Package charts renders card-pool statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// Mana colors in WUBRG order, then multicolor and colorless, matching
// ColorCounts.
var manaColors = []string{"#F8E7B9", "#0E68AB", "#3B3B3B", "#D3202A", "#00733E", "#CFB53B", "#A0A0A0"}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

// NewBarChart builds a single-series bar chart.
func NewBarChart(series string, data []DataPoint, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(config.globalOptions(),
		charts.WithColorsOpts(opts.Colors{config.Colors[0]}),
	)...)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(series, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)
	return bar
}

// NewPieChart builds a pie chart. Zero slices are left out.
func NewPieChart(series string, data []DataPoint, config ChartConfig) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(append(config.globalOptions(),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)...)

	var slices []opts.PieData
	for _, point := range data {
		if point.Value == 0 {
			continue
		}
		slices = append(slices, opts.PieData{Name: point.Label, Value: point.Value})
	}

	pie.AddSeries(series, slices).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)
	return pie
}

// RenderBarChart creates an interactive bar chart HTML file.
func RenderBarChart(series string, data []DataPoint, config ChartConfig, outputPath string) error {
	return renderFile(outputPath, NewBarChart(series, data, config))
}

// RenderPoolReport writes one HTML page with the mana curve, color, type
// and rarity breakdowns of a pool or deck.
func RenderPoolReport(w io.Writer, title string, cs []*cards.Card) error {
	config := DefaultChartConfig()
	config.Height = "400px"

	curve := config
	curve.Title = title
	curve.Subtitle = fmt.Sprintf("%d cards", len(cs))

	colors := config
	colors.Title = "Colors"
	colors.Colors = manaColors

	types := config
	types.Title = "Card types"

	rarities := config
	rarities.Title = "Rarity"

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		NewBarChart("Mana value", ManaCurve(cs), curve),
		NewPieChart("Colors", ColorCounts(cs), colors),
		NewPieChart("Types", TypeCounts(cs), types),
		NewBarChart("Rarity", RarityCounts(cs), rarities),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SavePoolReport writes RenderPoolReport output to a file.
func SavePoolReport(outputPath, title string, cs []*cards.Card) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return RenderPoolReport(f, title, cs)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderFile(outputPath string, chart renderer) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
