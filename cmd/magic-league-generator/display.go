package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	commandStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0")).Width(12)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true)
)

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label), value)
}

func formatTime(t time.Time) string {
	return fmt.Sprintf("%s %s", t.Local().Format("2006-01-02 15:04 MST"), dimStyle.Render("("+t.UTC().Format(time.RFC3339)+")"))
}

func printPoolSummary(w io.Writer, pool *sealed.Pool) {
	fmt.Fprintln(w, titleStyle.Render("Pool"))
	printField(w, "Player", pool.PlayerID)
	printField(w, "Mode", string(pool.Mode))
	printField(w, "Anchor", formatTime(pool.Anchor))
	printField(w, "Cards", fmt.Sprint(len(pool.Cards)))

	for _, c := range pool.Contributions {
		if c.Err != nil {
			printField(w, c.Set, warnStyle.Render(c.Err.Error()))
			continue
		}
		printField(w, c.Set, fmt.Sprintf("%d packs, %d cards", c.Packs, c.Cards))
	}
}

func printValidation(w io.Writer, result *league.ValidationResult) {
	if result.Valid {
		fmt.Fprintln(w, okStyle.Render("Decklist is valid"))
	} else {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Decklist uses %d cards outside the pool", result.Invalid.Total())))
		for _, key := range result.Invalid.Keys() {
			fmt.Fprintf(w, "  %d %s\n", result.Invalid.Get(key), key)
		}
	}
	if n := result.Unused.Total(); n > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d pool cards are not in the decklist", n)))
	}
}

func printPeriod(w io.Writer, p sealed.Period) {
	fmt.Fprintln(w, titleStyle.Render("Period"))
	printField(w, "Mode", string(p.Mode))
	printField(w, "Anchor", formatTime(p.Anchor))
	if p.HasNext {
		printField(w, "Next", formatTime(p.Next))
		printField(w, "Remaining", time.Until(p.Next).Round(time.Minute).String())
	}
	printField(w, "Packs", fmt.Sprint(p.Packs))
}

// printSets lists the sealedable sets. synced holds the last import time
// of each set; sets missing from it show a dash.
func printSets(w io.Writer, catalog *cards.Catalog, sets []string, synced map[string]time.Time) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d sealedable sets", len(sets))))
	header := fmt.Sprintf("  %-6s %6s %6s %6s %6s %6s  %s", "SET", "M", "R", "U", "C", "BASIC", "SYNCED")
	fmt.Fprintln(w, dimStyle.Render(header))
	for _, code := range sets {
		info := catalog.SetInfo(code)
		when := "-"
		if t, ok := synced[code]; ok && !t.IsZero() {
			when = t.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "  %s %6d %6d %6d %6d %6d  %s\n",
			commandStyle.Render(fmt.Sprintf("%-6s", code)), info.Mythic, info.Rare, info.Uncommon, info.Common, info.Basic,
			dimStyle.Render(when))
	}
}
