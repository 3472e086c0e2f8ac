package sealed

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the cadence at which a player's pool is reissued.
type Mode string

const (
	ModeDaily   Mode = "daily"
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
	ModeRandom  Mode = "random"
	ModeStatic  Mode = "static"
)

// Modes lists every cadence mode in display order.
var Modes = []Mode{ModeDaily, ModeWeekly, ModeMonthly, ModeRandom, ModeStatic}

// Reset schedule, all in UTC.
const (
	DailyResetHour   = 8
	WeeklyResetDay   = time.Sunday
	WeeklyResetHour  = 8
	MonthlyResetHour = 20
)

// DefaultPackCount is the number of packs per set outside monthly mode.
const DefaultPackCount = 6

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", configErrorf("mode", "unknown cadence mode %q", s)
	}
	return m, nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Reproducible reports whether pools in this mode can be regenerated later,
// which is what decklist validation relies on.
func (m Mode) Reproducible() bool {
	return m != ModeRandom
}

// Anchor returns the start of the allotment period containing now. Static
// mode returns static unchanged and fails if it is zero; random mode
// returns now itself.
func Anchor(mode Mode, now, static time.Time) (time.Time, error) {
	n := now.UTC()

	switch mode {
	case ModeDaily:
		a := time.Date(n.Year(), n.Month(), n.Day(), DailyResetHour, 0, 0, 0, time.UTC)
		if n.Hour() < DailyResetHour {
			a = a.AddDate(0, 0, -1)
		}
		return a, nil

	case ModeWeekly:
		a := time.Date(n.Year(), n.Month(), n.Day(), WeeklyResetHour, 0, 0, 0, time.UTC)
		back := (int(n.Weekday()) - int(WeeklyResetDay) + 7) % 7
		a = a.AddDate(0, 0, -back)
		if a.After(n) {
			a = a.AddDate(0, 0, -7)
		}
		return a, nil

	case ModeMonthly:
		if isLastDayOfMonth(n) && n.Hour() >= MonthlyResetHour {
			return time.Date(n.Year(), n.Month(), n.Day(), MonthlyResetHour, 0, 0, 0, time.UTC), nil
		}
		// Day 0 of this month is the last day of the previous one.
		return time.Date(n.Year(), n.Month(), 0, MonthlyResetHour, 0, 0, 0, time.UTC), nil

	case ModeRandom:
		return now, nil

	case ModeStatic:
		if static.IsZero() {
			return time.Time{}, configErrorf("anchor", "static mode requires an anchor timestamp")
		}
		return static, nil

	default:
		return time.Time{}, configErrorf("mode", "unknown cadence mode %q", string(mode))
	}
}

// NextAnchor returns the start of the period after the one beginning at
// anchor. Static and random modes have no next period.
func NextAnchor(mode Mode, anchor time.Time) (time.Time, bool) {
	a := anchor.UTC()

	switch mode {
	case ModeDaily:
		return a.AddDate(0, 0, 1), true
	case ModeWeekly:
		return a.AddDate(0, 0, 7), true
	case ModeMonthly:
		// Last day of the month following the anchor's month.
		return time.Date(a.Year(), a.Month()+2, 0, MonthlyResetHour, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// PackCount returns how many packs per set a player receives at now. In
// monthly mode the allotment grows with the days elapsed since the anchor.
func PackCount(mode Mode, anchor, now time.Time) int {
	if mode != ModeMonthly {
		return DefaultPackCount
	}

	elapsed := int(now.Sub(anchor) / (24 * time.Hour))
	switch {
	case elapsed < 7:
		return 4
	case elapsed < 14:
		return 6
	case elapsed < 21:
		return 9
	default:
		return 12
	}
}

// Period describes the allotment window for a mode at a point in time.
type Period struct {
	Mode    Mode      `json:"mode"`
	Anchor  time.Time `json:"anchor"`
	Next    time.Time `json:"next,omitzero"`
	HasNext bool      `json:"has_next"`
	Packs   int       `json:"packs"`
}

// ResolvePeriod computes the period containing now.
func ResolvePeriod(mode Mode, now, static time.Time) (Period, error) {
	anchor, err := Anchor(mode, now, static)
	if err != nil {
		return Period{}, err
	}
	next, hasNext := NextAnchor(mode, anchor)
	return Period{
		Mode:    mode,
		Anchor:  anchor,
		Next:    next,
		HasNext: hasNext,
		Packs:   PackCount(mode, anchor, now),
	}, nil
}

func (p Period) String() string {
	if !p.HasNext {
		return fmt.Sprintf("%s from %s", p.Mode, p.Anchor.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s from %s until %s", p.Mode, p.Anchor.Format(time.RFC3339), p.Next.Format(time.RFC3339))
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
