package sealed

import (
	"errors"
	"fmt"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

var (
	// ErrPackInfeasible means a set lacks enough cards of some rarity to fill a pack.
	ErrPackInfeasible = errors.New("pack infeasible")

	// ErrConfiguration means the caller supplied an unusable pool request.
	ErrConfiguration = errors.New("invalid configuration")
)

// PackInfeasibleError reports the rarity counts of a set that cannot
// produce a pack. It unwraps to ErrPackInfeasible.
type PackInfeasibleError struct {
	Set  string
	Info cards.SetInfo
}

func (e *PackInfeasibleError) Error() string {
	set := e.Set
	if set == "" {
		set = "(all sets)"
	}
	return fmt.Sprintf("set %s cannot produce a pack: rare=%d uncommon=%d common=%d",
		set, e.Info.Rare, e.Info.Uncommon, e.Info.Common)
}

func (e *PackInfeasibleError) Unwrap() error {
	return ErrPackInfeasible
}

// ConfigurationError describes a rejected request field. It unwraps to
// ErrConfiguration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
