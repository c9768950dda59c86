// Package dbt discovers dbt models on disk and builds the dbt invocations
// the run, test, compare-objects and reset-schemas commands need.
package dbt

import (
	"errors"
	"fmt"
)

// ErrInvalidSelector is returned for graph operator depths outside 1-9.
var ErrInvalidSelector = errors.New("invalid prefix. Please specify a number between 1 and 9")

// ErrWaterfallConflict is returned when --waterfall is combined with an
// upstream or downstream operator.
var ErrWaterfallConflict = errors.New("cannot run --waterfall with --upstream or --downstream")

// Selector describes the dbt graph operators around a model. Upstream and
// Downstream are "" (unset), "+" (all) or a depth "1".."9".
type Selector struct {
	Upstream   string
	Downstream string
	Waterfall  bool
}

// Validate reports whether the selector can be built.
func (s Selector) Validate() error {
	_, _, err := s.affixes()
	return err
}

// Build returns the --select value for model.
func (s Selector) Build(model string) (string, error) {
	prefix, suffix, err := s.affixes()
	if err != nil {
		return "", err
	}
	return prefix + model + suffix, nil
}

func (s Selector) affixes() (prefix, suffix string, err error) {
	if s.Waterfall {
		if s.Upstream != "" || s.Downstream != "" {
			return "", "", ErrWaterfallConflict
		}
		return "@", "", nil
	}

	if s.Upstream != "" {
		d, err := depth(s.Upstream)
		if err != nil {
			return "", "", err
		}
		prefix = d + "+"
		if d == "" {
			prefix = "+"
		}
	}
	if s.Downstream != "" {
		d, err := depth(s.Downstream)
		if err != nil {
			return "", "", err
		}
		suffix = "+" + d
	}
	return prefix, suffix, nil
}

// depth returns "" for "+" and the digit for "1".."9".
func depth(v string) (string, error) {
	if v == "+" {
		return "", nil
	}
	if len(v) == 1 && v[0] >= '1' && v[0] <= '9' {
		return v, nil
	}
	return "", fmt.Errorf("%w (got %q)", ErrInvalidSelector, v)
}
