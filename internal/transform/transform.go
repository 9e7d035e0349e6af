// Package transform implements the named time-series transformations applied
// to dataset columns. Each transformation is a pure function over a slice of
// values aligned to a shared date index: the output has the same length as
// the input, with the leading lookback positions set to NaN.
//
// Lookbacks are counted in observations, not calendar units. The engine does
// not resample; callers align frequency (by merging) before transforming.
package transform

import (
	"fmt"
	"math"
	"sort"
)

// Tag names a transformation.
type Tag string

const (
	None      Tag = "none"
	YoY       Tag = "YoY"
	QoQ       Tag = "QoQ"
	MoM       Tag = "MoM"
	Diff      Tag = "diff"
	PctChange Tag = "pct_change"
	Log       Tag = "log"
	LogDiff   Tag = "log_diff"
)

// lookbacks maps each tag to the number of leading observations its output
// leaves as NaN.
var lookbacks = map[Tag]int{
	None:      0,
	Diff:      1,
	PctChange: 1,
	MoM:       1,
	QoQ:       3,
	YoY:       12,
	Log:       0,
	LogDiff:   1,
}

// Parse validates a tag string. The empty string parses as None.
func Parse(s string) (Tag, error) {
	if s == "" {
		return None, nil
	}
	t := Tag(s)
	if _, ok := lookbacks[t]; !ok {
		return None, fmt.Errorf("unknown transformation %q (valid: %s)", s, validList())
	}
	return t, nil
}

// Lookback returns the number of leading NaN positions tag produces.
func Lookback(tag Tag) int {
	return lookbacks[tag]
}

// Valid reports whether s names a known transformation.
func Valid(s string) bool {
	_, ok := lookbacks[Tag(s)]
	return ok
}

func validList() string {
	tags := make([]string, 0, len(lookbacks))
	for t := range lookbacks {
		tags = append(tags, string(t))
	}
	sort.Strings(tags)
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

// Apply runs the transformation over values, returning a new slice of the
// same length. NaN inputs propagate to every output that depends on them.
func Apply(tag Tag, values []float64) ([]float64, error) {
	switch tag {
	case None:
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	case Diff:
		return lagged(values, 1, func(curr, prev float64) float64 {
			return curr - prev
		}), nil
	case PctChange:
		return lagged(values, 1, ratio(1)), nil
	case MoM:
		return lagged(values, 1, ratio(100)), nil
	case QoQ:
		return lagged(values, 3, ratio(100)), nil
	case YoY:
		return lagged(values, 12, ratio(100)), nil
	case Log:
		out := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) || v <= 0 {
				out[i] = math.NaN()
			} else {
				out[i] = math.Log(v)
			}
		}
		return out, nil
	case LogDiff:
		return lagged(values, 1, func(curr, prev float64) float64 {
			if curr <= 0 || prev <= 0 {
				return math.NaN()
			}
			return math.Log(curr) - math.Log(prev)
		}), nil
	default:
		return nil, fmt.Errorf("unknown transformation %q", tag)
	}
}

// ColumnName derives the output column name for a series under tag:
// the bare series ID for None, otherwise "{SeriesID}_{tag}".
func ColumnName(seriesID string, tag Tag) string {
	if tag == None {
		return seriesID
	}
	return seriesID + "_" + string(tag)
}

// ─── Internal ─────────────────────────────────────────────────────────────────

// lagged applies f(x[i], x[i-period]) for i >= period, NaN elsewhere.
// NaN operands always produce NaN.
func lagged(values []float64, period int, f func(curr, prev float64) float64) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		curr, prev := values[i], values[i-period]
		if math.IsNaN(curr) || math.IsNaN(prev) {
			out[i] = math.NaN()
			continue
		}
		out[i] = f(curr, prev)
	}
	return out
}

// ratio builds a (curr/prev - 1) * scale operator that guards division by zero.
func ratio(scale float64) func(curr, prev float64) float64 {
	return func(curr, prev float64) float64 {
		if prev == 0 {
			return math.NaN()
		}
		return (curr/prev - 1) * scale
	}
}
