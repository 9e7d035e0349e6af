package fred

import (
	"errors"
	"strings"

	"github.com/macrolab/fredmcp/internal/fault"
)

// wrapSeries annotates a gateway error with the operation and series ID while
// preserving its fault kind.
func wrapSeries(err error, op, seriesID string) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return fault.Wrap(fe.Kind, err, "%s %s", op, strings.ToUpper(seriesID))
	}
	return fault.Wrap(fault.UpstreamUnavailable, err, "%s %s", op, strings.ToUpper(seriesID))
}

// wrapQuery annotates a gateway error with a free-text query.
func wrapQuery(err error, op, query string) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return fault.Wrap(fe.Kind, err, "%s %q", op, query)
	}
	return fault.Wrap(fault.UpstreamUnavailable, err, "%s %q", op, query)
}

// notFoundSeries builds the canonical unknown-series error; the message
// carries the series ID so the client can surface it.
func notFoundSeries(seriesID string) error {
	return fault.New(fault.NotFound, "series not found: %s", strings.ToUpper(seriesID))
}
