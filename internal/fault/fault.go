// Package fault classifies errors into the small set of kinds the MCP layer
// reports to clients. Errors are built with stdlib wrapping; the Kind travels
// with the error and is recovered via errors.As at the protocol boundary.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies an error class. Kinds are stable protocol-visible strings.
type Kind string

const (
	ConfigMissing       Kind = "config_missing"
	InvalidParams       Kind = "invalid_params"
	NotFound            Kind = "not_found"
	UpstreamUnavailable Kind = "upstream_unavailable"
	RateLimited         Kind = "rate_limited"
	AuthMissing         Kind = "auth_missing"
	EmptyIntersection   Kind = "empty_intersection"
	DuplicateSeries     Kind = "duplicate_series"
	UnknownColumn       Kind = "unknown_column"
	IncompleteDataset   Kind = "incomplete_dataset"
	Cancelled           Kind = "cancelled"
	Internal            Kind = "internal"
)

// Error carries a Kind alongside a wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. A nil cause returns nil.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or Internal if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
