package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/macrolab/fredmcp/internal/fault"
)

func TestKindOf(t *testing.T) {
	err := fault.New(fault.NotFound, "series not found: %s", "GHOST")
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("expected not_found, got %s", fault.KindOf(err))
	}
	if fault.KindOf(errors.New("plain")) != fault.Internal {
		t.Error("unclassified errors should report internal")
	}
	if fault.KindOf(nil) != fault.Internal {
		t.Error("nil should report internal")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := fault.New(fault.RateLimited, "too many requests")
	outer := fmt.Errorf("fetching UNRATE: %w", inner)
	if !fault.Is(outer, fault.RateLimited) {
		t.Errorf("kind should survive fmt wrapping, got %s", fault.KindOf(outer))
	}

	rewrapped := fault.Wrap(fault.UpstreamUnavailable, inner, "gateway")
	if fault.KindOf(rewrapped) != fault.UpstreamUnavailable {
		t.Error("the outermost kind wins on rewrap")
	}
	if !errors.Is(rewrapped, inner) {
		t.Error("the cause chain must be preserved")
	}
}

func TestWrapNil(t *testing.T) {
	if err := fault.Wrap(fault.Internal, nil, "noop"); err != nil {
		t.Errorf("wrapping nil should stay nil, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	bare := fault.New(fault.InvalidParams, "bad date %q", "yesterday")
	if bare.Error() != `bad date "yesterday"` {
		t.Errorf("unexpected message %q", bare.Error())
	}
	wrapped := fault.Wrap(fault.Internal, errors.New("disk full"), "writing csv")
	if wrapped.Error() != "writing csv: disk full" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}
