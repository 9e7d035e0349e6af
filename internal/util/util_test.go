package util_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/macrolab/fredmcp/internal/util"
)

func TestParseDate(t *testing.T) {
	d, err := util.ParseDate("2020-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2020 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "02/29/2020", "2020-13-01", "yesterday"} {
		if _, err := util.ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	if got := util.FormatDate(d); got != "2024-12-01" {
		t.Errorf("expected 2024-12-01, got %q", got)
	}
	if got := util.StampDay(d); got != "20241201" {
		t.Errorf("expected 20241201, got %q", got)
	}
}

func TestParseObsValue(t *testing.T) {
	if v := util.ParseObsValue("3.5"); v != 3.5 {
		t.Errorf("expected 3.5, got %g", v)
	}
	if v := util.ParseObsValue(" -0.25 "); v != -0.25 {
		t.Errorf("whitespace should be trimmed, got %g", v)
	}
	for _, missing := range []string{".", "", "  ", "n/a"} {
		if v := util.ParseObsValue(missing); !math.IsNaN(v) {
			t.Errorf("ParseObsValue(%q) should be NaN, got %g", missing, v)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := util.FormatValue(3.5); got != "3.5" {
		t.Errorf("expected 3.5, got %q", got)
	}
	if got := util.FormatValue(10); got != "10" {
		t.Errorf("expected 10, got %q", got)
	}
	if got := util.FormatValue(math.NaN()); got != "" {
		t.Errorf("NaN should format as the empty string, got %q", got)
	}
}

func TestMultiError(t *testing.T) {
	var m util.MultiError
	m.Add(nil)
	if err := m.Err(); err != nil {
		t.Errorf("nil adds should leave the collector empty, got %v", err)
	}

	m.Add(errors.New("first"))
	m.Add(nil)
	m.Add(errors.New("second"))
	err := m.Err()
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	if got := err.Error(); got != "first; second" {
		t.Errorf("expected \"first; second\", got %q", got)
	}
}
