package fred_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/fred"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func newTestClient(ts *httptest.Server, attempts int) *fred.Client {
	return fred.NewClient("test-key", ts.URL+"/",
		5*time.Second, 10*time.Second, 1000, attempts, false)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// ─── Observations ─────────────────────────────────────────────────────────────

func TestGetObservationsParsing(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, `{
		"observations": [
			{"date": "2020-01-01", "value": "3.5"},
			{"date": "2020-02-01", "value": "."},
			{"date": "2020-02-01", "value": "9.9"},
			{"date": "2020-01-15", "value": "8.8"},
			{"date": "not-a-date", "value": "7.7"},
			{"date": "2020-03-01", "value": "3.7"}
		]
	}`))
	defer ts.Close()

	data, err := newTestClient(ts, 1).GetObservations(context.Background(), "unrate", fred.ObsOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.SeriesID != "UNRATE" {
		t.Errorf("series ID should be uppercased, got %q", data.SeriesID)
	}
	// Duplicate, out-of-order and malformed rows are dropped.
	if len(data.Obs) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(data.Obs))
	}
	if !math.IsNaN(data.Obs[1].Value) {
		t.Errorf("'.' value should parse as NaN, got %g", data.Obs[1].Value)
	}
	if data.Obs[1].ValueRaw != "." {
		t.Errorf("raw provider value should be preserved, got %q", data.Obs[1].ValueRaw)
	}
	for i := 1; i < len(data.Obs); i++ {
		if !data.Obs[i].Date.After(data.Obs[i-1].Date) {
			t.Errorf("dates must be strictly ascending: %v then %v", data.Obs[i-1].Date, data.Obs[i].Date)
		}
	}
}

func TestGetObservationsSendsWindow(t *testing.T) {
	var gotStart, gotEnd string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("observation_start")
		gotEnd = r.URL.Query().Get("observation_end")
		w.Write([]byte(`{"observations": []}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "GDP", fred.ObsOptions{
		Start: "2019-01-01",
		End:   "2020-12-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart != "2019-01-01" || gotEnd != "2020-12-31" {
		t.Errorf("window not forwarded: start=%q end=%q", gotStart, gotEnd)
	}
}

// ─── Error classification ─────────────────────────────────────────────────────

func TestAuthMissingWithoutKey(t *testing.T) {
	requests := int32(0)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer ts.Close()

	client := fred.NewClient("", ts.URL+"/", 5*time.Second, 10*time.Second, 1000, 1, false)
	_, err := client.GetObservations(context.Background(), "GDP", fred.ObsOptions{})
	if !fault.Is(err, fault.AuthMissing) {
		t.Fatalf("expected auth_missing, got %v", err)
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Error("a keyless client must not issue requests")
	}
}

func TestNotFoundOn404(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusNotFound, `{"error_message": "Not Found"}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "NOPE", fred.ObsOptions{})
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestNotFoundOnDoesNotExist400(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusBadRequest,
		`{"error_code": 400, "error_message": "Bad Request. The series does not exist."}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "NOPE", fred.ObsOptions{})
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("a does-not-exist 400 should map to not_found, got %v", err)
	}
}

func TestInvalidParamsOnOther400(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusBadRequest,
		`{"error_code": 400, "error_message": "Bad Request. Variable observation_start is not a valid date."}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "GDP", fred.ObsOptions{Start: "bogus"})
	if !fault.Is(err, fault.InvalidParams) {
		t.Errorf("expected invalid_params, got %v", err)
	}
}

func TestAuthMissingOnForbidden(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusForbidden, `{"error_message": "api_key invalid"}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "GDP", fred.ObsOptions{})
	if !fault.Is(err, fault.AuthMissing) {
		t.Errorf("expected auth_missing, got %v", err)
	}
}

// ─── Retries ──────────────────────────────────────────────────────────────────

func TestRetriesAfter429(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"observations": [{"date": "2020-01-01", "value": "1.0"}]}`))
	}))
	defer ts.Close()

	data, err := newTestClient(ts, 3).GetObservations(context.Background(), "GDP", fred.ObsOptions{})
	if err != nil {
		t.Fatalf("expected the retry to succeed: %v", err)
	}
	if len(data.Obs) != 1 {
		t.Errorf("expected 1 observation, got %d", len(data.Obs))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected exactly 2 requests, got %d", atomic.LoadInt32(&calls))
	}
}

func TestRateLimitedAfterExhaustedRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestClient(ts, 2).GetObservations(context.Background(), "GDP", fred.ObsOptions{})
	if !fault.Is(err, fault.RateLimited) {
		t.Errorf("expected rate_limited, got %v", err)
	}
}

func TestUpstreamUnavailableOn500(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusInternalServerError, `{}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetObservations(context.Background(), "GDP", fred.ObsOptions{})
	if !fault.Is(err, fault.UpstreamUnavailable) {
		t.Errorf("expected upstream_unavailable, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, `{"observations": []}`))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(ts, 1).GetObservations(ctx, "GDP", fred.ObsOptions{})
	if !fault.Is(err, fault.Cancelled) {
		t.Errorf("expected cancelled, got %v", err)
	}
}

// ─── Series metadata and search ───────────────────────────────────────────────

func TestGetSeries(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, `{
		"seriess": [{
			"id": "UNRATE",
			"title": "Unemployment Rate",
			"frequency": "Monthly",
			"units": "Percent",
			"observation_start": "1948-01-01",
			"observation_end": "2024-12-01",
			"popularity": 90
		}]
	}`))
	defer ts.Close()

	meta, err := newTestClient(ts, 1).GetSeries(context.Background(), "unrate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID != "UNRATE" || meta.Title != "Unemployment Rate" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.FetchedAt.IsZero() {
		t.Error("FetchedAt should be stamped")
	}
}

func TestGetSeriesEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, `{"seriess": []}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetSeries(context.Background(), "GHOST")
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("an empty seriess array should be not_found, got %v", err)
	}
}

func TestSearchSeriesDefaults(t *testing.T) {
	var q map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		w.Write([]byte(`{"seriess": [{"id": "UNRATE", "title": "Unemployment Rate"}]}`))
	}))
	defer ts.Close()

	results, err := newTestClient(ts, 1).SearchSeries(context.Background(), "unemployment", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "UNRATE" {
		t.Errorf("unexpected results %+v", results)
	}
	if got := q["order_by"]; len(got) != 1 || got[0] != "popularity" {
		t.Errorf("search should order by popularity, got %v", q["order_by"])
	}
	if got := q["limit"]; len(got) != 1 || got[0] != "50" {
		t.Errorf("search should default to limit 50, got %v", q["limit"])
	}
}

// ─── Sources ──────────────────────────────────────────────────────────────────

func TestGetSource(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"sources": [{"id": 1, "name": "Board of Governors of the Federal Reserve System (US)", "link": "http://www.federalreserve.gov/"}]}`))
	}))
	defer ts.Close()

	source, err := newTestClient(ts, 1).GetSource(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/source" {
		t.Errorf("expected the single-source endpoint, got %q", path)
	}
	if source.ID != 1 || source.Name == "" {
		t.Errorf("unexpected source %+v", source)
	}
}

func TestGetSourceEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, `{"sources": []}`))
	defer ts.Close()

	_, err := newTestClient(ts, 1).GetSource(context.Background(), 9999)
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("an empty sources array should be not_found, got %v", err)
	}
}
