// Package fred implements the HTTP gateway for the Federal Reserve Bank of
// St. Louis (FRED) API. All methods are context-aware, respect the shared
// rate limiter, and retry transient failures (429, 5xx) with exponential
// backoff and jitter. Errors are classified into fault kinds so the MCP
// layer can report them without inspecting HTTP details.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/macrolab/fredmcp/internal/fault"
)

const (
	defaultBaseURL = "https://api.stlouisfed.org/fred/"

	backoffBase = 500 * time.Millisecond
	backoffCap  = 8 * time.Second
)

// Client is the FRED API HTTP gateway.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	softLimit   time.Duration
	debug       bool
}

// NewClient creates a Client. softLimit is the per-call soft deadline;
// hardLimit bounds the whole HTTP exchange including retries of a single
// request body read. maxAttempts is the retry budget for 429/5xx.
func NewClient(apiKey, baseURL string, softLimit, hardLimit time.Duration, ratePerSec float64, maxAttempts int, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: hardLimit,
		},
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), burst),
		maxAttempts: maxAttempts,
		softLimit:   softLimit,
		debug:       debug,
	}
}

// get performs a GET request to the FRED API, handling rate limiting,
// retries, and error classification.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		return fault.New(fault.AuthMissing, "FRED_API_KEY is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.softLimit)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyCtx(err)
	}

	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	if c.debug {
		safe := strings.Replace(reqURL, c.apiKey, "REDACTED", 1)
		slog.Debug("fred request", "url", safe)
	}

	var lastErr error
	lastKind := fault.UpstreamUnavailable
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := backoffFor(attempt)
			slog.Debug("retrying after backoff", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return classifyCtx(ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fault.Wrap(fault.Internal, err, "building request")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "fredmcp/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return classifyCtx(ctx.Err())
			}
			lastErr = err
			lastKind = fault.UpstreamUnavailable
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			lastKind = fault.UpstreamUnavailable
			continue
		}

		if c.debug {
			slog.Debug("fred response", "status", resp.StatusCode, "bytes", len(body))
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("HTTP 429: %s", strings.TrimSpace(string(body)))
			lastKind = fault.RateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			lastKind = fault.UpstreamUnavailable
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return classifyAPIError(resp.StatusCode, body)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fault.Wrap(fault.UpstreamUnavailable, err, "decoding response")
		}
		return nil
	}
	return fault.Wrap(lastKind, lastErr, "after %d attempts", c.maxAttempts)
}

// backoffFor computes the jittered exponential backoff for a retry attempt.
// Base 500ms doubling per attempt, capped at 8s, with ±20% jitter.
func backoffFor(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
	if d > backoffCap {
		d = backoffCap
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

// classifyAPIError maps a non-retryable FRED HTTP error onto a fault kind.
func classifyAPIError(status int, body []byte) error {
	var apiErr struct {
		Message string `json:"error_message"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusNotFound:
		return fault.New(fault.NotFound, "HTTP 404: %s", msg)
	case http.StatusBadRequest:
		// FRED reports unknown series IDs as 400 with a descriptive message.
		if strings.Contains(strings.ToLower(msg), "does not exist") {
			return fault.New(fault.NotFound, "%s", msg)
		}
		return fault.New(fault.InvalidParams, "%s", msg)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fault.New(fault.AuthMissing, "HTTP %d: %s", status, msg)
	default:
		return fault.New(fault.UpstreamUnavailable, "HTTP %d: %s", status, msg)
	}
}

// classifyCtx maps a context error onto a fault kind.
func classifyCtx(err error) error {
	if err == context.Canceled {
		return fault.Wrap(fault.Cancelled, err, "request cancelled")
	}
	return fault.Wrap(fault.UpstreamUnavailable, err, "deadline exceeded")
}
