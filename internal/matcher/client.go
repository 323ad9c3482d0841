// Package matcher is the client for the external descriptor matching service.
//
// The service exposes one endpoint per detection type:
//
//	POST /detect/{detectionType}           normal (full recall) mode
//	POST /detect/priority/{detectionType}  quick mode
//
// Both take {"contents": [descriptor...], "earlyReturn": bool} and answer
// with one candidate list per descriptor, in request order.
package matcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ironsheep/equip-scan-mcp/internal/config"
	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("matcher status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return isRetryableStatus(e.Code)
}

// ErrMisaligned is returned when the response does not hold exactly one
// candidate list per submitted descriptor.
var ErrMisaligned = errors.New("matcher response not aligned with request")

type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	debug       bool
}

type detectRequest struct {
	Contents    []equipment.Descriptor `json:"contents"`
	EarlyReturn bool                   `json:"earlyReturn"`
}

func NewClient(cfg config.Config) *Client {
	attempts := cfg.MatcherMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.MatcherURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.MatcherTimeout()},
		maxAttempts: attempts,
		backoff:     cfg.MatcherBackoff(),
		debug:       cfg.Debug(),
	}
}

// Match submits one batch of descriptors for a detection type and returns
// each descriptor's candidates, sorted by descending confidence. A null row
// in the response is returned as an empty list.
//
// Transport errors and 429/5xx answers are retried with exponential backoff
// until the attempt budget or ctx runs out. Other failures return at once.
func (c *Client) Match(ctx context.Context, dt equipment.DetectionType, contents []equipment.Descriptor, quick bool) ([][]equipment.MatchCandidate, error) {
	if len(contents) == 0 {
		return [][]equipment.MatchCandidate{}, nil
	}

	endpoint := c.baseURL + "/detect/" + string(dt)
	if quick {
		endpoint = c.baseURL + "/detect/priority/" + string(dt)
	}

	payload, err := json.Marshal(detectRequest{Contents: contents, EarlyReturn: quick})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var rows [][]equipment.MatchCandidate
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(rows) != len(contents) {
		return nil, fmt.Errorf("%w: %d rows for %d descriptors", ErrMisaligned, len(rows), len(contents))
	}

	for i, row := range rows {
		if row == nil {
			rows[i] = []equipment.MatchCandidate{}
			continue
		}
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].Confidence > row[b].Confidence
		})
	}
	return rows, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("send request: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("send request: %w", err)
			c.logRetry(endpoint, attempt, lastErr)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			c.logRetry(endpoint, attempt, lastErr)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if !statusErr.Retryable() {
				return nil, statusErr
			}
			lastErr = statusErr
			c.logRetry(endpoint, attempt, lastErr)
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// wait sleeps before the given attempt: backoff * 2^(attempt-2) plus jitter.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<(attempt-2))
	if c.backoff > 0 {
		delay += time.Duration(rand.Int63n(int64(c.backoff)/4 + 1))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(endpoint string, attempt int, err error) {
	if c.debug {
		log.Printf("matcher: attempt %d/%d to %s failed: %v", attempt, c.maxAttempts, endpoint, err)
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
