// Package txservice is the query client for the third-party transaction
// indexing service. It performs one authenticated GET per logical request and
// drives an explicit retry state machine around it.
package txservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/blockgroot/signer-wallet-tool/internal/config"
	"github.com/blockgroot/signer-wallet-tool/internal/logger"
)

// requestState is the per-logical-request state machine:
// statePending -> {stateSucceeded | stateRetryWaiting -> statePending |
// stateTerminalFailure | stateExhaustedFailure}.
// stateRetryWaiting is entered only for rate-limit and transient outcomes,
// never for the terminal 404/422 case.
type requestState int

const (
	statePending requestState = iota
	stateSucceeded
	stateRetryWaiting
	stateTerminalFailure
	stateExhaustedFailure
)

// Client issues authenticated requests against fully-formed service URLs.
// Callers build URLs from the network registry; the client owns only the
// retry protocol and response classification.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client

	// sleep is swapped out in tests to observe wait durations.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a query client. A nil httpClient gets a default with the
// configured timeout.
func New(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		sleep:      ctxSleep,
	}
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetJSON performs one logical GET against url and decodes the 2xx response
// body into out. Expected-absence responses (404, 422) return immediately as
// terminal faults; 429 and other failures are retried up to MaxRetries
// attempts, waiting the Retry-After duration when the service supplies one
// and a linearly increasing backoff otherwise.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	if c.cfg.APIKey == "" {
		return &Fault{Kind: KindConfiguration, Err: fmt.Errorf("SAFE_API_KEY is not set")}
	}

	state := statePending
	attempt := 0
	var lastFault *Fault

	for {
		switch state {
		case statePending:
			attempt++
			fault := c.attempt(ctx, url, out)
			if fault == nil {
				state = stateSucceeded
				break
			}
			lastFault = fault

			switch fault.Kind {
			case KindNotFound, KindNotAWallet:
				state = stateTerminalFailure
			default:
				if attempt >= c.cfg.MaxRetries {
					state = stateExhaustedFailure
				} else {
					state = stateRetryWaiting
				}
			}

		case stateRetryWaiting:
			wait := c.cfg.RetryDelay * time.Duration(attempt)
			if lastFault.RetryAfter > 0 {
				wait = lastFault.RetryAfter
			}
			logger.Debug("Retrying %s in %v (attempt %d/%d): %v", url, wait, attempt, c.cfg.MaxRetries, lastFault)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			state = statePending

		case stateSucceeded:
			return nil

		case stateTerminalFailure:
			return lastFault

		case stateExhaustedFailure:
			logger.Error("Giving up on %s after %d attempts: %v", url, attempt, lastFault)
			return &Fault{Kind: KindExhausted, Status: lastFault.Status, Err: lastFault}
		}
	}
}

// attempt performs a single HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, url string, out interface{}) *Fault {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Fault{Kind: KindTransient, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("Request to %s failed after %v: %v", url, time.Since(start), err)
		return &Fault{Kind: KindTransient, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	logger.Debug("Request to %s completed in %v with status %d", url, time.Since(start), resp.StatusCode)

	switch {
	case resp.StatusCode/100 == 2:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return &Fault{Kind: KindTransient, Status: resp.StatusCode, Err: fmt.Errorf("error decoding response: %w", err)}
			}
		}
		return nil

	case resp.StatusCode == http.StatusNotFound:
		return &Fault{Kind: KindNotFound, Status: resp.StatusCode}

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &Fault{Kind: KindNotAWallet, Status: resp.StatusCode}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &Fault{
			Kind:       KindRateLimited,
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Fault{
			Kind:   KindTransient,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("http %d: %s", resp.StatusCode, string(body)),
		}
	}
}

// parseRetryAfter handles the delta-seconds form of the header. The HTTP-date
// form is rare from this service and falls back to the backoff schedule.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
