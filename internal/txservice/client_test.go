package txservice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/blockgroot/signer-wallet-tool/internal/config"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testClient(t *testing.T, rt rtFunc) (*Client, *[]time.Duration) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.APIKey = "test-key"
	c := New(cfg, &http.Client{Transport: rt})

	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestGetJSON_MissingAPIKey(t *testing.T) {
	calls := 0
	c, _ := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return response(200, `{}`), nil
	})
	c.cfg.APIKey = ""

	err := c.GetJSON(context.Background(), "http://unit-test/", nil)
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
	if calls != 0 {
		t.Errorf("configuration fault must be detected before any network call, got %d calls", calls)
	}
}

func TestGetJSON_NotFoundIsTerminal(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return response(404, ""), nil
	})

	err := c.GetJSON(context.Background(), "http://unit-test/", nil)
	if k, _ := KindOf(err); k != KindNotFound {
		t.Fatalf("expected not-found fault, got %v", err)
	}
	if calls != 1 {
		t.Errorf("404 must not be retried, got %d calls", calls)
	}
	if len(*waits) != 0 {
		t.Errorf("404 must not trigger retry waits, got %v", *waits)
	}
}

func TestGetJSON_NotAWalletIsTerminal(t *testing.T) {
	calls := 0
	c, _ := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return response(422, ""), nil
	})

	err := c.GetJSON(context.Background(), "http://unit-test/", nil)
	if k, _ := KindOf(err); k != KindNotAWallet {
		t.Fatalf("expected not-a-wallet fault, got %v", err)
	}
	if calls != 1 {
		t.Errorf("422 must not be retried, got %d calls", calls)
	}
}

func TestGetJSON_RateLimitExhaustion(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return response(429, ""), nil
	})

	err := c.GetJSON(context.Background(), "http://unit-test/", nil)
	if k, _ := KindOf(err); k != KindExhausted {
		t.Fatalf("expected exhausted fault, got %v", err)
	}
	if calls != c.cfg.MaxRetries {
		t.Errorf("expected exactly %d calls, got %d", c.cfg.MaxRetries, calls)
	}

	// Without Retry-After the backoff is baseDelay * attemptNumber, so the
	// waits must be strictly increasing.
	if len(*waits) != c.cfg.MaxRetries-1 {
		t.Fatalf("expected %d waits, got %d", c.cfg.MaxRetries-1, len(*waits))
	}
	for i := 1; i < len(*waits); i++ {
		if (*waits)[i] <= (*waits)[i-1] {
			t.Errorf("waits must be strictly increasing, got %v", *waits)
		}
	}

	var f *Fault
	if !errors.As(err, &f) || f.Err == nil {
		t.Fatal("exhausted fault must carry the last underlying fault")
	}
	if k, _ := KindOf(f.Err); k != KindRateLimited {
		t.Errorf("underlying fault should be rate-limited, got %v", f.Err)
	}
}

func TestGetJSON_RetryAfterHonored(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			resp := response(429, "")
			resp.Header.Set("Retry-After", "7")
			return resp, nil
		}
		return response(200, `{"ok":true}`), nil
	})

	var out map[string]bool
	if err := c.GetJSON(context.Background(), "http://unit-test/", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected retry then success, got %d calls", calls)
	}
	if len(*waits) != 1 || (*waits)[0] != 7*time.Second {
		t.Errorf("Retry-After should override linear backoff, got waits %v", *waits)
	}
	if !out["ok"] {
		t.Error("response body was not decoded")
	}
}

func TestGetJSON_TransientThenSuccess(t *testing.T) {
	calls := 0
	c, _ := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return response(500, "oops"), nil
		}
		return response(200, `{"threshold":2}`), nil
	})

	var out struct {
		Threshold int `json:"threshold"`
	}
	if err := c.GetJSON(context.Background(), "http://unit-test/", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Threshold != 2 {
		t.Errorf("expected decoded threshold 2, got %d", out.Threshold)
	}
}

func TestGetJSON_TransportErrorRetried(t *testing.T) {
	calls := 0
	c, _ := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})

	err := c.GetJSON(context.Background(), "http://unit-test/", nil)
	if k, _ := KindOf(err); k != KindExhausted {
		t.Fatalf("expected exhausted fault, got %v", err)
	}
	if calls != c.cfg.MaxRetries {
		t.Errorf("expected %d attempts for transport errors, got %d", c.cfg.MaxRetries, calls)
	}
}

func TestGetJSON_BearerAuthHeader(t *testing.T) {
	c, _ := testClient(t, func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		return response(200, `{}`), nil
	})

	if err := c.GetJSON(context.Background(), "http://unit-test/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetJSON_ContextCancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := config.NewConfig()
	cfg.APIKey = "test-key"
	c := New(cfg, &http.Client{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		cancel()
		return response(429, ""), nil
	})})

	err := c.GetJSON(ctx, "http://unit-test/", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to surface, got %v", err)
	}
	if calls != 1 {
		t.Errorf("no further attempts after cancellation, got %d calls", calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
