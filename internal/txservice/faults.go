package txservice

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a fault once, at the HTTP-response boundary. All retry and
// fallback decisions downstream are made on the kind, never by matching
// error text.
type Kind int

const (
	// KindConfiguration means the API credential is missing or empty.
	// Detected before any network call; never retried.
	KindConfiguration Kind = iota

	// KindNotFound is a 404: the resource does not exist on this network.
	// Expected and terminal for that network.
	KindNotFound

	// KindNotAWallet is a 422: the address exists but is not a multisig
	// wallet on this network. Expected and terminal, like KindNotFound.
	KindNotAWallet

	// KindRateLimited is a 429, retried with backoff.
	KindRateLimited

	// KindTransient is any other non-2xx response or transport failure,
	// retried like KindRateLimited.
	KindTransient

	// KindExhausted means the retry budget ran out; the fault wraps the
	// last underlying fault observed.
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not found"
	case KindNotAWallet:
		return "not a wallet"
	case KindRateLimited:
		return "rate limited"
	case KindTransient:
		return "transient"
	case KindExhausted:
		return "retries exhausted"
	default:
		return "unknown"
	}
}

// Fault is a typed query-client error.
type Fault struct {
	Kind       Kind
	Status     int           // HTTP status, 0 for transport/configuration faults
	RetryAfter time.Duration // from the Retry-After header on a 429, if present
	Err        error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	if f.Status != 0 {
		return fmt.Sprintf("%s (http %d)", f.Kind, f.Status)
	}
	return f.Kind.String()
}

func (f *Fault) Unwrap() error { return f.Err }

// KindOf extracts the fault kind from an error chain. The second return is
// false when the error carries no Fault.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

// IsConfiguration reports whether err is a missing-credential fault.
func IsConfiguration(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConfiguration
}

// IsExpectedAbsence reports whether err is one of the expected, terminal
// per-network outcomes (404 not found, 422 not a wallet) that drive the
// resolver and scanner fallback logic.
func IsExpectedAbsence(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindNotFound || k == KindNotAWallet)
}
