// Package retry wraps transient-failure handling for the enrichment,
// narration and tile download stages. Delays follow an exponential backoff
// with jitter, delegated to cenkalti/backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Options struct {
	MaxRetries        uint64
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterFactor      float64

	// ShouldRetry decides whether an error is worth another attempt.
	// Defaults to Retryable.
	ShouldRetry func(err error, attempt int) bool

	// OnRetry fires before each wait.
	OnRetry func(err error, attempt int, delay time.Duration)
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
		JitterFactor:      0.1,
	}
}

func (o Options) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.InitialDelay
	b.MaxInterval = o.MaxDelay
	b.Multiplier = o.BackoffMultiplier
	b.RandomizationFactor = o.JitterFactor
	b.MaxElapsedTime = 0 // attempts are bounded by MaxRetries instead
	b.Reset()
	return b
}

// Delay returns the randomized wait before retry attempt n (0-indexed).
// Exposed so callers can surface expected wait times.
func (o Options) Delay(attempt int) time.Duration {
	b := o.newBackOff()

	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Do runs fn until it succeeds, the error is not retryable, the attempt
// budget is spent or ctx is cancelled. The last error from fn is returned
// unchanged on exhaustion.
func Do[T any](ctx context.Context, opts Options, fn func() (T, error)) (T, error) {
	shouldRetry := opts.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error, attempt int) bool { return Retryable(err) }
	}

	attempt := 0
	var result T

	operation := func() error {
		value, err := fn()
		if err != nil {
			if !shouldRetry(err, attempt) {
				return backoff.Permanent(err)
			}
			attempt++
			return err
		}

		result = value
		return nil
	}

	notify := func(err error, delay time.Duration) {
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt-1, delay)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(opts.newBackOff(), opts.MaxRetries), ctx)

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

// HTTPError carries a response status code through the retry decision.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d from %s", e.StatusCode, e.URL)
}

var retryableStatusCodes = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Retryable is the default retry policy: transient network failures and the
// usual overload/gateway status codes. Authentication failures are permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatusCodes[httpErr.StatusCode]
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
