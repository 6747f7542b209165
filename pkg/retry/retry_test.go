package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastOptions() Options {
	opts := DefaultOptions()
	opts.InitialDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond
	return opts
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0

	value, err := Do(context.Background(), fastOptions(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &HTTPError{StatusCode: 503, URL: "http://example.com"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "ok" || calls != 3 {
		t.Fatalf("value=%q calls=%d", value, calls)
	}
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	opts := fastOptions()
	opts.MaxRetries = 2

	calls := 0
	last := &HTTPError{StatusCode: 500, URL: "http://example.com"}

	_, err := Do(context.Background(), opts, func() (int, error) {
		calls++
		return 0, last
	})

	if !errors.Is(err, last) {
		t.Fatalf("expected last error back, got %v", err)
	}
	if calls != 3 { // initial attempt + 2 retries
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoNeverRetriesAuthFailure(t *testing.T) {
	opts := fastOptions()
	opts.MaxRetries = 10

	calls := 0
	_, err := Do(context.Background(), opts, func() (int, error) {
		calls++
		return 0, &HTTPError{StatusCode: 401, URL: "http://example.com"}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("401 must not be retried, got %d calls", calls)
	}
}

func TestDoOnRetryFiresBeforeEachWait(t *testing.T) {
	opts := fastOptions()
	opts.MaxRetries = 2

	var attempts []int
	opts.OnRetry = func(err error, attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Do(context.Background(), opts, func() (int, error) {
		return 0, &HTTPError{StatusCode: 429, URL: "http://example.com"}
	})

	if len(attempts) != 2 {
		t.Fatalf("expected 2 retry notifications, got %d", len(attempts))
	}
	if attempts[0] != 0 || attempts[1] != 1 {
		t.Fatalf("unexpected attempt numbers %v", attempts)
	}
}

func TestDoHonoursContextCancellation(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, opts, func() (int, error) {
		return 0, &HTTPError{StatusCode: 503, URL: "http://example.com"}
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
}

func TestDelayCapAndGrowth(t *testing.T) {
	opts := DefaultOptions()

	cap := time.Duration(float64(opts.MaxDelay) * (1 + opts.JitterFactor))

	// Jitter makes individual samples noisy; compare averages.
	average := func(attempt int) time.Duration {
		var total time.Duration
		for i := 0; i < 200; i++ {
			d := opts.Delay(attempt)
			if d > cap {
				t.Fatalf("delay %v exceeds cap %v at attempt %d", d, cap, attempt)
			}
			total += d
		}
		return total / 200
	}

	prev := average(0)
	for n := 1; n < 5; n++ {
		current := average(n)
		if current < prev-time.Duration(float64(prev)*0.2) {
			t.Fatalf("expected non-decreasing delays, attempt %d: %v after %v", n, current, prev)
		}
		prev = current
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&HTTPError{StatusCode: 408}, true},
		{&HTTPError{StatusCode: 429}, true},
		{&HTTPError{StatusCode: 502}, true},
		{&HTTPError{StatusCode: 401}, false},
		{&HTTPError{StatusCode: 404}, false},
		{context.DeadlineExceeded, true},
		{errors.New("parse failure"), false},
		{nil, false},
	}

	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
