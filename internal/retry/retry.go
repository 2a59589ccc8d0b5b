// Package retry provides exponential backoff for transient upstream failures.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy controls how many attempts are made and how long to wait between them.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Factor multiplies the delay after every failed attempt.
	Factor float64
	// Jitter is the fraction of the delay randomized in both directions (0-1).
	Jitter float64
}

// DefaultPolicy returns the policy used for upstream API calls.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
		Factor:    2.0,
		Jitter:    0.2,
	}
}

// Retryable reports whether an error is worth another attempt.
type Retryable func(error) bool

// Do runs fn until it succeeds, the policy is exhausted, retryable reports a
// permanent error, or ctx is done. When retryable is nil every error retries.
func Do(ctx context.Context, p Policy, retryable Retryable, fn func(context.Context) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := fn(ctx); err == nil {
			return nil
		} else {
			lastErr = err
			if retryable != nil && !retryable(err) {
				return err
			}
		}

		if attempt == p.Attempts {
			break
		}

		sleep := delay + jitter(delay, p.Jitter)
		if sleep > p.MaxDelay {
			sleep = p.MaxDelay
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * p.Factor)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return &ExhaustedError{Attempts: p.Attempts, Err: lastErr}
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	spread := float64(d) * fraction
	return time.Duration((rand.Float64() - 0.5) * 2 * spread)
}

// ExhaustedError reports that every attempt allowed by the policy failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }
