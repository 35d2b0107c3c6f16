// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
// Retry drives backoff from an explicit outcome class instead of from
// error inspection: each attempt reports ok, retryable, or fatal.
package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryBaseDelay is the default linear backoff unit. Tests override this to
// avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxAttempts = 3

// ErrBudgetExhausted is returned when the policy's budget refuses another
// attempt before the attempt limit is reached.
var ErrBudgetExhausted = errors.New("request budget exhausted")

// Class is the outcome classification of a single attempt.
type Class int

const (
	ClassOK Class = iota
	ClassRetryable
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassOK:
		return "ok"
	case ClassRetryable:
		return "retryable"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of one attempt.
type Outcome[T any] struct {
	Value T
	Class Class
	Err   error
}

// OK wraps a successful value.
func OK[T any](v T) Outcome[T] { return Outcome[T]{Value: v, Class: ClassOK} }

// Retryable reports a failure worth another attempt.
func Retryable[T any](err error) Outcome[T] { return Outcome[T]{Class: ClassRetryable, Err: err} }

// Fatal reports a failure that must not be retried. The value is kept so
// callers can salvage partial data.
func Fatal[T any](v T, err error) Outcome[T] { return Outcome[T]{Value: v, Class: ClassFatal, Err: err} }

// RetryPolicy bounds a retry loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts (default 3).
	MaxAttempts int

	// BaseDelay is the backoff unit; after failed attempt n the loop waits
	// n*BaseDelay. Zero means RetryBaseDelay.
	BaseDelay time.Duration

	// Allow is consulted before every attempt, including the first. A nil
	// Allow always permits. Returning false ends the loop with
	// ErrBudgetExhausted joined to the last failure.
	Allow func() bool

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}
	return base * time.Duration(attempt)
}

// Retry runs fn until it returns ClassOK or ClassFatal, attempts run out,
// the budget refuses, or ctx is cancelled. It returns the final outcome
// together with the number of attempts made.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) Outcome[T]) (Outcome[T], int) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var last Outcome[T]
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if p.Allow != nil && !p.Allow() {
			return Outcome[T]{Value: last.Value, Class: ClassFatal, Err: errors.Join(ErrBudgetExhausted, last.Err)}, attempts
		}

		attempts++
		last = fn(ctx, attempt)
		if last.Class != ClassRetryable {
			return last, attempts
		}
		if attempt == maxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, last.Err)
		}
		if err := sleep(ctx, wait); err != nil {
			return Outcome[T]{Class: ClassFatal, Err: err}, attempts
		}
	}
	return last, attempts
}

// ClassifyStatus maps an HTTP status code to an outcome class. 429 is
// fatal: the provider's quota does not recover within a run.
func ClassifyStatus(code int) Class {
	switch {
	case code >= 200 && code < 300:
		return ClassOK
	case code == http.StatusRequestTimeout, code >= 500:
		return ClassRetryable
	default:
		return ClassFatal
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
