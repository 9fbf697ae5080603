package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrNoInstances reports an empty instance pool.
var ErrNoInstances = errors.New("no search instances configured")

// FailoverPolicy bundles the retry strategy for a query: how many attempts
// to spread across the rotation, the linear backoff unit between attempts,
// and the per-attempt deadline.
type FailoverPolicy struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

func (p FailoverPolicy) withDefaults() FailoverPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = time.Second
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = 15 * time.Second
	}
	return p
}

// Delay returns the pause after a failed attempt. Backoff grows linearly
// with the attempt number.
func (p FailoverPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.Backoff
}

// RetryExhaustedError reports that every attempt for a query failed. The
// last underlying failure is preserved for inspection.
type RetryExhaustedError struct {
	Query    string
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("search %q: %d attempts exhausted: %v", e.Query, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// StatusError is a non-2xx backend reply.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Code)
}

// IsTransient reports whether err looks like a temporary backend condition
// rather than a permanent one.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	return false
}
