package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
)

// Response carries a completed query: the normalized results and which
// instance served them.
type Response struct {
	Results  []models.CanonicalResult `json:"results"`
	ServedBy string                   `json:"served_by"`
}

// DataSource is the query surface the aggregates consume. Live execution,
// synthetic fallback, and their composition all satisfy it.
type DataSource interface {
	Execute(ctx context.Context, q models.Query) (Response, error)
}

// Executor runs queries across the rotation with linear-backoff failover.
type Executor struct {
	registry *Registry
	policy   FailoverPolicy
	norm     *processing.Normalizer
	log      *slog.Logger
}

// NewExecutor wires the rotation, failover policy, and normalizer together.
func NewExecutor(registry *Registry, policy FailoverPolicy, norm *processing.Normalizer, log *slog.Logger) *Executor {
	return &Executor{
		registry: registry,
		policy:   policy.withDefaults(),
		norm:     norm,
		log:      log,
	}
}

// Execute tries the query against up to MaxAttempts instances, advancing
// the rotation on every attempt. The first success wins; exhaustion
// surfaces a RetryExhaustedError wrapping the last failure. An instance
// with an open breaker still consumes its attempt so a fully degraded pool
// fails fast instead of spinning.
func (e *Executor) Execute(ctx context.Context, q models.Query) (Response, error) {
	if e.registry.Len() == 0 {
		return Response{}, ErrNoInstances
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 10
	}

	var last error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		inst := e.registry.Next()

		if !inst.Healthy() {
			last = fmt.Errorf("instance %s: breaker open", inst.URL())
			e.log.Debug("skipping unhealthy instance", "instance", inst.URL(), "attempt", attempt)
		} else {
			attemptCtx, cancel := context.WithTimeout(ctx, e.policy.AttemptTimeout)
			raws, err := inst.search(attemptCtx, q)
			cancel()

			if err == nil {
				return Response{Results: e.normalize(q, raws), ServedBy: inst.URL()}, nil
			}
			last = err
			e.log.Warn("search attempt failed",
				"instance", inst.URL(),
				"attempt", attempt,
				"transient", IsTransient(err),
				"error", err)
		}

		if attempt == e.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(e.policy.Delay(attempt)):
		}
	}

	return Response{}, &RetryExhaustedError{
		Query:    q.Text,
		Attempts: e.policy.MaxAttempts,
		Last:     last,
	}
}

func (e *Executor) normalize(q models.Query, raws []models.RawResult) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(raws))
	for i, raw := range raws {
		results = append(results, e.norm.Normalize(q, raw, i))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > q.MaxResults {
		results = results[:q.MaxResults]
	}
	return results
}
