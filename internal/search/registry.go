package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// Instance is one rotated search backend with its own breaker state.
type Instance struct {
	url      string
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	lastUsed atomic.Int64
}

// URL identifies the instance in logs and responses.
func (i *Instance) URL() string { return i.url }

// Kind reports the backend implementation.
func (i *Instance) Kind() Kind { return i.provider.Kind() }

// Healthy reports whether the breaker still admits traffic.
func (i *Instance) Healthy() bool { return i.breaker.State() != gobreaker.StateOpen }

// LastUsed returns the time of the most recent attempt against this
// instance, if any.
func (i *Instance) LastUsed() (time.Time, bool) {
	n := i.lastUsed.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n).UTC(), true
}

func (i *Instance) search(ctx context.Context, q models.Query) ([]models.RawResult, error) {
	i.lastUsed.Store(time.Now().UnixNano())
	out, err := i.breaker.Execute(func() (any, error) {
		return i.provider.Search(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return out.([]models.RawResult), nil
}

// Probe issues a minimal query directly at the provider, outside the
// breaker, for health audits.
func (i *Instance) Probe(ctx context.Context) error {
	_, err := i.provider.Search(ctx, models.Query{Text: "news", MaxResults: 1})
	return err
}

// Registry owns the instance pool and the rotation cursor. Rotation is a
// bare atomic increment: every request advances the cursor regardless of
// outcome, which spreads load evenly across instances.
type Registry struct {
	instances []*Instance
	cursor    atomic.Uint64
}

// NewRegistry builds the instance pool from configuration.
func NewRegistry(cfg config.Search, log *slog.Logger) (*Registry, error) {
	if len(cfg.Instances) == 0 {
		return nil, ErrNoInstances
	}

	client := &http.Client{Timeout: cfg.AttemptTimeout + 5*time.Second}

	instances := make([]*Instance, 0, len(cfg.Instances))
	for _, ic := range cfg.Instances {
		provider, err := newProvider(ic, client)
		if err != nil {
			return nil, err
		}

		inst := &Instance{url: ic.URL, provider: provider}
		inst.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        ic.URL,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			// A caller walking away is not an instance failure.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("instance breaker state change",
					"instance", name, "from", from.String(), "to", to.String())
			},
		})
		instances = append(instances, inst)
	}

	return &Registry{instances: instances}, nil
}

// Next returns the next instance in round-robin order.
func (r *Registry) Next() *Instance {
	n := r.cursor.Add(1)
	return r.instances[(n-1)%uint64(len(r.instances))]
}

// Len reports the pool size.
func (r *Registry) Len() int { return len(r.instances) }

// Instances exposes the pool for audits.
func (r *Registry) Instances() []*Instance { return r.instances }

// InstanceStatus is a point-in-time view of one instance.
type InstanceStatus struct {
	URL      string     `json:"url"`
	Kind     Kind       `json:"kind"`
	State    string     `json:"state"`
	LastUsed *time.Time `json:"last_used,omitempty"`
}

// Snapshot reports the health of every instance.
func (r *Registry) Snapshot() []InstanceStatus {
	out := make([]InstanceStatus, 0, len(r.instances))
	for _, inst := range r.instances {
		st := InstanceStatus{
			URL:   inst.url,
			Kind:  inst.Kind(),
			State: inst.breaker.State().String(),
		}
		if ts, ok := inst.LastUsed(); ok {
			st.LastUsed = &ts
		}
		out = append(out, st)
	}
	return out
}
