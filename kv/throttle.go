package kv

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds call limits for a throttled store.
type ThrottleConfig struct {
	// MaxInFlight is the maximum number of concurrent store calls.
	// If 0, concurrency is not limited.
	MaxInFlight int64

	// OpsPerSecond is the sustained call rate.
	// If 0, unlimited.
	OpsPerSecond float64

	// Burst is the number of calls allowed above OpsPerSecond in a burst.
	// If 0, defaults to 1.
	Burst int
}

// Throttled wraps a Store and bounds the calls issued against it.
//
// Index and Delete fan out one store call per term, so a long searchable
// string can burst well past the provisioned throughput of a table.
type Throttled struct {
	store    Store
	inFlight *semaphore.Weighted // nil if unlimited
	limiter  *rate.Limiter       // nil if unlimited
}

// Throttle creates a throttled view of store.
func Throttle(store Store, cfg ThrottleConfig) *Throttled {
	t := &Throttled{store: store}

	if cfg.MaxInFlight > 0 {
		t.inFlight = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.OpsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.OpsPerSecond), burst)
	}

	return t
}

func (t *Throttled) acquire(ctx context.Context) (func(), error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if t.inFlight == nil {
		return func() {}, nil
	}
	if err := t.inFlight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { t.inFlight.Release(1) }, nil
}

// Put implements Store.
func (t *Throttled) Put(ctx context.Context, namespace string, rec Record) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.store.Put(ctx, namespace, rec)
}

// Delete implements Store.
func (t *Throttled) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.store.Delete(ctx, namespace, partitionKey, rowKey)
}

// Query implements Store.
func (t *Throttled) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]Record, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return t.store.Query(ctx, namespace, partitionKey, limit)
}

// Count implements Store.
func (t *Throttled) Count(ctx context.Context, namespace string) (int64, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return t.store.Count(ctx, namespace)
}

// Scan implements Store.
func (t *Throttled) Scan(ctx context.Context, namespace string) ([]Record, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return t.store.Scan(ctx, namespace)
}

// Drop implements Store.
func (t *Throttled) Drop(ctx context.Context, namespace string) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.store.Drop(ctx, namespace)
}
