package jwks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	authmetrics "volunteermatch/internal/auth/metrics"
	"volunteermatch/internal/platform/logger"
	"volunteermatch/pkg/platform/circuit"
)

// Cache is a Provider that fetches lazily and keeps the result.
//
// With the default TTL of zero the first successful fetch is kept for the
// process lifetime: a key rotation at the provider is not picked up until
// restart. A failed fetch is never cached, so each verification retries and
// fails closed until the provider is reachable again.
//
// With a positive TTL an expired set is refreshed on the next call. Concurrent
// callers share one fetch; if the refresh fails the stale set keeps serving.
//
// An optional circuit breaker stops fetching after repeated failures: while it
// is open, calls fail closed (or serve the stale set) without contacting the
// provider.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	clock   func() time.Time
	logger  *slog.Logger
	metrics *authmetrics.Metrics
	breaker *circuit.Breaker

	group singleflight.Group

	mu        sync.RWMutex
	set       *KeySet
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL enables refresh after d. Zero disables refresh.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithClock overrides time.Now for expiry decisions.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithBreaker guards fetches with b.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Cache) {
		c.breaker = b
	}
}

// New builds a Cache around fetcher. Nothing is fetched until the first Keys call.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		clock:   time.Now,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Keys implements Provider.
func (c *Cache) Keys(ctx context.Context) (*KeySet, error) {
	set, fresh := c.cached()
	if set != nil && fresh {
		return set, nil
	}

	if c.breaker != nil && !c.breaker.Allow() {
		if set != nil {
			c.recordFetch(authmetrics.OutcomeStale)
			return set, nil
		}
		c.recordFetch(authmetrics.OutcomeFailure)
		return nil, ErrCircuitOpen
	}

	v, err, _ := c.group.Do("jwks", func() (any, error) {
		// Another caller may have finished a fetch while we waited.
		if set, fresh := c.cached(); set != nil && fresh {
			return set, nil
		}
		fetched, err := c.fetcher.Fetch(context.WithoutCancel(ctx))
		if err != nil {
			c.breakerFailure(ctx)
			return nil, err
		}
		c.breakerSuccess(ctx)
		c.mu.Lock()
		c.set = fetched
		c.fetchedAt = c.clock()
		c.mu.Unlock()
		c.recordFetch(authmetrics.OutcomeSuccess)
		c.logger.InfoContext(ctx, "signing keys fetched", "keys", fetched.Len())
		return fetched, nil
	})
	if err != nil {
		if set != nil {
			c.recordFetch(authmetrics.OutcomeStale)
			c.logger.WarnContext(ctx, "signing key refresh failed, serving stale keys", "error", err)
			return set, nil
		}
		c.recordFetch(authmetrics.OutcomeFailure)
		c.logger.ErrorContext(ctx, "signing key fetch failed", "error", err)
		if !errors.Is(err, ErrKeyFetch) {
			err = fmt.Errorf("%w: %w", ErrKeyFetch, err)
		}
		return nil, err
	}
	return v.(*KeySet), nil
}

func (c *Cache) cached() (*KeySet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil {
		return nil, false
	}
	if c.ttl <= 0 {
		return c.set, true
	}
	return c.set, c.clock().Sub(c.fetchedAt) < c.ttl
}

func (c *Cache) breakerFailure(ctx context.Context) {
	if c.breaker != nil && c.breaker.RecordFailure() {
		c.logger.ErrorContext(ctx, "signing key endpoint circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Cache) breakerSuccess(ctx context.Context) {
	if c.breaker != nil && c.breaker.RecordSuccess() {
		c.logger.InfoContext(ctx, "signing key endpoint circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *Cache) recordFetch(outcome string) {
	if c.metrics != nil {
		c.metrics.IncrementKeyFetch(outcome)
	}
}
