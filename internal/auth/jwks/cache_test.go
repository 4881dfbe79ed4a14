package jwks_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteermatch/internal/auth/jwks"
	"volunteermatch/internal/auth/jwks/jwkstest"
	authmetrics "volunteermatch/internal/auth/metrics"
	"volunteermatch/internal/platform/metrics"
	"volunteermatch/pkg/platform/circuit"
)

type countingFetcher struct {
	calls atomic.Int32
	set   *jwks.KeySet
	err   error
	delay time.Duration
}

func (f *countingFetcher) Fetch(context.Context) (*jwks.KeySet, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func TestCache_FetchesOnce(t *testing.T) {
	signer := jwkstest.NewSigner(t, "k1")
	server := jwkstest.NewServer(t, http.StatusOK, jwkstest.Document(t, signer))
	cache := jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))

	for i := 0; i < 5; i++ {
		set, err := cache.Keys(context.Background())
		require.NoError(t, err)
		_, err = set.RSAKey("k1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, server.Hits())
}

func TestCache_ConcurrentFirstFetchIsShared(t *testing.T) {
	signer := jwkstest.NewSigner(t, "k1")
	fetcher := &countingFetcher{set: signer.KeySet(), delay: 50 * time.Millisecond}
	cache := jwks.New(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Keys(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestCache_FailsClosed(t *testing.T) {
	t.Run("unreachable endpoint", func(t *testing.T) {
		server := jwkstest.NewServer(t, http.StatusOK, nil)
		server.Close()
		cache := jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))

		set, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
		assert.Nil(t, set)
	})

	t.Run("malformed key set", func(t *testing.T) {
		server := jwkstest.NewServer(t, http.StatusOK, []byte(`{"keys":"nope"}`))
		cache := jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))

		_, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
	})

	t.Run("empty key set", func(t *testing.T) {
		server := jwkstest.NewServer(t, http.StatusOK, []byte(`{"keys":[]}`))
		cache := jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))

		_, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := jwkstest.NewServer(t, http.StatusServiceUnavailable, []byte(`{}`))
		cache := jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))

		_, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
	})

	t.Run("failure is retried on the next call", func(t *testing.T) {
		fetcher := &countingFetcher{err: errors.New("connection refused")}
		cache := jwks.New(fetcher)

		_, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
		_, err = cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
		assert.Equal(t, int32(2), fetcher.calls.Load())
	})
}

func TestCache_TTL(t *testing.T) {
	first := jwkstest.NewSigner(t, "old")
	second := jwkstest.NewSigner(t, "new")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &countingFetcher{set: first.KeySet()}
	reg := metrics.NewForTest()
	m := authmetrics.New(reg.Registerer())

	cache := jwks.New(fetcher,
		jwks.WithTTL(time.Hour),
		jwks.WithClock(func() time.Time { return now }),
		jwks.WithMetrics(m),
	)

	set, err := cache.Keys(context.Background())
	require.NoError(t, err)
	_, err = set.RSAKey("old")
	require.NoError(t, err)

	t.Run("fresh set is not refetched", func(t *testing.T) {
		now = now.Add(30 * time.Minute)
		_, err := cache.Keys(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), fetcher.calls.Load())
	})

	t.Run("expired set is refreshed", func(t *testing.T) {
		now = now.Add(time.Hour)
		fetcher.set = second.KeySet()
		set, err := cache.Keys(context.Background())
		require.NoError(t, err)
		_, err = set.RSAKey("new")
		require.NoError(t, err)
		assert.Equal(t, int32(2), fetcher.calls.Load())
	})

	t.Run("failed refresh serves stale keys", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		fetcher.err = errors.New("timeout")
		set, err := cache.Keys(context.Background())
		require.NoError(t, err)
		_, err = set.RSAKey("new")
		require.NoError(t, err)
	})
}

func TestStatic(t *testing.T) {
	_, err := jwks.Static(nil).Keys(context.Background())
	require.ErrorIs(t, err, jwks.ErrKeyFetch)

	signer := jwkstest.NewSigner(t, "k1")
	set, err := jwks.Static(signer.KeySet()).Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestKeySet_RSAKey(t *testing.T) {
	signer := jwkstest.NewSigner(t, "k1")
	set, err := jwks.Parse(jwkstest.Document(t, signer))
	require.NoError(t, err)

	pub, err := set.RSAKey("k1")
	require.NoError(t, err)
	assert.Equal(t, signer.Key.PublicKey.N, pub.N)

	_, err = set.RSAKey("missing")
	require.ErrorIs(t, err, jwks.ErrKeyNotFound)
}

func TestCache_CircuitBreaker(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	breaker := circuit.New("jwks",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(clock),
	)
	cache := jwks.New(fetcher, jwks.WithBreaker(breaker), jwks.WithClock(clock))

	t.Run("open circuit fails closed without fetching", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := cache.Keys(context.Background())
			require.ErrorIs(t, err, jwks.ErrKeyFetch)
		}
		require.True(t, breaker.IsOpen())

		_, err := cache.Keys(context.Background())
		require.ErrorIs(t, err, jwks.ErrCircuitOpen)
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
		assert.Equal(t, int32(2), fetcher.calls.Load())
	})

	t.Run("recovers after cooldown", func(t *testing.T) {
		signer := jwkstest.NewSigner(t, "k1")
		fetcher.err = nil
		fetcher.set = signer.KeySet()
		now = now.Add(time.Minute)

		set, err := cache.Keys(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, set.Len())
		assert.False(t, breaker.IsOpen())
	})
}
