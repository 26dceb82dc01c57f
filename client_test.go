package resilient

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRunSuccess(t *testing.T) {
	t.Parallel()

	client := NewClient("", respondWith(200, "ok"), WithClock(newImmediateTestClock()))

	resp, err := client.Run(context.Background(), testSpec, DefaultPolicy)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestClientFallbackServesTerminalFailures(t *testing.T) {
	t.Parallel()

	var fallbackSeen atomic.Bool

	stale := &Response{StatusCode: 200, Body: []byte("cached")}

	client := NewClient("", respondWith(503, ""),
		WithClock(newImmediateTestClock()),
		WithHooks(Hooks{
			OnFallback: func(ce *ClassifiedError) {
				assert.Equal(t, KindServer, ce.Kind)
				fallbackSeen.Store(true)
			},
		}),
		WithFallback(func(*ClassifiedError) (*Response, error) {
			return stale, nil
		}),
	)

	resp, err := client.Run(context.Background(), testSpec, RetryPolicy{MaxAttempts: 2})

	require.NoError(t, err)
	assert.Equal(t, "cached", string(resp.Body))
	assert.True(t, fallbackSeen.Load())
}

func TestClientFallbackCanDecline(t *testing.T) {
	t.Parallel()

	client := NewClient("", respondWith(501, ""),
		WithClock(newImmediateTestClock()),
		WithFallback(func(ce *ClassifiedError) (*Response, error) {
			return nil, ce
		}),
	)

	_, err := client.Run(context.Background(), testSpec, RetryPolicy{MaxAttempts: 2})

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StrategyManualResolution, ce.Strategy)
}

func TestClientStatusTracksFailuresAndConnectivity(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(WithDebounceWindow(0))

	client := NewClient("", respondWith(429, ""),
		WithClock(newImmediateTestClock()),
		WithMonitor(monitor),
	)

	status := client.Status()
	assert.True(t, status.Online)
	assert.True(t, status.Healthy)
	assert.Empty(t, status.LastFailureKind)
	assert.Zero(t, status.InFlight)

	_, err := client.Run(context.Background(), testSpec, RetryPolicy{MaxAttempts: 2})
	require.Error(t, err)

	monitor.SetOnline(false)

	status = client.Status()
	assert.False(t, status.Online)
	assert.False(t, status.Healthy)
	assert.Equal(t, "rate_limit", status.LastFailureKind)
}

func TestClientNamedRegistersWithRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	NewClient("energy-api", respondWith(200, ""), WithRegistry(reg))

	snapshot := reg.Snapshot()
	require.Len(t, snapshot.Clients, 1)
	assert.Equal(t, "energy-api", snapshot.Clients[0].Name)
	assert.True(t, snapshot.Ready)
}

func TestClientAnonymousSkipsRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	NewClient("", respondWith(200, ""), WithRegistry(reg))

	assert.Empty(t, reg.Snapshot().Clients)
}

func TestDoConvenience(t *testing.T) {
	t.Parallel()

	transport := respondWith(200, "done")

	resp, err := Do(context.Background(), transport, testSpec, OneShotPolicy())

	require.NoError(t, err)
	assert.Equal(t, "done", string(resp.Body))
	assert.Equal(t, int64(1), transport.calls.Load())
}

func TestClientCallerCancellationPassesThrough(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	client := NewClient("", blockUntilCancelled())

	_, err := client.Run(ctx, testSpec, OneShotPolicy())

	assert.ErrorIs(t, err, context.Canceled)
}
