package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnector fails every Connect at once, or blocks until Close when hold is set.
type fakeConnector struct {
	hold     bool
	connects atomic.Int32
	closed   chan struct{}
	once     atomic.Bool
}

func newFakeConnector(hold bool) *fakeConnector {
	return &fakeConnector{hold: hold, closed: make(chan struct{})}
}

func (c *fakeConnector) Connect() error {
	c.connects.Add(1)
	if c.hold {
		<-c.closed
		return nil
	}
	return errors.New("connection refused")
}

func (c *fakeConnector) Close() {
	if c.once.CompareAndSwap(false, true) {
		close(c.closed)
	}
}

func TestRunWithoutReconnectReturnsError(t *testing.T) {
	f := newFixture(t, nil)
	c := newFakeConnector(false)

	err := f.engine.Run(context.Background(), c)
	require.Error(t, err)
	assert.EqualValues(t, 1, c.connects.Load())
	assert.Equal(t, Disconnected, f.engine.State())
}

func TestRunReconnectsUntilCancelled(t *testing.T) {
	f := newFixture(t, nil, func(o *Options) { o.ReconnectDelay = 5 * time.Millisecond })
	c := newFakeConnector(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx, c) }()

	require.Eventually(t, func() bool { return c.connects.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunClosesConnectionOnCancel(t *testing.T) {
	f := newFixture(t, nil, func(o *Options) { o.ReconnectDelay = time.Hour })
	c := newFakeConnector(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx, c) }()

	require.Eventually(t, func() bool { return f.engine.State() == Connecting }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.EqualValues(t, 1, c.connects.Load())
}
