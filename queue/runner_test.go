package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("job never reported")
		return nil
	}
}

func TestRunReportsResult(t *testing.T) {
	r := NewRunner(nil)
	boom := errors.New("boom")

	done, err := r.Run(context.Background(), "lua", "alice", time.Second, func(ctx context.Context) error {
		return boom
	})
	require.NoError(t, err)
	require.ErrorIs(t, wait(t, done), boom)
	assert.False(t, r.Busy("lua"))
}

func TestRunIsSingleFlightPerKind(t *testing.T) {
	r := NewRunner(nil)
	release := make(chan struct{})

	done, err := r.Run(context.Background(), "Title", "alice", time.Minute, func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "title", "bob", time.Minute, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrBusy)

	other, err := r.Run(context.Background(), "lua", "bob", time.Minute, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, wait(t, other))

	jobs := r.Active()
	require.Len(t, jobs, 1)
	assert.Equal(t, "title", jobs[0].Kind)
	assert.Equal(t, "alice", jobs[0].Owner)

	close(release)
	require.NoError(t, wait(t, done))
	assert.Empty(t, r.Active())
}

func TestTimeoutFreesSlot(t *testing.T) {
	r := NewRunner(nil)
	stuck := make(chan struct{})
	defer close(stuck)

	done, err := r.Run(context.Background(), "lua", "alice", 20*time.Millisecond, func(ctx context.Context) error {
		<-stuck
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, wait(t, done), context.DeadlineExceeded)

	again, err := r.Run(context.Background(), "lua", "alice", time.Second, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, wait(t, again))
}

func TestCancel(t *testing.T) {
	r := NewRunner(nil)
	assert.False(t, r.Cancel("lua"))

	done, err := r.Run(context.Background(), "lua", "alice", time.Minute, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)

	assert.True(t, r.Cancel("LUA"))
	assert.False(t, r.Busy("lua"))
	require.ErrorIs(t, wait(t, done), ErrCancelled)
}

func TestLateFinishKeepsNewerSlot(t *testing.T) {
	r := NewRunner(nil)
	first := make(chan struct{})

	_, err := r.Run(context.Background(), "lua", "alice", time.Minute, func(ctx context.Context) error {
		<-first
		return nil
	})
	require.NoError(t, err)
	require.True(t, r.Cancel("lua"))

	second := make(chan struct{})
	done, err := r.Run(context.Background(), "lua", "bob", time.Minute, func(ctx context.Context) error {
		<-second
		return nil
	})
	require.NoError(t, err)

	// The abandoned job returning must not free the slot the second job holds.
	close(first)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, r.Busy("lua"))

	close(second)
	require.NoError(t, wait(t, done))
	r.Wait()
}

func TestPanicIsReported(t *testing.T) {
	r := NewRunner(nil)
	done, err := r.Run(context.Background(), "lua", "alice", time.Second, func(ctx context.Context) error {
		panic("bad")
	})
	require.NoError(t, err)
	require.ErrorContains(t, wait(t, done), "panicked")
}
