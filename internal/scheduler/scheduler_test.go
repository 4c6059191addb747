package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, zerolog.Nop())
	var runs atomic.Int32
	require.NoError(t, r.Add("count", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, 1, r.Len())

	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestRunner_FailingJobKeepsSchedule(t *testing.T) {
	r := New(context.Background(), zerolog.Nop())
	var runs atomic.Int32
	require.NoError(t, r.Add("fail", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}))

	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
}

func TestRunner_InvalidSchedule(t *testing.T) {
	r := New(context.Background(), zerolog.Nop())
	err := r.Add("bad", "every five minutes", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Zero(t, r.Len())
}

func TestRunner_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	r := New(ctx, zerolog.Nop())
	got := make(chan any, 1)
	require.NoError(t, r.Add("ctx", "@every 1s", func(ctx context.Context) error {
		select {
		case got <- ctx.Value(key{}):
		default:
		}
		return nil
	}))
	r.Start()
	defer r.Stop()

	select {
	case v := <-got:
		assert.Equal(t, "v", v)
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
