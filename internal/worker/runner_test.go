//go:build unit

package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hotel-booking/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner(t *testing.T) {
	t.Run("runs jobs on their interval until stopped", func(t *testing.T) {
		var runs atomic.Int64
		r := worker.NewRunner(worker.Job{
			Name:     "tick",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				runs.Add(1)
				return nil
			},
		})
		r.Start()
		assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, r.Stop(ctx))

		stopped := runs.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, runs.Load())
	})

	t.Run("a panicking or failing job keeps running", func(t *testing.T) {
		var runs atomic.Int64
		r := worker.NewRunner(worker.Job{
			Name:     "flaky",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				if runs.Add(1)%2 == 0 {
					panic("boom")
				}
				return errors.New("transient")
			},
		})
		r.Start()
		assert.Eventually(t, func() bool { return runs.Load() >= 4 }, time.Second, time.Millisecond)
		require.NoError(t, r.Stop(context.Background()))
	})

	t.Run("Stop gives up when the deadline passes", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{}, 1)
		r := worker.NewRunner(worker.Job{
			Name:     "stuck",
			Interval: time.Millisecond,
			Run: func(context.Context) error {
				select {
				case started <- struct{}{}:
				default:
				}
				<-release
				return nil
			},
		})
		r.Start()
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)
		close(release)
	})

	t.Run("disabled job and unstarted runner", func(t *testing.T) {
		r := worker.NewRunner(worker.Job{Name: "off", Interval: 0, Run: func(context.Context) error {
			t.Error("must not run")
			return nil
		}})
		require.NoError(t, r.Stop(context.Background()))
		r.Start()
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, r.Stop(context.Background()))
	})
}
