package workqueue_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/engine/workqueue"
	"go.trai.ch/zerr"
)

func TestQueue_IndependentJobs(t *testing.T) {
	q := workqueue.New()
	var runs [100]atomic.Int32

	for i := range 100 {
		require.NoError(t, q.Insert(fmt.Sprintf("job-%d", i), func(context.Context) error {
			runs[i].Add(1)
			return nil
		}))
	}

	require.NoError(t, q.Validate())
	require.NoError(t, q.Run(context.Background(), 8))

	assert.Equal(t, 100, q.Completed())
	for i := range runs {
		assert.Equal(t, int32(1), runs[i].Load(), "job-%d", i)
	}
}

func TestQueue_RandomDAG(t *testing.T) {
	for seed := range uint64(20) {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31+7))
			const n = 60

			blockers := make([][]string, n)
			for i := 1; i < n; i++ {
				for j := range i {
					if rng.IntN(6) == 0 {
						blockers[i] = append(blockers[i], fmt.Sprintf("j%d", j))
					}
				}
			}

			var mu sync.Mutex
			finished := make(map[string]bool)
			runs := make(map[string]int)
			var violations []string

			q := workqueue.New()
			// Insert in random order so dependents are often registered before their blockers.
			for _, i := range rng.Perm(n) {
				name := fmt.Sprintf("j%d", i)
				deps := blockers[i]
				require.NoError(t, q.Insert(name, func(context.Context) error {
					mu.Lock()
					defer mu.Unlock()
					for _, d := range deps {
						if !finished[d] {
							violations = append(violations, name+" before "+d)
						}
					}
					runs[name]++
					finished[name] = true
					return nil
				}, deps...))
			}

			require.NoError(t, q.Validate())
			require.NoError(t, q.Run(context.Background(), 1+int(seed%7)))

			assert.Empty(t, violations)
			assert.Len(t, runs, n)
			for name, c := range runs {
				assert.Equal(t, 1, c, name)
			}
			assert.Equal(t, n, q.Completed())
		})
	}
}

func TestQueue_ProcessJob(t *testing.T) {
	t.Run("empty queue reports done", func(t *testing.T) {
		q := workqueue.New()
		assert.False(t, q.ProcessJob(context.Background()))
	})

	t.Run("returns false only once every job ran", func(t *testing.T) {
		q := workqueue.New()
		var order []string
		record := func(name string) workqueue.Action {
			return func(context.Context) error {
				order = append(order, name)
				return nil
			}
		}
		require.NoError(t, q.Insert("link", record("link"), "a", "b"))
		require.NoError(t, q.Insert("a", record("a")))
		require.NoError(t, q.Insert("b", record("b")))

		ctx := context.Background()
		assert.True(t, q.ProcessJob(ctx))
		assert.True(t, q.ProcessJob(ctx))
		assert.True(t, q.ProcessJob(ctx))
		assert.False(t, q.ProcessJob(ctx))

		require.Len(t, order, 3)
		assert.Equal(t, "link", order[2])
		assert.Equal(t, 3, q.Completed())
	})
}

func TestQueue_Insert_Duplicate(t *testing.T) {
	q := workqueue.New()
	require.NoError(t, q.Insert("a", nil))

	err := q.Insert("a", nil)
	require.Error(t, err)
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "a", zErr.Metadata()["job"])
}

func TestQueue_Insert_PlaceholderThenRegister(t *testing.T) {
	q := workqueue.New()
	require.NoError(t, q.Insert("app", nil, "lib"))
	assert.Equal(t, 2, q.Len())

	require.NoError(t, q.Insert("lib", nil))
	require.NoError(t, q.Validate())
}

func TestQueue_Validate(t *testing.T) {
	t.Run("unknown blocker", func(t *testing.T) {
		q := workqueue.New()
		require.NoError(t, q.Insert("app", nil, "ghost"))

		err := q.Validate()
		require.ErrorContains(t, err, domain.ErrUnknownJob.Error())
		zErr, ok := err.(*zerr.Error)
		require.True(t, ok)
		assert.Equal(t, "ghost", zErr.Metadata()["job"])
		assert.Equal(t, "app", zErr.Metadata()["blocked"])
	})

	t.Run("cycle", func(t *testing.T) {
		q := workqueue.New()
		require.NoError(t, q.Insert("a", nil, "b"))
		require.NoError(t, q.Insert("b", nil, "a"))
		require.NoError(t, q.Insert("c", nil))

		err := q.Validate()
		require.ErrorContains(t, err, domain.ErrCycleDetected.Error())
		zErr, ok := err.(*zerr.Error)
		require.True(t, ok)
		assert.Equal(t, "a, b", zErr.Metadata()["jobs"])
	})
}

func TestQueue_FailuresAreRecorded(t *testing.T) {
	q := workqueue.New()
	boom := errors.New("boom")
	var dependentRan atomic.Bool

	require.NoError(t, q.Insert("fails", func(context.Context) error { return boom }))
	require.NoError(t, q.Insert("panics", func(context.Context) error { panic("kaboom") }))
	require.NoError(t, q.Insert("after", func(context.Context) error {
		dependentRan.Store(true)
		return nil
	}, "fails", "panics"))

	err := q.Run(context.Background(), 2)
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), domain.ErrJobPanicked.Error())
	assert.True(t, dependentRan.Load())
	assert.Equal(t, 3, q.Completed())
}

func TestQueue_CancelledContextDrains(t *testing.T) {
	q := workqueue.New()
	var ran atomic.Int32
	for i := range 10 {
		require.NoError(t, q.Insert(fmt.Sprintf("job-%d", i), func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Run(ctx, 4)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), ran.Load())
	assert.Equal(t, 10, q.Completed())
}

func TestQueue_StallIsReported(t *testing.T) {
	q := workqueue.New()
	require.NoError(t, q.Insert("a", nil, "b"))
	require.NoError(t, q.Insert("b", nil, "a"))

	err := q.Run(context.Background(), 3)
	require.ErrorContains(t, err, domain.ErrQueueStalled.Error())
	assert.Equal(t, 0, q.Completed())
}

func TestQueue_RunReturnsEveryError(t *testing.T) {
	q := workqueue.New()
	boom := errors.New("boom")
	require.NoError(t, q.Insert("fails", func(context.Context) error { return boom }))
	require.NoError(t, q.Insert("panics", func(context.Context) error { panic("crash") }, "fails"))
	require.NoError(t, q.Insert("after", nil, "panics"))
	require.NoError(t, q.Validate())

	// More workers than jobs: idle workers must still return once the queue drains.
	err := q.Run(context.Background(), 16)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, domain.ErrJobPanicked.Error())
	assert.Equal(t, 3, q.Completed())
}
