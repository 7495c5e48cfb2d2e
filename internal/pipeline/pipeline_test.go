package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

func TestWorkerCount(t *testing.T) {
	assert.GreaterOrEqual(t, WorkerCount(), 1)
}

func TestShards(t *testing.T) {
	assert.Nil(t, Shards(0, 4))
	assert.Equal(t, [][2]int{{0, 3}}, Shards(3, 0))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, Shards(2, 8))
	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, Shards(10, 3))
}

func TestApplyParallelPreservesOrder(t *testing.T) {
	rows := make([]int, 1000)
	for i := range rows {
		rows[i] = i
	}

	for _, workers := range []int{1, 2, 3, 7, 64, 2000} {
		got := ApplyParallel(rows, Map(func(v int) int { return v * 2 }), workers)
		require.Len(t, got, len(rows))
		for i, v := range got {
			if v != i*2 {
				t.Fatalf("workers=%d: got[%d] = %d", workers, i, v)
			}
		}
	}
}

func TestApplyParallelShardLocal(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6}
	// Each shard returns its own length once: a shard-local function.
	got := ApplyParallel(rows, func(shard []int) []int { return []int{len(shard)} }, 3)
	assert.Equal(t, []int{2, 2, 2}, got)

	assert.Empty(t, ApplyParallel([]int{}, Map(func(v int) int { return v }), 4))
}

func TestRunnerRunsAllJobs(t *testing.T) {
	var count int32
	jobs := make([]Job, 0, 10)
	for i := 0; i < 10; i++ {
		jobs = append(jobs, JobFunc{JobName: "job", Fn: func(ctx context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		}})
	}

	results, err := NewRunner(3, time.Second, logger.Nop()).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestRunnerSurfacesJobFailure(t *testing.T) {
	boom := errors.New("boom")
	var finished int32
	jobs := []Job{
		JobFunc{JobName: "summary", Fn: func(ctx context.Context) error { atomic.AddInt32(&finished, 1); return nil }},
		JobFunc{JobName: "active", Fn: func(ctx context.Context) error { atomic.AddInt32(&finished, 1); return boom }},
		JobFunc{JobName: "testing", Fn: func(ctx context.Context) error { atomic.AddInt32(&finished, 1); return nil }},
	}

	results, err := NewRunner(2, time.Second, logger.Nop()).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var jobErr *contracts.JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "active", jobErr.Job)

	assert.Len(t, results, 3, "the runner waits for every job")
	assert.Equal(t, int32(3), atomic.LoadInt32(&finished))
}

func TestRunnerTimeout(t *testing.T) {
	jobs := []Job{
		JobFunc{JobName: "hang", Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		JobFunc{JobName: "stubborn", Fn: func(ctx context.Context) error {
			time.Sleep(200 * time.Millisecond)
			return nil
		}},
	}

	start := time.Now()
	_, err := NewRunner(2, 20*time.Millisecond, logger.Nop()).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestRunnerRecoversPanic(t *testing.T) {
	jobs := []Job{JobFunc{JobName: "panics", Fn: func(ctx context.Context) error { panic("bad table") }}}

	_, err := NewRunner(1, time.Second, logger.Nop()).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad table")
}
