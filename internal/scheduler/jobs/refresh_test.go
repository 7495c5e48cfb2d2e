package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/internal/tracker"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

type fakeRunner struct {
	seen []tracker.Options
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, opts tracker.Options) (*tracker.Result, error) {
	f.seen = append(f.seen, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &tracker.Result{RunID: "run"}, nil
}

func TestRefreshJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewRefreshJob(runner, tracker.Options{OutputDir: "tracker", Rebuild: true}, "0 0 17 * * *", logger.Nop())

	assert.Equal(t, "refresh", job.Name())
	assert.Equal(t, "0 0 17 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, runner.seen, 2)
	assert.True(t, runner.seen[0].Rebuild)
	assert.False(t, runner.seen[1].Rebuild, "only the first run rebuilds")
	assert.Equal(t, "tracker", runner.seen[1].OutputDir)
}

func TestRefreshJobError(t *testing.T) {
	boom := errors.New("boom")
	job := NewRefreshJob(&fakeRunner{err: boom}, tracker.Options{Rebuild: true}, "@daily", logger.Nop())

	assert.ErrorIs(t, job.Run(context.Background()), boom)
	assert.True(t, job.opts.Rebuild, "a failed rebuild is retried as a rebuild")
}
