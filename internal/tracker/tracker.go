// Package tracker runs the whole refresh: download the data drop, prepare the
// derived tables, produce every chart and publish the output directory.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/covid19trackerph/tracker/internal/cache"
	"github.com/covid19trackerph/tracker/internal/charts"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/pipeline"
	"github.com/covid19trackerph/tracker/internal/render"
	"github.com/covid19trackerph/tracker/internal/trackerconfig"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// Downloader fetches the data drop into the data directory
type Downloader interface {
	Download(ctx context.Context, folderID string) ([]string, error)
}

// Options configure one run
type Options struct {
	DataDir      string
	OutputDir    string
	FolderID     string // empty = resolve through the readme
	SkipDownload bool
	Rebuild      bool // ignore caches and replace the output directory
	Workers      int  // 0 = pipeline.WorkerCount
	JobTimeout   time.Duration
	Gnuplot      string
	Settings     trackerconfig.Settings
}

// Result summarizes a run
type Result struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Downloaded []string
	Cases      int
	Testing    int
	Jobs       []pipeline.JobResult
}

// Tracker wires the run stages together.
// ⭐ SSOT: the stage order of a refresh is defined here
type Tracker struct {
	downloader Downloader
	logger     *logger.Logger
}

// New creates a Tracker. downloader may be nil when every run skips the download.
func New(downloader Downloader, log *logger.Logger) *Tracker {
	return &Tracker{
		downloader: downloader,
		logger:     log,
	}
}

var errNoDownloader = errors.New("no downloader configured")

// Run executes download, prepare, plot and publish in order. A failure is
// returned as *contracts.StageError and leaves the published output untouched.
func (t *Tracker) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := t.logger.WithField("run_id", res.RunID)
	log.WithFields(map[string]interface{}{
		"data_dir":   opts.DataDir,
		"output_dir": opts.OutputDir,
		"rebuild":    opts.Rebuild,
	}).Info("Run started")

	if opts.SkipDownload {
		log.Info("Skipping download")
	} else {
		paths, err := t.download(ctx, opts)
		if err != nil {
			return res, stageFailed(log, contracts.RunStageDownload, err)
		}
		res.Downloaded = paths
	}

	start := time.Now()
	tables, err := cache.PrepareTables(ctx, opts.DataDir, opts.Settings, opts.Rebuild, opts.Workers, log)
	if err != nil {
		return res, stageFailed(log, contracts.RunStagePrepare, err)
	}
	res.Cases, res.Testing = len(tables.Cases), len(tables.Testing)
	log.WithFields(map[string]interface{}{
		"cases":   res.Cases,
		"testing": res.Testing,
	}).Timed("Data prepared", start)

	start = time.Now()
	stage, err := render.NewStage(opts.OutputDir)
	if err != nil {
		return res, stageFailed(log, contracts.RunStagePlot, err)
	}

	writer := render.NewWriter(stage.Dir, opts.Gnuplot, log)
	plotter := charts.NewPlotter(opts.Settings, writer.Write, log)
	runner := pipeline.NewRunner(opts.Workers, opts.JobTimeout, log)

	res.Jobs, err = runner.Run(ctx, plotter.Jobs(tables.Cases, tables.Testing))
	if err != nil {
		discard(log, stage)
		return res, stageFailed(log, contracts.RunStagePlot, err)
	}
	log.WithField("jobs", len(res.Jobs)).Timed("Charts written", start)

	if err := stage.Promote(opts.Rebuild); err != nil {
		discard(log, stage)
		return res, stageFailed(log, contracts.RunStagePublish, err)
	}

	res.Duration = time.Since(res.StartedAt)
	log.WithField("output_dir", opts.OutputDir).Timed("Run finished", res.StartedAt)
	return res, nil
}

func (t *Tracker) download(ctx context.Context, opts Options) ([]string, error) {
	if t.downloader == nil {
		return nil, errNoDownloader
	}
	return t.downloader.Download(ctx, opts.FolderID)
}

func stageFailed(log *logger.Logger, stage contracts.RunStage, err error) error {
	log.WithError(err).WithField("stage", string(stage)).Error("Run failed")
	return &contracts.StageError{Stage: stage, Err: err}
}

func discard(log *logger.Logger, stage *render.Stage) {
	if err := stage.Discard(); err != nil {
		log.WithError(err).Warn(fmt.Sprintf("Failed to remove staging dir %s", stage.Dir))
	}
}
