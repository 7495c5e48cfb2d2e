package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/datadrop"
	"github.com/covid19trackerph/tracker/internal/tracker"
	"github.com/covid19trackerph/tracker/internal/trackerconfig"
	"github.com/covid19trackerph/tracker/pkg/config"
	"github.com/covid19trackerph/tracker/pkg/httputil"
	"github.com/covid19trackerph/tracker/pkg/logger"
	"github.com/covid19trackerph/tracker/pkg/redis"
)

// redisPrefix namespaces every key the tracker writes
const redisPrefix = "tracker"

// app holds the dependencies shared by the commands
type app struct {
	cfg      *config.Config
	settings trackerconfig.Settings
	log      *logger.Logger
	redis    *redis.Client
}

// newApp loads the environment, applies the global flags and connects to Redis when enabled
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if pipelineFile != "" {
		cfg.PipelineFile = pipelineFile
	}

	log := logger.New(cfg)

	settings, err := trackerconfig.Load(cfg.PipelineFile)
	if err != nil {
		return nil, fmt.Errorf("load pipeline settings: %w", err)
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		settings: settings,
		log:      log,
		redis:    rc,
	}, nil
}

// Close releases the Redis connection
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

// downloader wires the Drive client with pacing, the shared limiter and the folder cache
func (a *app) downloader() *datadrop.Downloader {
	hc := httputil.New(a.log, a.cfg.Drive.Timeout).WithPacing(a.cfg.Drive.RequestsPerSecond)
	if a.redis.Enabled() {
		hc = hc.WithRateLimiter(redis.NewRateLimiter(a.redis, redisPrefix), redis.DriveRateLimit)
	}

	drive := datadrop.NewDriveClient(hc, a.cfg.Drive)
	return datadrop.NewDownloader(drive, redis.NewCache(a.redis, redisPrefix), a.cfg.DataDir, a.cfg.Drive.ReadmeFolderID, a.log)
}

// tracker creates a Tracker downloading through the Drive client
func (a *app) tracker() *tracker.Tracker {
	return tracker.New(a.downloader(), a.log)
}

// runOptions builds the run options from the environment
func (a *app) runOptions() tracker.Options {
	return tracker.Options{
		DataDir:    a.cfg.DataDir,
		OutputDir:  a.cfg.OutputDir,
		Rebuild:    a.cfg.Rebuild,
		Workers:    a.cfg.Workers,
		JobTimeout: a.cfg.JobTimeout,
		Gnuplot:    a.cfg.GnuplotPath,
		Settings:   a.settings,
	}
}

// shutdownTimeout bounds graceful shutdown of the preview server
const shutdownTimeout = 10 * time.Second
