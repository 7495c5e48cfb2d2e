package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/dataset"
	"github.com/covid19trackerph/tracker/internal/derive"
	"github.com/covid19trackerph/tracker/internal/trackerconfig"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// Options control how a derived table is prepared
type Options struct {
	DataDir string
	// Pattern is the source glob, relative to DataDir
	Pattern string
	// Rebuild skips the staleness check and always derives
	Rebuild      bool
	SettingsHash string
	Logger       *logger.Logger
}

// BuildFunc derives a table from its source files
type BuildFunc[T any] func(ctx context.Context, sources []string) ([]T, error)

// Prepare returns the table derived from the files matching opts.Pattern.
// The cached snapshot is reused when it is fresh and was built with the same
// settings; otherwise build runs and the result replaces the cache.
func Prepare[T any](ctx context.Context, opts Options, build BuildFunc[T]) ([]T, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	sources, err := filepath.Glob(filepath.Join(opts.DataDir, opts.Pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", opts.Pattern, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s in %s: %w", opts.Pattern, opts.DataDir, contracts.ErrNoSourceFiles)
	}
	sort.Strings(sources)

	cachePath := filepath.Join(opts.DataDir, FileName(opts.Pattern))
	log = log.WithFields(map[string]interface{}{
		"cache":   cachePath,
		"sources": len(sources),
	})

	if !opts.Rebuild {
		rows, ok, err := loadFresh[T](cachePath, sources, opts.SettingsHash, log)
		if err != nil {
			return nil, err
		}
		if ok {
			log.WithField("rows", len(rows)).Info("Using cached table")
			return rows, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := build(ctx, sources)
	if err != nil {
		return nil, err
	}
	log.WithField("rows", len(rows)).Timed("Derived table", start)

	snap := Snapshot[T]{
		SettingsHash: opts.SettingsHash,
		Sources:      sources,
		CreatedAt:    time.Now().UTC(),
		Rows:         rows,
	}
	if err := Save(cachePath, snap); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}
	return rows, nil
}

// loadFresh returns the cached rows when the cache is fresh and usable.
// Adding or removing a source file invalidates the cache whatever its mtime.
// An unreadable cache is rebuilt rather than failing the run.
func loadFresh[T any](cachePath string, sources []string, hash string, log *logger.Logger) ([]T, bool, error) {
	stale, err := NeedsRefresh(cachePath, sources)
	if err != nil {
		return nil, false, err
	}
	if stale {
		log.Debug("Cache is stale")
		return nil, false, nil
	}

	snap, err := Load[T](cachePath)
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable cache")
		return nil, false, nil
	}
	if snap.SettingsHash != hash {
		log.Info("Settings changed since the cache was written")
		return nil, false, nil
	}
	if !slices.Equal(snap.Sources, sources) {
		log.WithField("cached_sources", len(snap.Sources)).Info("Source files changed since the cache was written")
		return nil, false, nil
	}
	return snap.Rows, true, nil
}

// Tables are the derived inputs of the chart stage
type Tables struct {
	Cases   []contracts.CaseRecord
	Testing []contracts.TestingRecord
}

// PrepareTables prepares the case and testing tables described by settings.
func PrepareTables(ctx context.Context, dataDir string, settings trackerconfig.Settings, rebuild bool, workers int, log *logger.Logger) (Tables, error) {
	hash, err := trackerconfig.Hash(settings)
	if err != nil {
		return Tables{}, fmt.Errorf("hash settings: %w", err)
	}

	cases, err := Prepare(ctx, Options{
		DataDir:      dataDir,
		Pattern:      settings.Sources.Cases,
		Rebuild:      rebuild,
		SettingsHash: hash,
		Logger:       log,
	}, CaseBuilder(settings, workers, log))
	if err != nil {
		return Tables{}, fmt.Errorf("case information: %w", err)
	}

	testingRows, err := Prepare(ctx, Options{
		DataDir:      dataDir,
		Pattern:      settings.Sources.Testing,
		Rebuild:      rebuild,
		SettingsHash: hash,
		Logger:       log,
	}, TestingBuilder(settings, workers, log))
	if err != nil {
		return Tables{}, fmt.Errorf("testing aggregates: %w", err)
	}

	return Tables{Cases: cases, Testing: testingRows}, nil
}

// CaseBuilder reads case information CSVs and derives them in parallel
func CaseBuilder(settings trackerconfig.Settings, workers int, log *logger.Logger) BuildFunc[contracts.CaseRecord] {
	return func(ctx context.Context, sources []string) ([]contracts.CaseRecord, error) {
		raw, err := dataset.ReadFiles(sources, dataset.ReadCases)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records := derive.Cases(raw, settings.RecoveryProxyDays, workers)
		log.WithFields(derive.CaseQuality(records).Fields()).Debug("Case data quality")
		return records, nil
	}
}

// TestingBuilder reads testing aggregate CSVs, joins the facility regions
// and derives them in parallel
func TestingBuilder(settings trackerconfig.Settings, workers int, log *logger.Logger) BuildFunc[contracts.TestingRecord] {
	return func(ctx context.Context, sources []string) ([]contracts.TestingRecord, error) {
		raw, err := dataset.ReadFiles(sources, dataset.ReadTesting)
		if err != nil {
			return nil, err
		}
		facilities, err := dataset.LoadFacilities(settings.Sources.Facilities, log)
		if err != nil {
			return nil, fmt.Errorf("facilities: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records := derive.Testing(raw, facilities, settings.TestingStartDate(), workers)
		log.WithFields(derive.TestingQuality(records).Fields()).Debug("Testing data quality")
		return records, nil
	}
}
