package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/trackerconfig"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

var base = time.Date(2021, 10, 10, 12, 0, 0, 0, time.UTC)

func touch(t *testing.T, path string, mtime time.Time) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestNeedsRefresh(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cases.gob.gz")
	older := touch(t, filepath.Join(dir, "a.csv"), base.Add(-time.Hour))
	same := touch(t, filepath.Join(dir, "b.csv"), base)
	newer := touch(t, filepath.Join(dir, "c.csv"), base.Add(time.Hour))

	stale, err := NeedsRefresh(cachePath, []string{older})
	require.NoError(t, err)
	assert.True(t, stale, "absent cache")

	touch(t, cachePath, base)

	tests := []struct {
		name    string
		sources []string
		want    bool
	}{
		{"single older source", []string{older}, false},
		{"single source with equal mtime", []string{same}, false},
		{"single newer source", []string{newer}, true},
		{"all older", []string{older, same}, false},
		{"mixed older and newer", []string{older, newer, same}, true},
		{"no sources", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NeedsRefresh(cachePath, tt.sources)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = NeedsRefresh(cachePath, []string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Case-Information-csv.gob.gz", FileName("*Case Information*.csv"))
	assert.Equal(t, "Testing-Aggregates-csv.gob.gz", FileName("*Testing Aggregates*.csv"))
	assert.Equal(t, "cache.gob.gz", FileName("*"))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cases.gob.gz")
	four := 4
	snap := Snapshot[contracts.CaseRecord]{
		SettingsHash: "abc",
		Sources:      []string{"a.csv"},
		CreatedAt:    base,
		Rows: []contracts.CaseRecord{
			{CaseCode: "C1", DateOnset: period.MustDate("2021-10-01"), SpecimenToRepConf: &four},
			{CaseCode: "C2"},
		},
	}

	require.NoError(t, Save(path, snap))

	got, err := Load[contracts.CaseRecord](path)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SettingsHash)
	require.Len(t, got.Rows, 2)
	assert.True(t, got.Rows[0].DateOnset.Equal(snap.Rows[0].DateOnset))
	require.NotNil(t, got.Rows[0].SpecimenToRepConf)
	assert.Equal(t, 4, *got.Rows[0].SpecimenToRepConf)
	assert.Nil(t, got.Rows[1].SpecimenToRepConf)
	assert.True(t, got.Rows[1].DateOnset.IsZero())

	_, err = Load[contracts.CaseRecord](filepath.Join(t.TempDir(), "missing.gob.gz"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type counter struct {
	calls int
}

func (c *counter) build(rows ...string) BuildFunc[string] {
	return func(ctx context.Context, sources []string) ([]string, error) {
		c.calls++
		return rows, nil
	}
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "DOH COVID Data Drop_ Case Information.csv"), base)
	opts := Options{DataDir: dir, Pattern: "*Case Information*.csv", SettingsHash: "v1", Logger: logger.Nop()}
	ctx := context.Background()
	c := &counter{}

	rows, err := Prepare(ctx, opts, c.build("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows)
	assert.Equal(t, 1, c.calls)
	assert.FileExists(t, filepath.Join(dir, "Case-Information-csv.gob.gz"))

	rows, err = Prepare(ctx, opts, c.build("ignored"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows, "fresh cache is reused")
	assert.Equal(t, 1, c.calls)

	t.Run("rebuild bypasses the cache", func(t *testing.T) {
		forced := opts
		forced.Rebuild = true
		rows, err := Prepare(ctx, forced, c.build("c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, rows)
		assert.Equal(t, 2, c.calls)
	})

	t.Run("settings change invalidates", func(t *testing.T) {
		changed := opts
		changed.SettingsHash = "v2"
		rows, err := Prepare(ctx, changed, c.build("d"))
		require.NoError(t, err)
		assert.Equal(t, []string{"d"}, rows)
		assert.Equal(t, 3, c.calls)
	})

	t.Run("newer source invalidates", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(src, future, future))
		rows, err := Prepare(ctx, Options{DataDir: dir, Pattern: opts.Pattern, SettingsHash: "v2"}, c.build("e"))
		require.NoError(t, err)
		assert.Equal(t, []string{"e"}, rows)
		assert.Equal(t, 4, c.calls)
	})
}

func TestPrepareSourceSetChange(t *testing.T) {
	dir := t.TempDir()
	first := touch(t, filepath.Join(dir, "DOH COVID Data Drop_ 20211010 - Case Information.csv"), base)
	opts := Options{DataDir: dir, Pattern: "*Case Information*.csv", SettingsHash: "v1", Logger: logger.Nop()}
	ctx := context.Background()
	c := &counter{}

	_, err := Prepare(ctx, opts, c.build("a"))
	require.NoError(t, err)
	require.Equal(t, 1, c.calls)

	t.Run("added file with an older mtime", func(t *testing.T) {
		touch(t, filepath.Join(dir, "DOH COVID Data Drop_ 20211009 - Case Information.csv"), base.Add(-24*time.Hour))
		rows, err := Prepare(ctx, opts, c.build("b"))
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, rows)
		assert.Equal(t, 2, c.calls)
	})

	t.Run("removed file", func(t *testing.T) {
		require.NoError(t, os.Remove(first))
		rows, err := Prepare(ctx, opts, c.build("c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, rows)
		assert.Equal(t, 3, c.calls)
	})

	t.Run("unchanged set is reused", func(t *testing.T) {
		rows, err := Prepare(ctx, opts, c.build("ignored"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, rows)
		assert.Equal(t, 3, c.calls)
	})
}

func TestPrepareErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Prepare(ctx, Options{DataDir: t.TempDir(), Pattern: "*.csv"}, (&counter{}).build())
	assert.ErrorIs(t, err, contracts.ErrNoSourceFiles)

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.csv"), base)
	boom := errors.New("boom")
	_, err = Prepare(ctx, Options{DataDir: dir, Pattern: "*.csv"}, func(context.Context, []string) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(dir, "csv.gob.gz"))
}

const casesCSV = "CaseCode,Age,AgeGroup,Sex,DateSpecimen,DateResultRelease,DateRepConf,DateDied,DateRecover,RemovalType,Admitted,RegionRes,ProvRes,CityMunRes,HealthStatus,Quarantined,DateOnset\n" +
	"C1,30,30 to 34,MALE,2021-10-01,2021-10-02,2021-10-04,,2021-10-09,RECOVERED,NO,NCR,NCR,QUEZON CITY,RECOVERED,NO,2021-09-30\n" +
	"C2,61,60 to 64,FEMALE,2021-10-03,,2021-10-05,2021-10-06,,DIED,YES,Region IV-A: CALABARZON,LAGUNA,CALAMBA,DIED,NO,\n"

const testingCSV = "facility_name,report_date,daily_output_samples_tested,daily_output_unique_individuals,daily_output_positive_individuals,cumulative_samples_tested,cumulative_unique_individuals,cumulative_positive_individuals\n" +
	"Lab A,2021-10-04,100,90,9,1000,900,90\n" +
	"Lab B,2020-03-30,5,5,1,5,5,1\n"

func TestPrepareTables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DOH COVID Data Drop_ 20211010 - 04 Case Information.csv"), []byte(casesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DOH COVID Data Drop_ 20211010 - 07 Testing Aggregates.csv"), []byte(testingCSV), 0o644))
	facilities := filepath.Join(t.TempDir(), "facilities.csv")
	require.NoError(t, os.WriteFile(facilities, []byte("facility_name,REGION\nLab A,NCR\n"), 0o644))

	settings := trackerconfig.Default()
	settings.Sources.Facilities = facilities

	tables, err := PrepareTables(context.Background(), dir, settings, false, 2, logger.Nop())
	require.NoError(t, err)

	require.Len(t, tables.Cases, 2)
	assert.Equal(t, "NCR", tables.Cases[0].Region)
	assert.Equal(t, "Region IV-A", tables.Cases[1].Region)
	assert.Equal(t, contracts.StatusClosed, tables.Cases[1].CaseStatus)
	assert.Equal(t, contracts.OnsetSpecimen, tables.Cases[1].OnsetProxy)

	require.Len(t, tables.Testing, 1, "rows before the testing start are dropped")
	assert.Equal(t, "NCR", tables.Testing[0].Region)
	assert.InDelta(t, 0.1, tables.Testing[0].PctPositiveDaily, 1e-9)

	assert.FileExists(t, filepath.Join(dir, "Case-Information-csv.gob.gz"))
	assert.FileExists(t, filepath.Join(dir, "Testing-Aggregates-csv.gob.gz"))
}
