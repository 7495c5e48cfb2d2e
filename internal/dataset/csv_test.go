package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/pkg/config"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

const casesCSV = "\ufeffCaseCode,Age,AgeGroup,Sex,DateSpecimen,DateRepConf,HealthStatus,RegionRes,DateOnset\n" +
	"C1,34,30 to 34,FEMALE,2020-04-01,2020-04-05,RECOVERED,NCR: National Capital Region,\n" +
	"C2,,,,,2020-04-06,MILD,,2020-04-02\n"

func TestReadCases(t *testing.T) {
	rows, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "C1", rows[0].CaseCode)
	assert.Equal(t, "30 to 34", rows[0].AgeGroup)
	assert.Equal(t, "NCR: National Capital Region", rows[0].RegionRes)
	assert.Equal(t, "", rows[0].DateOnset)
	assert.Equal(t, "", rows[0].DateDied, "missing column reads as empty")
	assert.Equal(t, "2020-04-02", rows[1].DateOnset)
}

func TestReadTestingAndFacilities(t *testing.T) {
	rows, err := ReadTesting(strings.NewReader(
		"facility_name,report_date,daily_output_unique_individuals,daily_output_positive_individuals\n" +
			"Lab A,2020-04-10,100,5\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", rows[0].DailyUniqueIndividuals)
	assert.Equal(t, "5", rows[0].DailyPositiveIndividuals)

	facilities, err := ReadFacilities(strings.NewReader("facility_name,REGION\nLab A,NCR\nLab A,CAR\nLab B, Region VII \n"))
	require.NoError(t, err)
	assert.Equal(t, "NCR", facilities.Region("Lab A"))
	assert.Equal(t, "Region VII", facilities.Region("Lab B"))
	assert.Equal(t, "Unknown", facilities.Region("Lab C"))
}

func TestReadEmpty(t *testing.T) {
	rows, err := ReadCases(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("CaseCode\nA1\nA2\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("CaseCode\nB1\n"), 0o644))

	rows, err := ReadFiles([]string{a, b}, ReadCases)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "B1", rows[2].CaseCode)

	_, err = ReadFiles([]string{filepath.Join(dir, "missing.csv")}, ReadCases)
	assert.Error(t, err)
}

func TestLoadFacilitiesMissingFile(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&config.Config{Env: "test", LogLevel: "info", LogFormat: "json"}, &buf)

	missing := filepath.Join(t.TempDir(), "nope.csv")
	facilities, err := LoadFacilities(missing, log)
	require.NoError(t, err)
	assert.Empty(t, facilities)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "Facility lookup table not found")
	assert.Contains(t, buf.String(), missing)

	buf.Reset()
	_, err = LoadFacilities("", log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No facility lookup table configured")
}

func TestLoadFacilities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test-facility.csv")
	require.NoError(t, os.WriteFile(path, []byte("facility_name,REGION\nLab A,NCR\n"), 0o644))

	facilities, err := LoadFacilities(path, logger.Nop())
	require.NoError(t, err)
	assert.Len(t, facilities, 1)
}
