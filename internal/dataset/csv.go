// Package dataset reads the data-drop CSV files into raw rows.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/derive"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// header maps column names to positions. Missing columns read as "".
type header map[string]int

func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// each calls fn for every data record of a CSV stream.
func each(r io.Reader, fn func(h header, record []string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	h := make(header, len(first))
	for i, name := range first {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		h[name] = i
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		fn(h, record)
	}
}

// ReadCases reads a case information CSV
func ReadCases(r io.Reader) ([]contracts.RawCase, error) {
	var rows []contracts.RawCase
	err := each(r, func(h header, rec []string) {
		rows = append(rows, contracts.RawCase{
			CaseCode:          h.get(rec, "CaseCode"),
			Age:               h.get(rec, "Age"),
			AgeGroup:          h.get(rec, "AgeGroup"),
			Sex:               h.get(rec, "Sex"),
			DateSpecimen:      h.get(rec, "DateSpecimen"),
			DateResultRelease: h.get(rec, "DateResultRelease"),
			DateRepConf:       h.get(rec, "DateRepConf"),
			DateDied:          h.get(rec, "DateDied"),
			DateRecover:       h.get(rec, "DateRecover"),
			RemovalType:       h.get(rec, "RemovalType"),
			Admitted:          h.get(rec, "Admitted"),
			RegionRes:         h.get(rec, "RegionRes"),
			ProvRes:           h.get(rec, "ProvRes"),
			CityMunRes:        h.get(rec, "CityMunRes"),
			HealthStatus:      h.get(rec, "HealthStatus"),
			Quarantined:       h.get(rec, "Quarantined"),
			DateOnset:         h.get(rec, "DateOnset"),
		})
	})
	return rows, err
}

// ReadTesting reads a testing aggregates CSV
func ReadTesting(r io.Reader) ([]contracts.RawTesting, error) {
	var rows []contracts.RawTesting
	err := each(r, func(h header, rec []string) {
		rows = append(rows, contracts.RawTesting{
			FacilityName:                  h.get(rec, contracts.ColFacilityName),
			ReportDate:                    h.get(rec, contracts.ColReportDate),
			DailySamplesTested:            h.get(rec, string(contracts.ColDailySamplesTested)),
			DailyUniqueIndividuals:        h.get(rec, string(contracts.ColDailyUniqueIndividuals)),
			DailyPositiveIndividuals:      h.get(rec, string(contracts.ColDailyPositiveIndividuals)),
			CumulativeSamplesTested:       h.get(rec, string(contracts.ColCumulativeSamplesTested)),
			CumulativeUniqueIndividuals:   h.get(rec, string(contracts.ColCumulativeUniqueIndividuals)),
			CumulativePositiveIndividuals: h.get(rec, string(contracts.ColCumulativePositiveIndividuals)),
		})
	})
	return rows, err
}

// ReadFacilities reads the facility_name,REGION lookup table. The first
// region seen for a facility wins.
func ReadFacilities(r io.Reader) (derive.Facilities, error) {
	facilities := derive.Facilities{}
	err := each(r, func(h header, rec []string) {
		name := h.get(rec, contracts.ColFacilityName)
		if _, ok := facilities[name]; !ok {
			facilities[name] = strings.TrimSpace(h.get(rec, contracts.ColTestRegion))
		}
	})
	return facilities, err
}

// ReadFiles reads and concatenates every file with read, in the given order.
func ReadFiles[T any](paths []string, read func(io.Reader) ([]T, error)) ([]T, error) {
	var out []T
	for _, p := range paths {
		rows, err := readFile(p, read)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func readFile[T any](p string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return rows, nil
}

// LoadFacilities reads the lookup table at path. A missing file yields an
// empty table so every facility maps to "Unknown"; that is logged as a warning.
func LoadFacilities(path string, log *logger.Logger) (derive.Facilities, error) {
	if path == "" {
		log.Warn("No facility lookup table configured, testing regions will be Unknown")
		return derive.Facilities{}, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", path).Warn("Facility lookup table not found, testing regions will be Unknown")
		return derive.Facilities{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFacilities(f)
}
