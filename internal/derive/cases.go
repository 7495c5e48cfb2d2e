// Package derive turns raw line-list and testing rows into enriched records.
// Every function here is pure and works on one record at a time, so callers
// may shard the input freely.
package derive

import (
	"fmt"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/pipeline"
)

// Context carries the dataset-wide values a single record needs.
// It is computed once over the whole input before any sharding.
type Context struct {
	MaxRepConf        time.Time // latest report-confirmed date, zero if none
	RecoveryProxyDays int
}

// NewContext scans the raw rows for the latest report-confirmed date.
func NewContext(rows []contracts.RawCase, recoveryProxyDays int) Context {
	var max time.Time
	for _, r := range rows {
		if d, ok := period.ParseDate(r.DateRepConf); ok && d.After(max) {
			max = d
		}
	}
	return Context{MaxRepConf: max, RecoveryProxyDays: recoveryProxyDays}
}

// Cases derives every raw row using workers goroutines. Output order matches input order.
func Cases(rows []contracts.RawCase, recoveryProxyDays, workers int) []contracts.CaseRecord {
	ctx := NewContext(rows, recoveryProxyDays)
	return pipeline.ApplyParallel(rows, pipeline.Map(func(r contracts.RawCase) contracts.CaseRecord {
		return Case(r, ctx)
	}), workers)
}

// Case derives one enriched record. The steps run in a fixed order: the
// recovery proxy reads the onset proxy, which must already be applied.
func Case(raw contracts.RawCase, ctx Context) contracts.CaseRecord {
	rec := contracts.CaseRecord{
		CaseCode:     raw.CaseCode,
		Sex:          raw.Sex,
		HealthStatus: strings.TrimSpace(raw.HealthStatus),
		RemovalType:  raw.RemovalType,
		RegionRes:    raw.RegionRes,
		AgeGroup:     orNoData(raw.AgeGroup),
		Admitted:     orNoData(raw.Admitted),
		Quarantined:  orNoData(raw.Quarantined),
		ProvRes:      orNoData(raw.ProvRes),
		CityMunRes:   orNoData(raw.CityMunRes),
	}

	rec.DateSpecimen = parse(raw.DateSpecimen)
	rec.DateResultRelease = parse(raw.DateResultRelease)
	rec.DateRepConf = parse(raw.DateRepConf)
	rec.DateOnset = parse(raw.DateOnset)
	rec.DateRecover = parse(raw.DateRecover)
	rec.DateDied = parse(raw.DateDied)

	rec.SpecimenToRepConf = DayCount(rec.DateSpecimen, rec.DateRepConf)
	rec.SpecimenToRelease = DayCount(rec.DateSpecimen, rec.DateResultRelease)
	rec.ReleaseToRepConf = DayCount(rec.DateResultRelease, rec.DateRepConf)

	rec.OnsetProxy = OnsetProxy(rec)
	rec.DateOnset = ProxiedOnset(rec)

	rec.RecoverProxy = RecoverProxy(rec, ctx.RecoveryProxyDays)
	rec.DateRecover = ProxiedRecovery(rec, ctx)

	rec.CaseRepType = RepType(rec.DateRepConf, ctx.MaxRepConf)
	rec.CaseStatus = Status(rec.HealthStatus)
	rec.DateClosed = ClosedDate(rec)
	rec.Region = Region(raw.RegionRes)

	return rec
}

// DayCount returns the whole days from earlier to later, or nil when either
// date is null or they are out of order. A result is never negative.
func DayCount(earlier, later time.Time) *int {
	if earlier.IsZero() || later.IsZero() || later.Before(earlier) {
		return nil
	}
	n := period.DaysBetween(earlier, later)
	return &n
}

// OnsetProxy picks the onset stand-in: none when onset is reported, else the
// specimen date when known, else the report-confirmed date.
func OnsetProxy(rec contracts.CaseRecord) contracts.OnsetProxy {
	switch {
	case !rec.DateOnset.IsZero():
		return contracts.OnsetNoProxy
	case !rec.DateSpecimen.IsZero():
		return contracts.OnsetSpecimen
	default:
		return contracts.OnsetRepConf
	}
}

// ProxiedOnset returns the onset date after applying rec.OnsetProxy.
func ProxiedOnset(rec contracts.CaseRecord) time.Time {
	switch rec.OnsetProxy {
	case contracts.OnsetSpecimen:
		return rec.DateSpecimen
	case contracts.OnsetRepConf:
		return rec.DateRepConf
	default:
		return rec.DateOnset
	}
}

// RecoverProxy labels the recovery stand-in as "<onset source>+<days>".
func RecoverProxy(rec contracts.CaseRecord, days int) string {
	if !rec.DateRecover.IsZero() {
		return contracts.RecoverNoProxy
	}
	source := string(rec.OnsetProxy)
	if rec.OnsetProxy == contracts.OnsetNoProxy {
		source = string(contracts.ColDateOnset)
	}
	return fmt.Sprintf("%s+%d", source, days)
}

// ProxiedRecovery returns the reported recovery date, or onset plus the proxy
// days clamped to the latest report-confirmed date. Null onset stays null.
func ProxiedRecovery(rec contracts.CaseRecord, ctx Context) time.Time {
	if rec.RecoverProxy == contracts.RecoverNoProxy {
		return rec.DateRecover
	}
	if rec.DateOnset.IsZero() {
		return time.Time{}
	}
	d := period.AddDays(rec.DateOnset, ctx.RecoveryProxyDays)
	if !ctx.MaxRepConf.IsZero() && !d.Before(ctx.MaxRepConf) {
		return ctx.MaxRepConf
	}
	return d
}

// RepType classifies a report date against the dataset's latest report date.
func RepType(repConf, maxRepConf time.Time) contracts.CaseRepType {
	switch {
	case repConf.IsZero():
		return contracts.RepIncomplete
	case repConf.Equal(maxRepConf):
		return contracts.RepNewCase
	default:
		return contracts.RepPrevious
	}
}

// Status returns CLOSED for recovered and died records, ACTIVE otherwise.
func Status(healthStatus string) contracts.CaseStatus {
	if contracts.IsClosed(healthStatus) {
		return contracts.StatusClosed
	}
	return contracts.StatusActive
}

// ClosedDate is the death date for DIED, the recovery date for RECOVERED and null otherwise.
func ClosedDate(rec contracts.CaseRecord) time.Time {
	switch rec.HealthStatus {
	case contracts.HealthDied:
		return rec.DateDied
	case contracts.HealthRecovered:
		return rec.DateRecover
	default:
		return time.Time{}
	}
}

// Region shortens "NCR: National Capital Region" style names to their first token.
func Region(regionRes string) string {
	regionRes = strings.TrimSpace(regionRes)
	if regionRes == "" {
		return contracts.NoData
	}
	return strings.TrimSpace(strings.SplitN(regionRes, ":", 2)[0])
}

func parse(s string) time.Time {
	t, _ := period.ParseDate(s)
	return t
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return contracts.NoData
	}
	return s
}
