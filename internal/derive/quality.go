package derive

import "github.com/covid19trackerph/tracker/internal/contracts"

// Quality counts the coercions applied during derivation. It is logged, never returned as an error.
type Quality struct {
	Records         int
	OnsetProxied    int
	RecoveryProxied int
	NoRepConf       int
	NullDayCounts   int
	RegionMissing   int
	UnknownFacility int
	TestingRecords  int
}

// CaseQuality summarizes a derived case table
func CaseQuality(records []contracts.CaseRecord) Quality {
	q := Quality{Records: len(records)}
	for _, r := range records {
		if r.OnsetProxy != contracts.OnsetNoProxy {
			q.OnsetProxied++
		}
		if r.RecoverProxy != contracts.RecoverNoProxy {
			q.RecoveryProxied++
		}
		if r.CaseRepType == contracts.RepIncomplete {
			q.NoRepConf++
		}
		for _, p := range []*int{r.SpecimenToRepConf, r.SpecimenToRelease, r.ReleaseToRepConf} {
			if p == nil {
				q.NullDayCounts++
			}
		}
		if r.Region == contracts.NoData {
			q.RegionMissing++
		}
	}
	return q
}

// TestingQuality summarizes a derived testing table
func TestingQuality(records []contracts.TestingRecord) Quality {
	q := Quality{TestingRecords: len(records)}
	for _, r := range records {
		if r.Region == contracts.Unknown {
			q.UnknownFacility++
		}
	}
	return q
}

// Fields returns the counters as log fields
func (q Quality) Fields() map[string]interface{} {
	return map[string]interface{}{
		"records":          q.Records,
		"onset_proxied":    q.OnsetProxied,
		"recovery_proxied": q.RecoveryProxied,
		"no_repconf":       q.NoRepConf,
		"null_day_counts":  q.NullDayCounts,
		"region_missing":   q.RegionMissing,
		"unknown_facility": q.UnknownFacility,
		"testing_records":  q.TestingRecords,
	}
}
