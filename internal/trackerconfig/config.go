package trackerconfig

import "github.com/covid19trackerph/tracker/internal/period"

// Settings is the immutable pipeline configuration.
// ⭐ SSOT: built once per run and passed by value to every stage
type Settings struct {
	// PeriodDays lists the trailing windows every period-aware chart is repeated for
	PeriodDays []int `yaml:"period_days" json:"period_days"`

	Buckets BucketSettings `yaml:"buckets" json:"buckets"`

	// SampleWeekday is the day used to downsample daily series, 0 = Monday
	SampleWeekday int `yaml:"sample_weekday" json:"sample_weekday"`

	TopN int `yaml:"top_n" json:"top_n"`

	// RecoveryProxyDays is added to the onset date when a recovery date is missing
	RecoveryProxyDays int `yaml:"recovery_proxy_days" json:"recovery_proxy_days"`

	// DoublingExcludeDays drops the latest days of onset data, which are still being backfilled
	DoublingExcludeDays int `yaml:"doubling_exclude_days" json:"doubling_exclude_days"`

	// TrendMarkerDays places a vertical marker this many days before the latest date
	TrendMarkerDays int `yaml:"trend_marker_days" json:"trend_marker_days"`

	// TestingStart drops testing rows reported before this date (YYYY-MM-DD)
	TestingStart string `yaml:"testing_start" json:"testing_start"`

	AgeGroups []string `yaml:"age_groups" json:"age_groups"`

	Sources SourceSettings `yaml:"sources" json:"sources"`
}

// BucketSettings selects the time bucket of cumulative series
type BucketSettings struct {
	Frequency period.Frequency `yaml:"frequency" json:"frequency"`
	WeekEnd   int              `yaml:"week_end" json:"week_end"` // weekly only, 0 = Monday
}

// SourceSettings holds the glob patterns of the input files, relative to the data dir
type SourceSettings struct {
	Cases      string `yaml:"cases" json:"cases"`
	Testing    string `yaml:"testing" json:"testing"`
	Facilities string `yaml:"facilities" json:"facilities"` // relative to the working dir
}

// Bucketer returns the bucketer described by the bucket settings
func (s Settings) Bucketer() period.Bucketer {
	return period.Bucketer{Freq: s.Buckets.Frequency, WeekEnd: s.Buckets.WeekEnd}
}

// Default returns the built-in settings
func Default() Settings {
	return Settings{
		PeriodDays: []int{14, 30},
		Buckets: BucketSettings{
			Frequency: period.Weekly,
			WeekEnd:   period.Sunday,
		},
		SampleWeekday:       period.Sunday,
		TopN:                10,
		RecoveryProxyDays:   14,
		DoublingExcludeDays: 14,
		TrendMarkerDays:     14,
		TestingStart:        "2020-04-01",
		AgeGroups: []string{
			"0 to 4", "5 to 9", "10 to 14", "15 to 19", "20 to 24",
			"25 to 29", "30 to 34", "35 to 39", "40 to 44", "45 to 49",
			"50 to 54", "55 to 59", "60 to 64", "65 to 69", "70 to 74",
			"75 to 79", "80+", "No Data",
		},
		Sources: SourceSettings{
			Cases:      "*Case Information*.csv",
			Testing:    "*Testing Aggregates*.csv",
			Facilities: "resources/test-facility.csv",
		},
	}
}
