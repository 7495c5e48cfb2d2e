package trackerconfig

import (
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/period"
)

// ValidationError describes the first invalid setting
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Settings) error {
	if len(cfg.PeriodDays) == 0 {
		return ValidationError{"period_days", "at least one period is required"}
	}
	seen := make(map[int]bool, len(cfg.PeriodDays))
	for _, d := range cfg.PeriodDays {
		if d <= 0 {
			return ValidationError{"period_days", fmt.Sprintf("must be > 0, got %d", d)}
		}
		if seen[d] {
			return ValidationError{"period_days", fmt.Sprintf("duplicate period %d", d)}
		}
		seen[d] = true
	}

	switch cfg.Buckets.Frequency {
	case period.Daily:
	case period.Weekly:
		if !validWeekday(cfg.Buckets.WeekEnd) {
			return ValidationError{"buckets.week_end", "must be in [0, 6]"}
		}
		// Cumulative series are sampled on bucket end dates; any other
		// weekday would match no weekly bucket at all.
		if cfg.Buckets.WeekEnd != cfg.SampleWeekday {
			return ValidationError{"sample_weekday", "must equal buckets.week_end for weekly buckets"}
		}
	default:
		return ValidationError{"buckets.frequency", fmt.Sprintf("unknown frequency %q", cfg.Buckets.Frequency)}
	}

	if !validWeekday(cfg.SampleWeekday) {
		return ValidationError{"sample_weekday", "must be in [0, 6]"}
	}
	if cfg.TopN <= 0 {
		return ValidationError{"top_n", "must be > 0"}
	}
	if cfg.RecoveryProxyDays <= 0 {
		return ValidationError{"recovery_proxy_days", "must be > 0"}
	}
	if cfg.DoublingExcludeDays < 0 {
		return ValidationError{"doubling_exclude_days", "must be >= 0"}
	}
	if cfg.TrendMarkerDays < 0 {
		return ValidationError{"trend_marker_days", "must be >= 0"}
	}
	if _, err := time.Parse("2006-01-02", cfg.TestingStart); err != nil {
		return ValidationError{"testing_start", "must be YYYY-MM-DD"}
	}
	if len(cfg.AgeGroups) == 0 {
		return ValidationError{"age_groups", "required"}
	}
	if cfg.Sources.Cases == "" {
		return ValidationError{"sources.cases", "required"}
	}
	if cfg.Sources.Testing == "" {
		return ValidationError{"sources.testing", "required"}
	}

	return nil
}

// TestingStartDate returns the parsed testing start date
func (s Settings) TestingStartDate() time.Time {
	t, _ := time.Parse("2006-01-02", s.TestingStart)
	return t
}

func validWeekday(d int) bool {
	return d >= 0 && d <= 6
}
