// Package cache keeps derived tables next to their source files and decides
// when they must be rebuilt.
package cache

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Extension of cache files
const Extension = ".gob.gz"

// NeedsRefresh reports whether the cache at cachePath must be rebuilt: it is
// absent, or some source was modified strictly after it.
// A source that cannot be stat'ed is an error.
func NeedsRefresh(cachePath string, sources []string) (bool, error) {
	info, err := os.Stat(cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat cache %s: %w", cachePath, err)
	}
	cached := info.ModTime()

	for _, src := range sources {
		si, err := os.Stat(src)
		if err != nil {
			return false, fmt.Errorf("stat source %s: %w", src, err)
		}
		if si.ModTime().After(cached) {
			return true, nil
		}
	}
	return false, nil
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName returns the cache file name of a source glob pattern,
// e.g. "*Case Information*.csv" -> "Case-Information-csv.gob.gz".
func FileName(pattern string) string {
	name := strings.Trim(nonWord.ReplaceAllString(pattern, "-"), "-")
	if name == "" {
		name = "cache"
	}
	return name + Extension
}
