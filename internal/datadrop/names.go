package datadrop

import (
	"regexp"
	"strings"
)

var (
	readmeSlashDateRe = regexp.MustCompile(` \(\d+/\d+\)`)
	readmeUnderDateRe = regexp.MustCompile(` \(\d+_\d+\)`)
	oddballPrefixRe   = regexp.MustCompile(`.* \d{8} - `)
	dataPrefixRe      = regexp.MustCompile(`.*DOH COVID Data Drop_ \d{8} - `)
)

// oddballs do not follow the naming convention of the other data files
var oddballs = []string{"Changelog.xlsx", "DOH Data Drop.xlsx"}

// TrimFileName removes the publication date from a data-drop file name so
// each day's download overwrites the previous one.
func TrimFileName(name string) string {
	var trimmed string
	switch {
	case strings.Contains(name, "READ ME"):
		trimmed = trimReadmeName(name)
	case isOddball(name):
		trimmed = oddballPrefixRe.ReplaceAllString(name, "")
	default:
		trimmed = dataPrefixRe.ReplaceAllString(name, "")
	}
	// remote names may still carry path separators
	return strings.ReplaceAll(trimmed, "/", "_")
}

func trimReadmeName(name string) string {
	switch {
	case strings.Contains(name, "/"):
		return readmeSlashDateRe.ReplaceAllString(name, "")
	case strings.Contains(name, "_"):
		return readmeUnderDateRe.ReplaceAllString(name, "")
	default:
		return name
	}
}

func isOddball(name string) bool {
	for _, o := range oddballs {
		if strings.Contains(name, o) {
			return true
		}
	}
	return false
}
