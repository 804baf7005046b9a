package audio

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// "01 - Title", "01. Title", "01_Title"
	trackPrefix = regexp.MustCompile(`^\d{1,3}\s*[-_.]\s*`)
	// "Artist - Title"
	artistTitle = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)
)

// ParseFilename derives artist and title from a file name when tags are
// missing. The artist is empty unless the name reads "Artist - Title".
func ParseFilename(path string) (artist, title string) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = trackPrefix.ReplaceAllString(name, "")
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))

	if m := artistTitle.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", name
}
