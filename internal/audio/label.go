package audio

import (
	"regexp"
	"strings"

	"github.com/franz/music-notebook/internal/model"
)

var (
	// "[www.site.com]", "[by someone]", "[http...]"
	webTag = regexp.MustCompile(`(?i)\s*\[(?:www\.|by\s|http)[^\]]*\]`)
	// Download duplicates: "Title (1)", "Title (2)"
	copyCounter = regexp.MustCompile(`\s*\(\d{1,2}\)$`)
	spaces      = regexp.MustCompile(`\s+`)
)

// CleanLabel tidies a title read from tags or a file name for use as a
// take label
func CleanLabel(title string) string {
	s := webTag.ReplaceAllString(title, "")
	s = copyCounter.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// modeKeywords are checked in order; the first hit wins
var modeKeywords = []struct {
	mode     model.Mode
	keywords []string
}{
	{model.ModeInstrumental, []string{"instrumental", "karaoke", "backing track"}},
	{model.ModeCover, []string{"cover"}},
	{model.ModeExtend, []string{"extended", "extend"}},
	{model.ModeRemaster, []string{"remaster"}},
}

// ModeHint guesses the generation mode a title was made with. Titles that
// name no mode return "".
func ModeHint(title string) model.Mode {
	lower := strings.ToLower(title)
	for _, mk := range modeKeywords {
		for _, kw := range mk.keywords {
			if strings.Contains(lower, kw) {
				return mk.mode
			}
		}
	}
	return ""
}
