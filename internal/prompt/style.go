// Package prompt derives the text handed to the music generator from the
// prompt-builder fields. Every function here is pure and total.
package prompt

import (
	"regexp"
	"strings"

	"github.com/franz/music-notebook/internal/model"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// modeTags maps builder modes to the tag written into the prompt
var modeTags = map[model.Mode]string{
	model.ModeFullSong:     "Full Song",
	model.ModeInstrumental: "Instrumental",
	model.ModeCover:        "Cover",
	model.ModeExtend:       "Extend",
	model.ModeRemaster:     "Remaster",
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	bpmSuffix     = regexp.MustCompile(`(?i)\s*bpm$`)
)

// ModeTag returns the prompt tag for a mode, or "" for unknown modes
func ModeTag(m model.Mode) string {
	return modeTags[m]
}

type segment struct {
	key   string
	value string
}

// StylePrompt renders the builder as "[Key=Value]" lines in a fixed order.
// Segments whose value is empty are left out.
func StylePrompt(b model.BuilderFields) string {
	segments := []segment{
		{"Genre", b.Genre},
		{"Subgenre", b.Subgenre},
		{"Mood", b.Mood},
		{"Energy", b.Energy},
		{"Tempo", tempo(b.Tempo)},
		{"Key", b.Key},
		{"TimeSignature", b.TimeSignature},
		{"Vocal", b.Vocal},
		{"Language", b.Language},
		{"LeadVocal", b.LeadVocal},
		{"BackingVocal", b.BackingVocal},
		{"Structure", b.Structure},
		{"Instrumentation", b.Instrumentation},
		{"Hooks", b.Hooks},
		{"MixNotes", strings.Join(CleanList(b.MixNotes), ", ")},
		{"Mode", ModeTag(b.Mode)},
		{"Exclude", b.Exclude},
		{"Directives", directives(b.Directives)},
	}

	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		v := cleanValue(s.value)
		if v == "" {
			continue
		}
		lines = append(lines, "["+s.key+"="+v+"]")
	}
	return strings.Join(lines, "\n")
}

// CleanList cleans a list of short values: blanks dropped, duplicates removed,
// first occurrence order kept. Returns nil when nothing is left.
func CleanList(values []string) []string {
	cleaned := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		c := cleanValue(v)
		return c, c != ""
	})
	if len(cleaned) == 0 {
		return nil
	}
	return lo.Uniq(cleaned)
}

// cleanValue makes a value safe for a single bracketed segment
func cleanValue(s string) string {
	s = norm.NFC.String(s)
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func tempo(s string) string {
	s = strings.TrimSpace(bpmSuffix.ReplaceAllString(strings.TrimSpace(s), ""))
	if s == "" {
		return ""
	}
	return s + "bpm"
}

// directives turns free text into one line: each non-blank input line
// becomes a clause.
func directives(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if l := cleanValue(line); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, "; ")
}
