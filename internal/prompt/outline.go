package prompt

import (
	"strings"

	"github.com/samber/lo"
)

// CanonicalSections is the fixed song-section order of a lyric outline
var CanonicalSections = []string{
	"Intro",
	"Verse",
	"Pre-Chorus",
	"Chorus",
	"Drop",
	"Bridge",
	"Break",
	"Instrumental Hook",
	"Outro",
}

// IsSection reports whether name is one of the canonical sections
func IsSection(name string) bool {
	return lo.Contains(CanonicalSections, name)
}

// OrderSections returns the selected sections in canonical order. The order
// of the selection is ignored; unknown names and repeats are dropped.
func OrderSections(selected []string) []string {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[strings.TrimSpace(s)] = true
	}
	return lo.Filter(CanonicalSections, func(name string, _ int) bool {
		return chosen[name]
	})
}

// LyricOutline renders the selected sections as "[Name]" headings separated
// by blank lines.
func LyricOutline(selected []string) string {
	sections := OrderSections(selected)
	headings := make([]string, len(sections))
	for i, s := range sections {
		headings[i] = "[" + s + "]"
	}
	return strings.Join(headings, "\n\n")
}

// LyricSheet is the generated-lyrics field: meta tags first, one per line,
// then the outline.
func LyricSheet(metaTags []string, sections []string) string {
	tags := lo.Map(CleanList(metaTags), func(t string, _ int) string {
		return "[" + t + "]"
	})
	outline := LyricOutline(sections)

	switch {
	case len(tags) == 0:
		return outline
	case outline == "":
		return strings.Join(tags, "\n")
	default:
		return strings.Join(tags, "\n") + "\n\n" + outline
	}
}
