package prompt

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLyricOutlineCanonicalOrder(t *testing.T) {
	got := LyricOutline([]string{"Outro", "Chorus", "Intro", "Verse"})
	assert.Equal(t, "[Intro]\n\n[Verse]\n\n[Chorus]\n\n[Outro]", got)
}

func TestLyricOutlineIgnoresUnknownAndRepeats(t *testing.T) {
	got := LyricOutline([]string{"Bridge", "Solo", "Bridge", " Drop "})
	assert.Equal(t, "[Drop]\n\n[Bridge]", got)
}

func TestLyricOutlineEmpty(t *testing.T) {
	assert.Equal(t, "", LyricOutline(nil))
}

// Every subset, in any toggle order, renders in canonical order.
func TestLyricOutlineOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := len(CanonicalSections)

	for mask := 0; mask < 1<<n; mask++ {
		var subset []string
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, CanonicalSections[i])
			}
		}
		want := LyricOutline(subset)

		shuffled := slices.Clone(subset)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, LyricOutline(shuffled), "mask %b", mask)

		ordered := OrderSections(shuffled)
		if len(subset) == 0 {
			assert.Empty(t, ordered)
		} else {
			assert.Equal(t, subset, ordered, "mask %b", mask)
		}
	}
}

func TestLyricSheet(t *testing.T) {
	got := LyricSheet([]string{"Punchy Kick", "Wide Pads", "Punchy Kick"}, []string{"Chorus", "Intro"})
	assert.Equal(t, "[Punchy Kick]\n[Wide Pads]\n\n[Intro]\n\n[Chorus]", got)

	assert.Equal(t, "[Intro]", LyricSheet(nil, []string{"Intro"}))
	assert.Equal(t, "[Lo-Fi]", LyricSheet([]string{"Lo-Fi"}, nil))
	assert.Equal(t, "", LyricSheet(nil, nil))
}

func TestIsSection(t *testing.T) {
	assert.True(t, IsSection("Pre-Chorus"))
	assert.False(t, IsSection("pre-chorus"))
}
