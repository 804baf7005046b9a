package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/franz/music-notebook/internal/util"
	"golang.org/x/text/unicode/norm"
)

// Project is an album: a named collection of songs
type Project struct {
	ID                string    `json:"id" yaml:"id"`
	Name              string    `json:"name" yaml:"name"`
	Notes             string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
	TargetReleaseDate string    `json:"targetReleaseDate,omitempty" yaml:"targetReleaseDate,omitempty"`
	Songs             []Song    `json:"songs" yaml:"songs"`
}

// Song belongs to a project and owns its generated versions
type Song struct {
	ID         string    `json:"id" yaml:"id"`
	ProjectID  string    `json:"projectId" yaml:"projectId"`
	Title      string    `json:"title" yaml:"title"`
	BPM        string    `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	Key        string    `json:"key,omitempty" yaml:"key,omitempty"`
	Structure  string    `json:"structure,omitempty" yaml:"structure,omitempty"`
	Status     Status    `json:"status" yaml:"status"`
	References []string  `json:"references,omitempty" yaml:"references,omitempty"`
	Versions   []Version `json:"versions" yaml:"versions"`
}

// Version is one generation attempt of a song, with the prompt that produced it
type Version struct {
	ID             string           `json:"id" yaml:"id"`
	SongID         string           `json:"songId" yaml:"songId"`
	Label          string           `json:"label" yaml:"label"`
	Seed           string           `json:"seed,omitempty" yaml:"seed,omitempty"`
	BPM            string           `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	Key            string           `json:"key,omitempty" yaml:"key,omitempty"`
	Duration       string           `json:"duration,omitempty" yaml:"duration,omitempty"`
	StructureNotes string           `json:"structureNotes,omitempty" yaml:"structureNotes,omitempty"`
	StylePrompt    string           `json:"stylePrompt" yaml:"stylePrompt"`
	LyricOutline   string           `json:"lyricOutline" yaml:"lyricOutline"`
	MetaTags       []string         `json:"metaTags,omitempty" yaml:"metaTags,omitempty"`
	LUFS           *float64         `json:"lufs,omitempty" yaml:"lufs,omitempty"`
	TruePeak       *float64         `json:"truePeak,omitempty" yaml:"truePeak,omitempty"`
	FinalURL       string           `json:"finalUrl,omitempty" yaml:"finalUrl,omitempty"`
	QA             map[string]bool  `json:"qa" yaml:"qa"`
	Status         Status           `json:"status" yaml:"status"`
	CreatedAt      time.Time        `json:"createdAt" yaml:"createdAt"`
	Builder        *BuilderFields   `json:"builder,omitempty" yaml:"builder,omitempty"`
	Takes          []Take           `json:"takes" yaml:"takes"`
	Releases       []ReleasePlan    `json:"releases" yaml:"releases"`
	PromptHistory  []PromptSnapshot `json:"promptHistory" yaml:"promptHistory"`
	Timeline       []TimelineEntry  `json:"timeline" yaml:"timeline"`
}

// Take is one generated audio candidate of a version
type Take struct {
	ID        string `json:"id" yaml:"id"`
	VersionID string `json:"versionId" yaml:"versionId"`
	Label     string `json:"label" yaml:"label"`
	ShareURL  string `json:"shareUrl,omitempty" yaml:"shareUrl,omitempty"`
	Notes     string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Selected  bool   `json:"selected" yaml:"selected"`
}

// ReleasePlan tracks where and when a version goes out
type ReleasePlan struct {
	ID       string        `json:"id" yaml:"id"`
	Platform string        `json:"platform" yaml:"platform"`
	URL      string        `json:"url,omitempty" yaml:"url,omitempty"`
	Date     string        `json:"date,omitempty" yaml:"date,omitempty"`
	Notes    string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Status   ReleaseStatus `json:"status" yaml:"status"`
}

// PromptSnapshot is one entry of a version's prompt history
type PromptSnapshot struct {
	At     time.Time `json:"at" yaml:"at"`
	Prompt string    `json:"prompt" yaml:"prompt"`
}

// TimelineEntry records a version moving through a workflow stage
type TimelineEntry struct {
	At    time.Time `json:"at" yaml:"at"`
	Stage Stage     `json:"stage" yaml:"stage"`
	Note  string    `json:"note,omitempty" yaml:"note,omitempty"`
}

// CleanText trims surrounding whitespace and applies NFC normalization
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Validate checks the fields required to create a project
func (p Project) Validate() error {
	if CleanText(p.Name) == "" {
		return fmt.Errorf("project name is empty: %w", util.ErrInvalidInput)
	}
	return nil
}

// Validate checks the fields required to create a song
func (s Song) Validate() error {
	if CleanText(s.Title) == "" {
		return fmt.Errorf("song title is empty: %w", util.ErrInvalidInput)
	}
	if s.Status != "" && !s.Status.ValidForSong() {
		return fmt.Errorf("song status %q: %w", s.Status, util.ErrInvalidInput)
	}
	return nil
}

// Validate checks the fields required to create a version
func (v Version) Validate() error {
	if v.Status != "" && !v.Status.Valid() {
		return fmt.Errorf("version status %q: %w", v.Status, util.ErrInvalidInput)
	}
	return nil
}

// Validate checks the fields required to create a take
func (t Take) Validate() error {
	if CleanText(t.Label) == "" {
		return fmt.Errorf("take label is empty: %w", util.ErrInvalidInput)
	}
	return nil
}

// Validate checks the fields required to create a release plan
func (r ReleasePlan) Validate() error {
	if CleanText(r.Platform) == "" {
		return fmt.Errorf("release platform is empty: %w", util.ErrInvalidInput)
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("release status %q: %w", r.Status, util.ErrInvalidInput)
	}
	return nil
}

// SelectedTakes returns the takes marked as keepers
func (v Version) SelectedTakes() []Take {
	var out []Take
	for _, t := range v.Takes {
		if t.Selected {
			out = append(out, t)
		}
	}
	return out
}
