package model

import "slices"

// Mode selects the generation mode tag of the style prompt
type Mode string

const (
	ModeFullSong     Mode = "full-song"
	ModeInstrumental Mode = "instrumental"
	ModeCover        Mode = "cover"
	ModeExtend       Mode = "extend"
	ModeRemaster     Mode = "remaster"
)

// BuilderFields is the prompt-builder form state. New versions snapshot it.
type BuilderFields struct {
	Genre           string   `json:"genre,omitempty" yaml:"genre,omitempty"`
	Subgenre        string   `json:"subgenre,omitempty" yaml:"subgenre,omitempty"`
	Mood            string   `json:"mood,omitempty" yaml:"mood,omitempty"`
	Energy          string   `json:"energy,omitempty" yaml:"energy,omitempty"`
	Tempo           string   `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Key             string   `json:"key,omitempty" yaml:"key,omitempty"`
	TimeSignature   string   `json:"timeSignature,omitempty" yaml:"timeSignature,omitempty"`
	Vocal           string   `json:"vocal,omitempty" yaml:"vocal,omitempty"`
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"`
	LeadVocal       string   `json:"leadVocal,omitempty" yaml:"leadVocal,omitempty"`
	BackingVocal    string   `json:"backingVocal,omitempty" yaml:"backingVocal,omitempty"`
	Structure       string   `json:"structure,omitempty" yaml:"structure,omitempty"`
	Instrumentation string   `json:"instrumentation,omitempty" yaml:"instrumentation,omitempty"`
	Hooks           string   `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	MixNotes        []string `json:"mixNotes,omitempty" yaml:"mixNotes,omitempty"`
	Mode            Mode     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Exclude         string   `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Directives      string   `json:"directives,omitempty" yaml:"directives,omitempty"`
	Sections        []string `json:"sections,omitempty" yaml:"sections,omitempty"`
	MetaTags        []string `json:"metaTags,omitempty" yaml:"metaTags,omitempty"`
}

// DefaultBuilder is the builder state used on first start and whenever the
// stored builder cannot be decoded.
func DefaultBuilder() BuilderFields {
	return BuilderFields{
		Tempo:         "120",
		TimeSignature: "4/4",
		Language:      "English",
		Mode:          ModeFullSong,
		Sections:      []string{"Intro", "Verse", "Chorus", "Verse", "Chorus", "Outro"},
	}
}

// Clone returns a deep copy so snapshots never alias the live form
func (b BuilderFields) Clone() BuilderFields {
	b.MixNotes = slices.Clone(b.MixNotes)
	b.Sections = slices.Clone(b.Sections)
	b.MetaTags = slices.Clone(b.MetaTags)
	return b
}
