package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/util"
)

func TestApplyBuilderAssignments(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, b model.BuilderFields)
	}{
		{
			name: "text fields are cleaned",
			args: []string{"genre=  Synthwave ", "time-signature=3/4", "lead_vocal=Alto"},
			check: func(t *testing.T, b model.BuilderFields) {
				if b.Genre != "Synthwave" || b.TimeSignature != "3/4" || b.LeadVocal != "Alto" {
					t.Errorf("unexpected fields: %+v", b)
				}
			},
		},
		{
			name: "lists split on commas without repeats",
			args: []string{"mixNotes=wide, warm,wide,", "metatags=Male Vocal"},
			check: func(t *testing.T, b model.BuilderFields) {
				if !reflect.DeepEqual(b.MixNotes, []string{"wide", "warm"}) {
					t.Errorf("mix notes = %v", b.MixNotes)
				}
				if !reflect.DeepEqual(b.MetaTags, []string{"Male Vocal"}) {
					t.Errorf("meta tags = %v", b.MetaTags)
				}
			},
		},
		{
			name: "sections take canonical spelling",
			args: []string{"sections=pre-chorus, DROP"},
			check: func(t *testing.T, b model.BuilderFields) {
				if !reflect.DeepEqual(b.Sections, []string{"Pre-Chorus", "Drop"}) {
					t.Errorf("sections = %v", b.Sections)
				}
			},
		},
		{
			name: "empty value clears",
			args: []string{"tempo=", "sections="},
			check: func(t *testing.T, b model.BuilderFields) {
				if b.Tempo != "" || b.Sections != nil {
					t.Errorf("expected cleared fields, got %+v", b)
				}
			},
		},
		{
			name: "mode is case-insensitive",
			args: []string{"mode=Instrumental"},
			check: func(t *testing.T, b model.BuilderFields) {
				if b.Mode != model.ModeInstrumental {
					t.Errorf("mode = %q", b.Mode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := applyBuilderAssignments(model.DefaultBuilder(), tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, b)
		})
	}
}

func TestApplyBuilderAssignmentsRejects(t *testing.T) {
	bad := [][]string{
		{"genre"},
		{"colour=red"},
		{"mode=karaoke"},
		{"sections=Intro,Coda"},
		{"genre=Dub", "nope=1"},
	}
	for _, args := range bad {
		orig := model.DefaultBuilder()
		b, err := applyBuilderAssignments(orig, args)
		if !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("%v: expected ErrInvalidInput, got %v", args, err)
		}
		if !reflect.DeepEqual(b, orig) {
			t.Errorf("%v: builder changed on error: %+v", args, b)
		}
	}
}

func TestApplyBuilderAssignmentsDoesNotAlias(t *testing.T) {
	orig := model.DefaultBuilder()
	if _, err := applyBuilderAssignments(orig, []string{"genre=Dub"}); err != nil {
		t.Fatal(err)
	}
	if orig.Genre != "" {
		t.Errorf("input builder modified: %+v", orig)
	}
}
