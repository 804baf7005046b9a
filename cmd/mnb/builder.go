package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/prompt"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type builderSetter func(b *model.BuilderFields, value string) error

func textField(dst func(*model.BuilderFields) *string) builderSetter {
	return func(b *model.BuilderFields, value string) error {
		*dst(b) = model.CleanText(value)
		return nil
	}
}

func listField(dst func(*model.BuilderFields) *[]string) builderSetter {
	return func(b *model.BuilderFields, value string) error {
		*dst(b) = splitList(value)
		return nil
	}
}

// builderSetters maps normalized field names to their setters. Names are
// lower-cased with dashes and underscores removed.
var builderSetters = map[string]builderSetter{
	"genre":           textField(func(b *model.BuilderFields) *string { return &b.Genre }),
	"subgenre":        textField(func(b *model.BuilderFields) *string { return &b.Subgenre }),
	"mood":            textField(func(b *model.BuilderFields) *string { return &b.Mood }),
	"energy":          textField(func(b *model.BuilderFields) *string { return &b.Energy }),
	"tempo":           textField(func(b *model.BuilderFields) *string { return &b.Tempo }),
	"key":             textField(func(b *model.BuilderFields) *string { return &b.Key }),
	"timesignature":   textField(func(b *model.BuilderFields) *string { return &b.TimeSignature }),
	"vocal":           textField(func(b *model.BuilderFields) *string { return &b.Vocal }),
	"language":        textField(func(b *model.BuilderFields) *string { return &b.Language }),
	"leadvocal":       textField(func(b *model.BuilderFields) *string { return &b.LeadVocal }),
	"backingvocal":    textField(func(b *model.BuilderFields) *string { return &b.BackingVocal }),
	"structure":       textField(func(b *model.BuilderFields) *string { return &b.Structure }),
	"instrumentation": textField(func(b *model.BuilderFields) *string { return &b.Instrumentation }),
	"hooks":           textField(func(b *model.BuilderFields) *string { return &b.Hooks }),
	"exclude":         textField(func(b *model.BuilderFields) *string { return &b.Exclude }),
	"directives":      textField(func(b *model.BuilderFields) *string { return &b.Directives }),
	"mixnotes":        listField(func(b *model.BuilderFields) *[]string { return &b.MixNotes }),
	"metatags":        listField(func(b *model.BuilderFields) *[]string { return &b.MetaTags }),
	"mode": func(b *model.BuilderFields, value string) error {
		m := model.Mode(strings.ToLower(model.CleanText(value)))
		if m != "" && prompt.ModeTag(m) == "" {
			return fmt.Errorf("unknown mode %q: %w", value, util.ErrInvalidInput)
		}
		b.Mode = m
		return nil
	},
	"sections": func(b *model.BuilderFields, value string) error {
		var sections []string
		for _, name := range splitList(value) {
			canonical, ok := canonicalSection(name)
			if !ok {
				return fmt.Errorf("unknown section %q (valid: %s): %w",
					name, strings.Join(prompt.CanonicalSections, ", "), util.ErrInvalidInput)
			}
			sections = append(sections, canonical)
		}
		b.Sections = sections
		return nil
	},
}

func normalizeFieldName(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

func canonicalSection(name string) (string, bool) {
	for _, s := range prompt.CanonicalSections {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// splitList splits a comma-separated value into cleaned, de-duplicated items
func splitList(value string) []string {
	return prompt.CleanList(strings.Split(value, ","))
}

// applyBuilderAssignments applies "field=value" arguments to b. An empty
// value clears the field. All arguments are checked before any is applied.
func applyBuilderAssignments(b model.BuilderFields, args []string) (model.BuilderFields, error) {
	out := b.Clone()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return b, fmt.Errorf("expected field=value, got %q: %w", arg, util.ErrInvalidInput)
		}
		set, ok := builderSetters[normalizeFieldName(name)]
		if !ok {
			return b, fmt.Errorf("unknown builder field %q (valid: %s): %w",
				name, strings.Join(builderFieldNames(), ", "), util.ErrInvalidInput)
		}
		if err := set(&out, value); err != nil {
			return b, err
		}
	}
	return out, nil
}

func builderFieldNames() []string {
	names := lo.Keys(builderSetters)
	sort.Strings(names)
	return names
}

func newBuilderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Show or edit the prompt builder that new versions snapshot",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the builder fields and the style prompt they produce",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			b := s.notes.State().Builder
			out, err := yaml.Marshal(b)
			if err != nil {
				return fmt.Errorf("failed to encode builder: %w", err)
			}
			s.printf("%s\n", out)
			if style := prompt.StylePrompt(b); style != "" {
				s.printf("Style prompt:\n%s\n", style)
			}
			return nil
		}),
	}

	setCmd := &cobra.Command{
		Use:   "set <field=value>...",
		Short: "Set builder fields; list fields take comma-separated values",
		Long: `Set builder fields. List fields (mixNotes, metaTags, sections) take
comma-separated values; an empty value clears a field.

  mnb builder set genre="Synthwave" mood=Nostalgic mixNotes="wide, warm"
  mnb builder set sections=Intro,Verse,Chorus,Outro mode=instrumental`,
		Args: cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			updated, err := applyBuilderAssignments(s.notes.State().Builder, args)
			if err != nil {
				return err
			}
			if err := s.notes.UpdateBuilder(func(model.BuilderFields) model.BuilderFields { return updated }); err != nil {
				return fmt.Errorf("failed to save builder: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventUpdate, "builder", "", strings.Join(args, " ")))
			s.printf("%s\n", prompt.StylePrompt(updated))
			return nil
		}),
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default builder fields",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.notes.ResetBuilder(); err != nil {
				return fmt.Errorf("failed to save builder: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventUpdate, "builder", "", "reset"))
			s.printf("Builder reset to defaults\n")
			return nil
		}),
	}

	cmd.AddCommand(showCmd, setCmd, resetCmd)
	return cmd
}
