package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/prompt"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"versions", "v"},
		Short:   "Manage the generated versions of a song",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a version of the selected song from the current builder",
		Long: `Create a version of the selected song. The version snapshots the prompt
builder: its style prompt, lyric outline, meta tags, tempo and key. Flags
override the snapshot. Without --label the next vMAJOR.MINOR.0 label is used.`,
		Args: cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			songRef, _ := cmd.Flags().GetString("song")
			if err := s.selectParent(songRef, s.songPath); err != nil {
				return err
			}
			if s.notes.Selected().SongID == "" {
				return fmt.Errorf("no song selected: %w", util.ErrNoSelection)
			}

			var draft model.Version
			applyVersionFlags(cmd, &draft)
			if err := draft.Validate(); err != nil {
				return err
			}
			id, err := s.notes.CreateVersion(draft)
			if err != nil {
				return fmt.Errorf("failed to save version: %w", err)
			}
			if id == "" {
				util.WarnLog("Version not created")
				return nil
			}
			v, _ := tree.FindVersion(s.projects(), s.notes.Selected())
			s.logEvent(s.events.LogMutation(report.EventCreate, "version", id, v.Label))
			s.printf("Created version %s %s\n", shortID(id), v.Label)
			return nil
		}),
	}
	addCmd.Flags().String("song", "", "song to add to (default: selected song)")
	versionFlags(addCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the versions of the selected song",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path := s.notes.Selected()
			if ref, _ := cmd.Flags().GetString("song"); ref != "" {
				var err error
				if path, err = s.songPath(ref); err != nil {
					return err
				}
			}
			song, ok := tree.FindSong(s.projects(), path)
			if !ok {
				return fmt.Errorf("no song selected: %w", util.ErrNoSelection)
			}
			if len(song.Versions) == 0 {
				util.InfoLog("Song %s has no versions yet", song.Title)
				return nil
			}

			selected := s.notes.Selected().VersionID
			w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, " \tID\tLABEL\tSTATUS\tTAKES\tKEEPERS\tQA\tCREATED")
			for _, v := range song.Versions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					selectedMark(v.ID == selected), shortID(v.ID), v.Label, v.Status,
					len(v.Takes), len(v.SelectedTakes()), qaSummary(v), humanize.Time(v.CreatedAt))
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().String("song", "", "song to list (default: selected song)")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a version with its prompt, checklist, takes and releases",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.targetVersion(args)
			if err != nil {
				return err
			}
			song, _ := tree.FindSong(s.projects(), path)
			v, _ := tree.FindVersion(s.projects(), path)
			s.printf("%s", renderVersion(song, v))
			return nil
		}),
	}

	setCmd := &cobra.Command{
		Use:   "set [id]",
		Short: "Change version fields (default: selected version)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.targetVersion(args)
			if err != nil {
				return err
			}
			var check model.Version
			applyVersionFlags(cmd, &check)
			if err := check.Validate(); err != nil {
				return err
			}

			err = s.notes.UpdateVersion(path, func(v model.Version) model.Version {
				applyVersionFlags(cmd, &v)
				return v
			})
			if err != nil {
				return fmt.Errorf("failed to save version: %w", err)
			}
			v, _ := tree.FindVersion(s.projects(), path)
			s.logEvent(s.events.LogMutation(report.EventUpdate, "version", v.ID, v.Label))
			s.printf("Updated version %s %s\n", shortID(v.ID), v.Label)
			return nil
		}),
	}
	versionFlags(setCmd)

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a version with its takes and release plans",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.versionPath(args[0])
			if err != nil {
				return err
			}
			v, _ := tree.FindVersion(s.projects(), path)
			if err := s.notes.DeleteVersion(path); err != nil {
				return fmt.Errorf("failed to save deletion: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventDelete, "version", v.ID, v.Label))
			s.printf("Deleted version %s %s\n", shortID(v.ID), v.Label)
			return nil
		}),
	}

	qaCmd := &cobra.Command{
		Use:   "qa [item]",
		Short: "Show the QA checklist or toggle one item",
		Long: "Without an item the checklist of the version is printed. Items: " +
			strings.Join(qaItemIDs(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			ref, _ := cmd.Flags().GetString("version")
			path, err := s.targetVersion([]string{ref})
			if err != nil {
				return err
			}
			if len(args) == 0 {
				v, _ := tree.FindVersion(s.projects(), path)
				s.printf("%s", renderChecklist(v))
				return nil
			}

			item := args[0]
			if !model.IsQAItem(item) {
				return fmt.Errorf("unknown QA item %q (valid: %s): %w",
					item, strings.Join(qaItemIDs(), ", "), util.ErrInvalidInput)
			}
			if err := s.notes.ToggleQA(path, item); err != nil {
				return fmt.Errorf("failed to save checklist: %w", err)
			}
			v, _ := tree.FindVersion(s.projects(), path)
			s.logEvent(s.events.LogToggle("version", v.ID, item, v.QA[item]))
			s.printf("%s %s\n", checkMark(v.QA[item]), item)
			return nil
		}),
	}
	qaCmd.Flags().String("version", "", "version to check (default: selected version)")

	historyCmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show the prompt history and timeline of a version",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.targetVersion(args)
			if err != nil {
				return err
			}
			v, _ := tree.FindVersion(s.projects(), path)

			s.printf("Prompt history (%d):\n", len(v.PromptHistory))
			for i, snap := range v.PromptHistory {
				s.printf("\n#%d  %s (%s)\n%s\n", i+1, snap.At.Format("2006-01-02 15:04"), humanize.Time(snap.At), snap.Prompt)
			}
			s.printf("\nTimeline (%d):\n", len(v.Timeline))
			for _, e := range v.Timeline {
				s.printf("  %s  %-10s %s\n", e.At.Format("2006-01-02 15:04"), e.Stage, e.Note)
			}
			return nil
		}),
	}

	stageCmd := &cobra.Command{
		Use:   "stage <stage> [note]",
		Short: "Record a workflow stage on a version (prompt, generation, mastering, release)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			ref, _ := cmd.Flags().GetString("version")
			path, err := s.targetVersion([]string{ref})
			if err != nil {
				return err
			}
			stage := model.Stage(strings.ToLower(args[0]))
			if !stage.Valid() {
				return fmt.Errorf("unknown stage %q: %w", args[0], util.ErrInvalidInput)
			}
			note := ""
			if len(args) > 1 {
				note = args[1]
			}
			if err := s.notes.AddTimelineEntry(path, stage, note); err != nil {
				return fmt.Errorf("failed to save timeline: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventUpdate, "version", path.VersionID, "stage "+string(stage)))
			s.printf("Recorded stage %s on version %s\n", stage, shortID(path.VersionID))
			return nil
		}),
	}
	stageCmd.Flags().String("version", "", "version to update (default: selected version)")

	cmd.AddCommand(addCmd, listCmd, showCmd, setCmd, rmCmd, qaCmd, historyCmd, stageCmd,
		newSelectCmd("version", func(s *session, ref string) (string, error) {
			p, err := s.versionPath(ref)
			return p.VersionID, err
		}))
	return cmd
}

func versionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("label", "", "version label, e.g. v1.2.0")
	f.String("seed", "", "generator seed")
	f.String("bpm", "", "tempo in beats per minute")
	f.String("key", "", "musical key")
	f.String("duration", "", "track duration, e.g. 3:45")
	f.String("notes", "", "structure notes")
	f.String("status", "", "workflow status")
	f.String("style", "", "style prompt (default: derived from the builder)")
	f.String("outline", "", "lyric outline (default: derived from the builder)")
	f.StringSlice("tag", nil, "meta tag (repeatable)")
	f.Float64("lufs", 0, "integrated loudness in LUFS")
	f.Float64("true-peak", 0, "true peak in dBTP")
	f.String("final-url", "", "link to the final master")
}

// applyVersionFlags copies the changed version flags onto v
func applyVersionFlags(cmd *cobra.Command, v *model.Version) {
	f := cmd.Flags()
	str := func(name string, dst *string, clean bool) {
		if !f.Changed(name) {
			return
		}
		val, _ := f.GetString(name)
		if clean {
			val = model.CleanText(val)
		}
		*dst = val
	}
	str("label", &v.Label, true)
	str("seed", &v.Seed, true)
	str("bpm", &v.BPM, true)
	str("key", &v.Key, true)
	str("duration", &v.Duration, true)
	str("notes", &v.StructureNotes, false)
	str("style", &v.StylePrompt, false)
	str("outline", &v.LyricOutline, false)
	str("final-url", &v.FinalURL, true)
	if f.Changed("status") {
		status, _ := f.GetString("status")
		v.Status = model.Status(status)
	}
	if f.Changed("tag") {
		tags, _ := f.GetStringSlice("tag")
		v.MetaTags = prompt.CleanList(tags)
	}
	if f.Changed("lufs") {
		lufs, _ := f.GetFloat64("lufs")
		v.LUFS = &lufs
	}
	if f.Changed("true-peak") {
		peak, _ := f.GetFloat64("true-peak")
		v.TruePeak = &peak
	}
}

func qaItemIDs() []string {
	ids := make([]string, len(model.QAChecklist))
	for i, item := range model.QAChecklist {
		ids[i] = item.ID
	}
	return ids
}

func qaSummary(v model.Version) string {
	done := 0
	for _, item := range model.QAChecklist {
		if v.QA[item.ID] {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(model.QAChecklist))
}

func checkMark(ok bool) string {
	if ok {
		return "[x]"
	}
	return "[ ]"
}

func renderChecklist(v model.Version) string {
	var b strings.Builder
	for _, item := range model.QAChecklist {
		fmt.Fprintf(&b, "%s %-16s %s\n", checkMark(v.QA[item.ID]), item.ID, item.Label)
	}
	return b.String()
}

// renderVersion is the detail view of "version show"
func renderVersion(song model.Song, v model.Version) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", song.Title, v.Label, v.ID)
	fmt.Fprintf(&b, "Status:   %s\n", v.Status)
	fmt.Fprintf(&b, "Created:  %s (%s)\n", v.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(v.CreatedAt))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-9s %s\n", name+":", value)
		}
	}
	field("BPM", v.BPM)
	field("Key", v.Key)
	field("Seed", v.Seed)
	field("Duration", v.Duration)
	field("Final", v.FinalURL)
	if v.LUFS != nil {
		field("LUFS", fmt.Sprintf("%.1f", *v.LUFS))
	}
	if v.TruePeak != nil {
		field("Peak", fmt.Sprintf("%.1f dBTP", *v.TruePeak))
	}
	field("Tags", strings.Join(v.MetaTags, ", "))
	field("Notes", v.StructureNotes)

	if v.StylePrompt != "" {
		fmt.Fprintf(&b, "\nStyle prompt:\n%s\n", v.StylePrompt)
	}
	if v.LyricOutline != "" {
		fmt.Fprintf(&b, "\nLyric outline:\n%s\n", v.LyricOutline)
	}

	fmt.Fprintf(&b, "\nQA %s:\n%s", qaSummary(v), renderChecklist(v))

	if len(v.Takes) > 0 {
		fmt.Fprintf(&b, "\nTakes:\n")
		for _, t := range v.Takes {
			keeper := " "
			if t.Selected {
				keeper = "★"
			}
			fmt.Fprintf(&b, "  %s %s  %s  %s\n", keeper, shortID(t.ID), t.Label, t.ShareURL)
		}
	}
	if len(v.Releases) > 0 {
		fmt.Fprintf(&b, "\nReleases:\n")
		for _, r := range v.Releases {
			fmt.Fprintf(&b, "  %s  %-10s %-9s %s %s\n", shortID(r.ID), r.Platform, r.Status, r.Date, r.URL)
		}
	}
	return b.String()
}
