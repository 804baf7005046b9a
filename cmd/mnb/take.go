package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/franz/music-notebook/internal/audio"
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newTakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "take",
		Aliases: []string{"takes", "t"},
		Short:   "Manage the generated takes of a version",
	}

	addCmd := &cobra.Command{
		Use:   "add [label]",
		Short: "Add a take to the selected version",
		Long: `Add a take to the selected version. With --from-file the label and notes
are read from the audio file's tags (or its name) and its duration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			versionRef, _ := cmd.Flags().GetString("version")
			if err := s.selectParent(versionRef, s.versionPath); err != nil {
				return err
			}
			path := s.notes.Selected()
			if path.VersionID == "" {
				return fmt.Errorf("no version selected: %w", util.ErrNoSelection)
			}

			var draft model.Take
			if file, _ := cmd.Flags().GetString("from-file"); file != "" {
				info, err := audio.Inspect(file)
				if err != nil {
					return err
				}
				draft = audio.DraftTake(info)
				util.DebugLog("Read %s: title=%q artist=%q duration=%s", file, info.Title, info.Artist, info.Duration)
			}
			if len(args) > 0 {
				draft.Label = args[0]
			}
			applyTakeFlags(cmd, &draft)
			draft.Selected, _ = cmd.Flags().GetBool("keep")

			id, err := s.notes.CreateTake(draft)
			if err != nil {
				return fmt.Errorf("failed to save take: %w", err)
			}
			if id == "" {
				util.WarnLog("Take not created: %v", draft.Validate())
				return nil
			}
			t, _ := tree.FindTake(s.projects(), path.Item(id))
			s.logEvent(s.events.LogMutation(report.EventCreate, "take", id, t.Label))
			s.printf("Added take %s %s\n", shortID(id), t.Label)
			return nil
		}),
	}
	addCmd.Flags().String("version", "", "version to add to (default: selected version)")
	addCmd.Flags().String("from-file", "", "audio file to read the label and notes from")
	addCmd.Flags().Bool("keep", false, "mark the take as a keeper")
	takeFlags(addCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the takes of the selected version",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			ref, _ := cmd.Flags().GetString("version")
			path, err := s.targetVersion([]string{ref})
			if err != nil {
				return err
			}
			v, _ := tree.FindVersion(s.projects(), path)
			if len(v.Takes) == 0 {
				util.InfoLog("Version %s has no takes yet", v.Label)
				return nil
			}

			w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEEP\tID\tLABEL\tURL\tNOTES")
			for _, t := range v.Takes {
				keep := ""
				if t.Selected {
					keep = "★"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", keep, shortID(t.ID), t.Label, t.ShareURL, util.Truncate(t.Notes, max(20, util.GetTerminalWidth()-60)))
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().String("version", "", "version to list (default: selected version)")

	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change take fields",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.takePath(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("label") {
				if label, _ := cmd.Flags().GetString("label"); model.CleanText(label) == "" {
					return fmt.Errorf("take label is empty: %w", util.ErrInvalidInput)
				}
			}
			err = s.notes.UpdateTake(path, func(t model.Take) model.Take {
				if cmd.Flags().Changed("label") {
					label, _ := cmd.Flags().GetString("label")
					t.Label = model.CleanText(label)
				}
				applyTakeFlags(cmd, &t)
				return t
			})
			if err != nil {
				return fmt.Errorf("failed to save take: %w", err)
			}
			t, _ := tree.FindTake(s.projects(), path)
			s.logEvent(s.events.LogMutation(report.EventUpdate, "take", t.ID, t.Label))
			s.printf("Updated take %s %s\n", shortID(t.ID), t.Label)
			return nil
		}),
	}
	setCmd.Flags().String("label", "", "take label")
	takeFlags(setCmd)

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a take",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.takePath(args[0])
			if err != nil {
				return err
			}
			t, _ := tree.FindTake(s.projects(), path)
			if err := s.notes.DeleteTake(path); err != nil {
				return fmt.Errorf("failed to save deletion: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventDelete, "take", t.ID, t.Label))
			s.printf("Deleted take %s %s\n", shortID(t.ID), t.Label)
			return nil
		}),
	}

	keepCmd := &cobra.Command{
		Use:   "keep <id>",
		Short: "Toggle the keeper mark of a take",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.takePath(args[0])
			if err != nil {
				return err
			}
			if only, _ := cmd.Flags().GetBool("only"); only {
				err = s.notes.KeepOnly(path)
			} else {
				err = s.notes.ToggleKeeper(path)
			}
			if err != nil {
				return fmt.Errorf("failed to save keeper: %w", err)
			}
			t, _ := tree.FindTake(s.projects(), path)
			s.logEvent(s.events.LogToggle("take", t.ID, "selected", t.Selected))
			if t.Selected {
				s.printf("Keeping take %s %s\n", shortID(t.ID), t.Label)
			} else {
				s.printf("Take %s %s is no longer a keeper\n", shortID(t.ID), t.Label)
			}
			return nil
		}),
	}
	keepCmd.Flags().Bool("only", false, "make this the only keeper of its version")

	cmd.AddCommand(addCmd, listCmd, setCmd, rmCmd, keepCmd)
	return cmd
}

func takeFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "share link of the take")
	cmd.Flags().String("notes", "", "notes on the take")
}

func applyTakeFlags(cmd *cobra.Command, t *model.Take) {
	if cmd.Flags().Changed("url") {
		url, _ := cmd.Flags().GetString("url")
		t.ShareURL = model.CleanText(url)
	}
	if cmd.Flags().Changed("notes") {
		t.Notes, _ = cmd.Flags().GetString("notes")
	}
}
