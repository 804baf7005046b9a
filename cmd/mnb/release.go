package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "release",
		Aliases: []string{"releases", "r"},
		Short:   "Manage the release plans of a version",
	}

	addCmd := &cobra.Command{
		Use:   "add <platform>",
		Short: "Plan a release of the selected version",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			versionRef, _ := cmd.Flags().GetString("version")
			if err := s.selectParent(versionRef, s.versionPath); err != nil {
				return err
			}
			path := s.notes.Selected()
			if path.VersionID == "" {
				return fmt.Errorf("no version selected: %w", util.ErrNoSelection)
			}

			draft := model.ReleasePlan{Platform: args[0]}
			applyReleaseFlags(cmd, &draft)
			if err := draft.Validate(); err != nil {
				util.WarnLog("Release plan not created: %v", err)
				return nil
			}
			id, err := s.notes.CreateRelease(draft)
			if err != nil {
				return fmt.Errorf("failed to save release plan: %w", err)
			}
			if id == "" {
				util.WarnLog("Release plan not created")
				return nil
			}
			r, _ := tree.FindRelease(s.projects(), path.Item(id))
			s.logEvent(s.events.LogMutation(report.EventCreate, "release", id, r.Platform))
			s.printf("Planned release %s on %s\n", shortID(id), r.Platform)
			return nil
		}),
	}
	addCmd.Flags().String("version", "", "version to release (default: selected version)")
	releaseFlags(addCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the release plans of the selected version",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			ref, _ := cmd.Flags().GetString("version")
			path, err := s.targetVersion([]string{ref})
			if err != nil {
				return err
			}
			v, _ := tree.FindVersion(s.projects(), path)
			if len(v.Releases) == 0 {
				util.InfoLog("Version %s has no release plans yet", v.Label)
				return nil
			}

			w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLATFORM\tSTATUS\tDATE\tURL")
			for _, r := range v.Releases {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(r.ID), r.Platform, r.Status, r.Date, r.URL)
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().String("version", "", "version to list (default: selected version)")

	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change release plan fields",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.releasePath(args[0])
			if err != nil {
				return err
			}
			check := model.ReleasePlan{Platform: "-"}
			applyReleaseFlags(cmd, &check)
			if err := check.Validate(); err != nil {
				return err
			}

			err = s.notes.UpdateRelease(path, func(r model.ReleasePlan) model.ReleasePlan {
				applyReleaseFlags(cmd, &r)
				return r
			})
			if err != nil {
				return fmt.Errorf("failed to save release plan: %w", err)
			}
			r, _ := tree.FindRelease(s.projects(), path)
			s.logEvent(s.events.LogMutation(report.EventUpdate, "release", r.ID, r.Platform))
			s.printf("Updated release %s on %s (%s)\n", shortID(r.ID), r.Platform, r.Status)
			return nil
		}),
	}
	setCmd.Flags().String("platform", "", "release platform")
	releaseFlags(setCmd)

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a release plan",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.releasePath(args[0])
			if err != nil {
				return err
			}
			r, _ := tree.FindRelease(s.projects(), path)
			if err := s.notes.DeleteRelease(path); err != nil {
				return fmt.Errorf("failed to save deletion: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventDelete, "release", r.ID, r.Platform))
			s.printf("Deleted release %s on %s\n", shortID(r.ID), r.Platform)
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd, setCmd, rmCmd)
	return cmd
}

func releaseFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "release link")
	cmd.Flags().String("date", "", "release date (YYYY-MM-DD)")
	cmd.Flags().String("notes", "", "notes on the release")
	cmd.Flags().String("status", "", "draft, scheduled, released or live")
}

func applyReleaseFlags(cmd *cobra.Command, r *model.ReleasePlan) {
	f := cmd.Flags()
	if f.Changed("platform") {
		platform, _ := f.GetString("platform")
		if model.CleanText(platform) != "" {
			r.Platform = model.CleanText(platform)
		}
	}
	if f.Changed("url") {
		url, _ := f.GetString("url")
		r.URL = model.CleanText(url)
	}
	if f.Changed("date") {
		date, _ := f.GetString("date")
		r.Date = model.CleanText(date)
	}
	if f.Changed("notes") {
		r.Notes, _ = f.GetString("notes")
	}
	if f.Changed("status") {
		status, _ := f.GetString("status")
		r.Status = model.ReleaseStatus(status)
	}
}
