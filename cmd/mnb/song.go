package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/prompt"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newSongCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "song",
		Aliases: []string{"songs", "s"},
		Short:   "Manage the songs of a project",
	}

	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a song in the selected project and select it",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			projectRef, _ := cmd.Flags().GetString("project")
			if err := s.selectParent(projectRef, s.projectPath); err != nil {
				return err
			}
			if s.notes.Selected().ProjectID == "" {
				return fmt.Errorf("no project selected: %w", util.ErrNoSelection)
			}

			draft := model.Song{Title: args[0]}
			applySongFlags(cmd, &draft)
			id, err := s.notes.CreateSong(draft)
			if err != nil {
				return fmt.Errorf("failed to save song: %w", err)
			}
			if id == "" {
				util.WarnLog("Song not created: %v", draft.Validate())
				return nil
			}
			s.logEvent(s.events.LogMutation(report.EventCreate, "song", id, model.CleanText(draft.Title)))
			s.printf("Created song %s %s\n", shortID(id), model.CleanText(draft.Title))
			return nil
		}),
	}
	addCmd.Flags().String("project", "", "project to add to (default: selected project)")
	songFlags(addCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the songs of the selected project",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			projectID := s.notes.Selected().ProjectID
			if ref, _ := cmd.Flags().GetString("project"); ref != "" {
				p, err := s.projectPath(ref)
				if err != nil {
					return err
				}
				projectID = p.ProjectID
			}
			p, ok := tree.FindProject(s.projects(), projectID)
			if !ok {
				return fmt.Errorf("no project selected: %w", util.ErrNoSelection)
			}
			if len(p.Songs) == 0 {
				util.InfoLog("Project %s has no songs yet", p.Name)
				return nil
			}

			selected := s.notes.Selected().SongID
			w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, " \tID\tTITLE\tSTATUS\tBPM\tKEY\tVERSIONS")
			for _, song := range p.Songs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					selectedMark(song.ID == selected), shortID(song.ID), song.Title,
					song.Status, song.BPM, song.Key, len(song.Versions))
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().String("project", "", "project to list (default: selected project)")

	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change song fields",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.songPath(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				if title, _ := cmd.Flags().GetString("title"); model.CleanText(title) == "" {
					return fmt.Errorf("song title is empty: %w", util.ErrInvalidInput)
				}
			}
			if status, _ := cmd.Flags().GetString("status"); status != "" && !model.Status(status).ValidForSong() {
				return fmt.Errorf("song status %q: %w", status, util.ErrInvalidInput)
			}

			err = s.notes.UpdateSong(path, func(song model.Song) model.Song {
				if cmd.Flags().Changed("title") {
					title, _ := cmd.Flags().GetString("title")
					song.Title = model.CleanText(title)
				}
				applySongFlags(cmd, &song)
				return song
			})
			if err != nil {
				return fmt.Errorf("failed to save song: %w", err)
			}
			song, _ := tree.FindSong(s.projects(), path)
			s.logEvent(s.events.LogMutation(report.EventUpdate, "song", song.ID, song.Title))
			s.printf("Updated song %s %s\n", shortID(song.ID), song.Title)
			return nil
		}),
	}
	setCmd.Flags().String("title", "", "song title")
	songFlags(setCmd)

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a song with its versions",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.songPath(args[0])
			if err != nil {
				return err
			}
			song, _ := tree.FindSong(s.projects(), path)
			if err := s.notes.DeleteSong(path); err != nil {
				return fmt.Errorf("failed to save deletion: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventDelete, "song", song.ID, song.Title))
			s.printf("Deleted song %s %s\n", shortID(song.ID), song.Title)
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd, setCmd, rmCmd, newSelectCmd("song", func(s *session, ref string) (string, error) {
		p, err := s.songPath(ref)
		return p.SongID, err
	}))
	return cmd
}

func songFlags(cmd *cobra.Command) {
	cmd.Flags().String("bpm", "", "tempo in beats per minute")
	cmd.Flags().String("key", "", "musical key")
	cmd.Flags().String("structure", "", "song structure notes")
	cmd.Flags().String("status", "", "draft, candidate, approved, remastered, released or liveset")
	cmd.Flags().StringSlice("ref", nil, "reference track (repeatable)")
}

// applySongFlags copies the changed song flags onto song
func applySongFlags(cmd *cobra.Command, song *model.Song) {
	flags := cmd.Flags()
	if flags.Changed("bpm") {
		v, _ := flags.GetString("bpm")
		song.BPM = model.CleanText(v)
	}
	if flags.Changed("key") {
		v, _ := flags.GetString("key")
		song.Key = model.CleanText(v)
	}
	if flags.Changed("structure") {
		song.Structure, _ = flags.GetString("structure")
	}
	if flags.Changed("status") {
		v, _ := flags.GetString("status")
		song.Status = model.Status(v)
	}
	if flags.Changed("ref") {
		refs, _ := flags.GetStringSlice("ref")
		song.References = prompt.CleanList(refs)
	}
}
