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

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects (albums)",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project and select it",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			notes, _ := cmd.Flags().GetString("notes")
			target, _ := cmd.Flags().GetString("target-date")

			id, err := s.notes.CreateProject(model.Project{
				Name:              args[0],
				Notes:             notes,
				TargetReleaseDate: target,
			})
			if err != nil {
				return fmt.Errorf("failed to save project: %w", err)
			}
			if id == "" {
				util.WarnLog("Project not created: the name is empty")
				return nil
			}
			p, _ := tree.FindProject(s.projects(), id)
			s.logEvent(s.events.LogMutation(report.EventCreate, "project", id, p.Name))
			s.printf("Created project %s %s\n", shortID(id), p.Name)
			return nil
		}),
	}
	addCmd.Flags().String("notes", "", "free-form notes")
	addCmd.Flags().String("target-date", "", "target release date (YYYY-MM-DD)")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects with their readiness",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			st := s.notes.State()
			if len(st.Projects) == 0 {
				util.InfoLog("No projects yet. Create one with: mnb project add <name>")
				return nil
			}
			d := report.BuildDashboard(st.Projects, now())

			w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, " \tID\tNAME\tSONGS\tTARGET\tSTATUS")
			for i, p := range st.Projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					selectedMark(p.ID == st.Selection.ProjectID),
					shortID(p.ID), p.Name, len(p.Songs), p.TargetReleaseDate, d.Projects[i].Label())
			}
			return w.Flush()
		}),
	}

	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change project fields",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.projectPath(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				if name, _ := flags.GetString("name"); model.CleanText(name) == "" {
					return fmt.Errorf("project name is empty: %w", util.ErrInvalidInput)
				}
			}

			err = s.notes.UpdateProject(path.ProjectID, func(p model.Project) model.Project {
				if flags.Changed("name") {
					name, _ := flags.GetString("name")
					p.Name = model.CleanText(name)
				}
				if flags.Changed("notes") {
					p.Notes, _ = flags.GetString("notes")
				}
				if flags.Changed("target-date") {
					target, _ := flags.GetString("target-date")
					p.TargetReleaseDate = model.CleanText(target)
				}
				return p
			})
			if err != nil {
				return fmt.Errorf("failed to save project: %w", err)
			}
			p, _ := tree.FindProject(s.projects(), path.ProjectID)
			s.logEvent(s.events.LogMutation(report.EventUpdate, "project", p.ID, p.Name))
			s.printf("Updated project %s %s\n", shortID(p.ID), p.Name)
			return nil
		}),
	}
	setCmd.Flags().String("name", "", "project name")
	setCmd.Flags().String("notes", "", "free-form notes")
	setCmd.Flags().String("target-date", "", "target release date (YYYY-MM-DD)")

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a project with all its songs, versions, takes and releases",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path, err := s.projectPath(args[0])
			if err != nil {
				return err
			}
			p, _ := tree.FindProject(s.projects(), path.ProjectID)
			if err := s.notes.DeleteProject(path.ProjectID); err != nil {
				return fmt.Errorf("failed to save deletion: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventDelete, "project", p.ID, p.Name))
			s.printf("Deleted project %s %s\n", shortID(p.ID), p.Name)
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd, setCmd, rmCmd, newSelectCmd("project", func(s *session, ref string) (string, error) {
		p, err := s.projectPath(ref)
		return p.ProjectID, err
	}))
	return cmd
}

// newSelectCmd builds the "select" sub-command of an entity
func newSelectCmd(entity string, resolve func(s *session, ref string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: fmt.Sprintf("Make a %s the active one", entity),
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			id, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			if err := s.notes.Select(id); err != nil {
				return fmt.Errorf("failed to save selection: %w", err)
			}
			s.logEvent(s.events.LogMutation(report.EventSelect, entity, id, ""))
			s.printf("Selected %s %s\n", entity, shortID(id))
			return nil
		}),
	}
}
