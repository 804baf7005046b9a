package main

import (
	"fmt"
	"os"
	"time"

	"github.com/franz/music-notebook/internal/backup"
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all projects and the builder to a JSON or YAML file",
		Long: `Export the notebook to a backup file. The format follows the file
extension: .yaml or .yml for YAML, JSON otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path := args[0]
			st := s.notes.State()
			doc := backup.Document{ExportedAt: now(), Projects: st.Projects}
			if noBuilder, _ := cmd.Flags().GetBool("no-builder"); !noBuilder {
				b := st.Builder.Clone()
				doc.Builder = &b
			}

			err := backup.WriteFile(path, doc)
			s.logEvent(s.events.LogTransfer(report.EventExport, path, len(doc.Projects), err))
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			util.SuccessLog("Exported %d projects to %s (%s)", len(doc.Projects), path, backup.FormatFromPath(path))
			return nil
		}),
	}
	cmd.Flags().Bool("no-builder", false, "leave the builder fields out of the export")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a backup file, replacing or merging into the notebook",
		Long: `Import a backup file written by "mnb export".

By default the imported projects replace all current projects and the
builder is restored from the file. With --merge the imported projects are
appended instead; a project is skipped when any of its ids is already in
use, and the builder is left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			path := args[0]
			merge, _ := cmd.Flags().GetBool("merge")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			doc, err := backup.ReadFile(path)
			if err != nil {
				s.logEvent(s.events.LogTransfer(report.EventImport, path, 0, err))
				return fmt.Errorf("import failed: %w", err)
			}
			util.InfoLog("Read %d projects from %s (exported %s)", len(doc.Projects), path, doc.ExportedAt.Format(time.RFC3339))

			if !merge {
				return replaceFromBackup(s, path, doc, dryRun)
			}
			return mergeFromBackup(s, path, doc, dryRun)
		}),
	}
	cmd.Flags().Bool("merge", false, "append to the current projects instead of replacing them")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	return cmd
}

func replaceFromBackup(s *session, path string, doc *backup.Document, dryRun bool) error {
	if dryRun {
		util.InfoLog("[DRY-RUN] Would replace %d projects with %d", len(s.projects()), len(doc.Projects))
		return nil
	}
	if err := s.notes.ReplaceProjects(doc.Projects); err != nil {
		return fmt.Errorf("failed to save import: %w", err)
	}
	if doc.Builder != nil {
		b := *doc.Builder
		if err := s.notes.UpdateBuilder(func(model.BuilderFields) model.BuilderFields { return b }); err != nil {
			return fmt.Errorf("failed to save builder: %w", err)
		}
	}
	s.logEvent(s.events.LogTransfer(report.EventImport, path, len(doc.Projects), nil))
	util.SuccessLog("Imported %d projects from %s", len(doc.Projects), path)
	return nil
}

func mergeFromBackup(s *session, path string, doc *backup.Document, dryRun bool) error {
	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() && len(doc.Projects) > 1 {
		bar = progressbar.NewOptions(len(doc.Projects),
			progressbar.OptionSetDescription("Merging"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("projects"),
			progressbar.OptionClearOnFinish(),
		)
	}

	var skipped []string
	merged, added := backup.Merge(s.projects(), doc.Projects, func(p model.Project, ok bool) {
		if !ok {
			skipped = append(skipped, p.Name)
		}
		if bar != nil {
			bar.Add(1)
		}
	})
	if bar != nil {
		bar.Finish()
	}

	for _, name := range skipped {
		util.WarnLog("Skipped project %q: its ids are already in the notebook", name)
	}
	if dryRun {
		util.InfoLog("[DRY-RUN] Would add %d projects, skip %d", added, len(skipped))
		return nil
	}
	if added > 0 {
		if err := s.notes.ReplaceProjects(merged); err != nil {
			return fmt.Errorf("failed to save import: %w", err)
		}
	}
	s.logEvent(s.events.LogTransfer(report.EventImport, path, added, nil))
	util.SuccessLog("Merged %d of %d projects from %s", added, len(doc.Projects), path)
	return nil
}
