package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"status"},
		Short:   "Show totals, project readiness, reminders and upcoming releases",
		Args:    cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			d := report.BuildDashboard(s.projects(), now())
			return printDashboard(s.out, d)
		}),
	}
}

func printDashboard(out io.Writer, d *report.Dashboard) error {
	c := d.Counts
	fmt.Fprintf(out, "Projects %s  Songs %s  Versions %s  Takes %s (%s kept)  Releases %s\n",
		humanize.Comma(int64(c.Projects)), humanize.Comma(int64(c.Songs)), humanize.Comma(int64(c.Versions)),
		humanize.Comma(int64(c.Takes)), humanize.Comma(int64(c.Keepers)), humanize.Comma(int64(c.Releases)))
	fmt.Fprintf(out, "Ready %d  Needs attention %d  In progress %d\n", d.Ready, d.NeedsAttention, d.InProgress)

	if len(d.Projects) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROJECT\tSTATUS")
		for _, p := range d.Projects {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Label())
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(d.Reminders) > 0 {
		fmt.Fprintf(out, "\nReminders:\n")
		for _, sev := range []report.Severity{report.SeverityCritical, report.SeverityWarning, report.SeverityInfo} {
			for _, r := range d.RemindersBySeverity(sev) {
				fmt.Fprintf(out, "  [%s] %s\n", r.Severity, r.Message)
			}
		}
	}

	if len(d.Upcoming) > 0 {
		fmt.Fprintf(out, "\nUpcoming releases:\n")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, u := range d.Upcoming {
			fmt.Fprintf(w, "  %s\t%s\t%s %s\t%s\n", u.Release.Date, u.Release.Platform, u.SongTitle, u.VersionLabel, u.ProjectName)
		}
		return w.Flush()
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the dashboard as a Markdown report",
		Long: `Generate a status report in Markdown format.

The report includes:
- Totals over all projects
- Readiness of each project
- Reminders grouped by severity
- Upcoming scheduled releases

The report is saved to artifacts/reports/<timestamp>/status.md`,
		Args: cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			util.InfoLog("=== Generating Status Report ===")
			util.InfoLog("Database: %s", s.db.Path())

			d := report.BuildDashboard(s.projects(), now())
			meta := report.ReportMeta{
				DatabasePath: s.db.Path(),
				EventLogPath: s.events.Path(),
			}
			if fi, err := os.Stat(s.db.Path()); err == nil {
				meta.DatabaseSize = fi.Size()
			}

			outputPath, _ := cmd.Flags().GetString("out")
			if outputPath == "" {
				timestamp := now().Format("20060102-150405")
				outputPath = filepath.Join("artifacts", "reports", timestamp, "status.md")
			}

			util.InfoLog("Writing report to: %s", outputPath)
			if err := report.WriteMarkdownReport(d, meta, outputPath); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			util.SuccessLog("Report generated successfully!")
			util.InfoLog("  Projects: %d (%d ready, %d need attention)", d.Counts.Projects, d.Ready, d.NeedsAttention)
			if n := len(d.RemindersBySeverity(report.SeverityCritical)); n > 0 {
				util.WarnLog("  Critical reminders: %d", n)
			}
			s.printf("%s\n", outputPath)
			return nil
		}),
	}
	cmd.Flags().String("out", "", "report file (default: artifacts/reports/<timestamp>/status.md)")
	return cmd
}
