package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/util"
)

// ReportMeta describes where the report data came from
type ReportMeta struct {
	DatabasePath string
	DatabaseSize int64
	EventLogPath string
}

// releaseDateLayout is the date format the notebook encourages for release plans
const releaseDateLayout = "2006-01-02"

// RenderMarkdown renders the dashboard as a Markdown document
func RenderMarkdown(d *Dashboard, meta ReportMeta) string {
	var md strings.Builder

	md.WriteString("# Music Notebook - Status Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04:05")))
	if meta.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`", truncatePath(meta.DatabasePath, 80)))
		if meta.DatabaseSize > 0 {
			md.WriteString(fmt.Sprintf(" (%s)", humanize.Bytes(uint64(meta.DatabaseSize))))
		}
		md.WriteString("\n\n")
	}
	if meta.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", truncatePath(meta.EventLogPath, 80)))
	}
	md.WriteString("---\n\n")

	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Projects | %s |\n", humanize.Comma(int64(d.Counts.Projects))))
	md.WriteString(fmt.Sprintf("| Songs | %s |\n", humanize.Comma(int64(d.Counts.Songs))))
	md.WriteString(fmt.Sprintf("| Versions | %s |\n", humanize.Comma(int64(d.Counts.Versions))))
	if d.Counts.Takes > 0 {
		md.WriteString(fmt.Sprintf("| Takes (keepers) | %s (%s) |\n",
			humanize.Comma(int64(d.Counts.Takes)), humanize.Comma(int64(d.Counts.Keepers))))
	}
	if d.Counts.Releases > 0 {
		md.WriteString(fmt.Sprintf("| Release Plans | %s |\n", humanize.Comma(int64(d.Counts.Releases))))
	}
	md.WriteString("\n")

	if len(d.Projects) > 0 {
		md.WriteString("## 🎚️ Readiness\n\n")
		md.WriteString(fmt.Sprintf("%d ready, %d need attention, %d in progress\n\n", d.Ready, d.NeedsAttention, d.InProgress))
		md.WriteString("| Project | Status |\n")
		md.WriteString("|---------|--------|\n")
		for _, p := range d.Projects {
			md.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(p.Name), p.Label()))
		}
		md.WriteString("\n")
	}

	if len(d.Upcoming) > 0 {
		md.WriteString("## 📅 Upcoming Releases\n\n")
		md.WriteString("| Date | Platform | Song | Version |\n")
		md.WriteString("|------|----------|------|---------|\n")
		for _, u := range d.Upcoming {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				releaseWhen(u.Release.Date, d.GeneratedAt),
				escapeCell(u.Release.Platform),
				escapeCell(u.SongTitle),
				u.VersionLabel))
		}
		md.WriteString("\n")
	}

	if len(d.Reminders) > 0 {
		md.WriteString("## ⚠️ Reminders\n\n")
		for _, sev := range []Severity{SeverityCritical, SeverityWarning, SeverityInfo} {
			for _, r := range d.RemindersBySeverity(sev) {
				md.WriteString(fmt.Sprintf("- %s **%s** %s\n", severityIcon(sev), sev, r.Message))
			}
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString(fmt.Sprintf("*QA checklist: %d items per version*\n", len(model.QAChecklist)))
	return md.String()
}

// WriteMarkdownReport renders the dashboard to outputPath
func WriteMarkdownReport(d *Dashboard, meta ReportMeta, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := util.RetryableCreate(outputPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if _, err := f.WriteString(RenderMarkdown(d, meta)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// releaseWhen shows the date with a relative hint when it parses as YYYY-MM-DD
func releaseWhen(date string, now time.Time) string {
	t, err := time.ParseInLocation(releaseDateLayout, date, now.Location())
	if err != nil {
		return escapeCell(date)
	}
	return fmt.Sprintf("%s (%s)", date, humanize.RelTime(t, now, "ago", "from now"))
}

func severityIcon(sev Severity) string {
	switch sev {
	case SeverityCritical:
		return "🚨"
	case SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Keep start and end, the middle is usually the least informative
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
