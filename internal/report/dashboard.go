package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/samber/lo"
)

// Severity ranks a reminder
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Reminder is one open issue found in the tree
type Reminder struct {
	Severity  Severity
	Message   string
	ProjectID string
	SongID    string
	VersionID string
	ReleaseID string
}

// Counts are totals over the whole tree
type Counts struct {
	Projects int
	Songs    int
	Versions int
	Takes    int
	Keepers  int
	Releases int
}

// ProjectReadiness classifies one project. Ready and NeedsAttention are
// computed independently, so a project may carry both.
type ProjectReadiness struct {
	ProjectID      string
	Name           string
	Ready          bool
	NeedsAttention bool
}

// Label is the single classification shown to users. Attention wins.
func (r ProjectReadiness) Label() string {
	switch {
	case r.NeedsAttention:
		return "needs attention"
	case r.Ready:
		return "ready"
	default:
		return "in progress"
	}
}

// UpcomingRelease is a scheduled release plan with its owners
type UpcomingRelease struct {
	ProjectID    string
	ProjectName  string
	SongID       string
	SongTitle    string
	VersionID    string
	VersionLabel string
	Release      model.ReleasePlan
}

// Dashboard is the read-side projection of the project tree
type Dashboard struct {
	GeneratedAt time.Time
	Counts      Counts

	Projects       []ProjectReadiness
	Ready          int
	NeedsAttention int
	// InProgress is total - ready - attention, floored at zero. Projects
	// that are both ready and need attention are subtracted twice.
	InProgress int

	Reminders []Reminder
	Upcoming  []UpcomingRelease
}

// BuildDashboard scans projects. It never mutates its input and keeps no
// state between calls.
func BuildDashboard(projects []model.Project, now time.Time) *Dashboard {
	d := &Dashboard{GeneratedAt: now}
	d.Counts.Projects = len(projects)

	for _, p := range projects {
		r := ProjectReadiness{ProjectID: p.ID, Name: p.Name, Ready: len(p.Songs) > 0}

		for _, s := range p.Songs {
			d.Counts.Songs++
			if len(s.Versions) == 0 {
				r.Ready = false
				d.remind(SeverityInfo, fmt.Sprintf("Song %q has no versions", s.Title), p.ID, s.ID, "", "")
			}

			for _, v := range s.Versions {
				d.Counts.Versions++
				d.Counts.Takes += len(v.Takes)
				d.Counts.Keepers += len(v.SelectedTakes())
				d.Counts.Releases += len(v.Releases)

				name := versionName(s, v)
				if strings.TrimSpace(v.FinalURL) == "" {
					r.Ready = false
					r.NeedsAttention = true
					d.remind(SeverityWarning, fmt.Sprintf("%s is missing a final URL", name), p.ID, s.ID, v.ID, "")
				}
				if v.HasFailingQA() {
					r.NeedsAttention = true
					open := lo.CountBy(lo.Values(v.QA), func(ok bool) bool { return !ok })
					d.remind(SeverityWarning, fmt.Sprintf("%s has incomplete QA (%d open)", name, open), p.ID, s.ID, v.ID, "")
				}

				for _, rel := range v.Releases {
					if rel.Status != model.ReleaseScheduled {
						continue
					}
					if strings.TrimSpace(rel.Date) == "" {
						d.remind(SeverityCritical, fmt.Sprintf("%s release of %s is scheduled without a date", rel.Platform, name), p.ID, s.ID, v.ID, rel.ID)
						continue
					}
					d.Upcoming = append(d.Upcoming, UpcomingRelease{
						ProjectID:    p.ID,
						ProjectName:  p.Name,
						SongID:       s.ID,
						SongTitle:    s.Title,
						VersionID:    v.ID,
						VersionLabel: v.Label,
						Release:      rel,
					})
				}
			}
		}

		if r.Ready {
			d.Ready++
		}
		if r.NeedsAttention {
			d.NeedsAttention++
		}
		d.Projects = append(d.Projects, r)
	}

	d.InProgress = max(0, len(projects)-d.Ready-d.NeedsAttention)

	// Lexicographic on the date string: chronological for YYYY-MM-DD
	slices.SortStableFunc(d.Upcoming, func(a, b UpcomingRelease) int {
		return strings.Compare(a.Release.Date, b.Release.Date)
	})
	return d
}

func (d *Dashboard) remind(sev Severity, msg, projectID, songID, versionID, releaseID string) {
	d.Reminders = append(d.Reminders, Reminder{
		Severity:  sev,
		Message:   msg,
		ProjectID: projectID,
		SongID:    songID,
		VersionID: versionID,
		ReleaseID: releaseID,
	})
}

// RemindersBySeverity returns the reminders of one severity in tree order
func (d *Dashboard) RemindersBySeverity(sev Severity) []Reminder {
	return lo.Filter(d.Reminders, func(r Reminder, _ int) bool { return r.Severity == sev })
}

func versionName(s model.Song, v model.Version) string {
	if v.Label == "" {
		return fmt.Sprintf("Version of %q", s.Title)
	}
	return fmt.Sprintf("Version %s of %q", v.Label, s.Title)
}
