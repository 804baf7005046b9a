package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/franz/music-notebook/internal/clipboard"
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/report"
	"github.com/franz/music-notebook/internal/state"
	"github.com/franz/music-notebook/internal/store"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// newClipboard is replaced in tests to keep the system clipboard untouched
var newClipboard = func() *clipboard.Clipboard { return clipboard.New() }

// now is the clock used for dashboards and reports
var now = time.Now

// session is one command invocation: the database, the live notebook state
// persisted on every change, the event log and the clipboard
type session struct {
	db     *store.Store
	notes  *state.Store
	events *report.EventLogger
	clip   *clipboard.Clipboard
	out    io.Writer
}

func openSession(out io.Writer) (*session, error) {
	dbPath := GetConfigPath("db", defaultDBPath)

	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{
		NetworkOptimized: util.NetworkDB(dbPath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st, err := db.LoadState()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	notes := state.New(st, state.WithExclusiveKeeper(util.ExclusiveKeeper()))
	notes.Subscribe(db.Persister())

	events := report.NullLogger()
	if dir := GetConfigPath("event-log-dir", ""); dir != "" {
		level := report.ParseLevel(GetConfigString("event-log-level", "info"))
		events, err = report.NewEventLogger(dir, level)
		if err != nil {
			util.WarnLog("Event log disabled: %v", err)
			events = report.NullLogger()
		} else {
			util.DebugLog("Event log: %s", events.Path())
		}
	}

	return &session{
		db:     db,
		notes:  notes,
		events: events,
		clip:   newClipboard(),
		out:    out,
	}, nil
}

// Close flushes the event log and closes the database
func (s *session) Close() error {
	return errors.Join(s.events.Close(), s.db.Close())
}

func (s *session) projects() []model.Project {
	return s.notes.State().Projects
}

// printf writes command output, never log lines
func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

// logEvent records an audit event; a failing event log never fails the command
func (s *session) logEvent(err error) {
	if err != nil {
		util.DebugLog("Event log write failed: %v", err)
	}
}

// withSession opens a session around a command body
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				util.WarnLog("Failed to close session: %v", err)
			}
		}()
		if err := fn(cmd, args, s); err != nil {
			s.logEvent(s.events.LogError(report.EventError, cmd.CommandPath(), err))
			return err
		}
		return nil
	}
}

// resolve finds the record whose id equals ref or, failing that, the single
// record whose id starts with ref
func (s *session) resolve(ref string) (tree.Path, error) {
	projects := s.projects()
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return tree.Path{}, fmt.Errorf("empty id: %w", util.ErrInvalidInput)
	}
	if p, ok := tree.Locate(projects, ref); ok {
		return p, nil
	}

	matches := lo.Filter(tree.IDs(projects), func(id string, _ int) bool {
		return strings.HasPrefix(id, ref)
	})
	switch len(matches) {
	case 0:
		return tree.Path{}, fmt.Errorf("no record with id %q: %w", ref, util.ErrNotFound)
	case 1:
		p, _ := tree.Locate(projects, matches[0])
		return p, nil
	default:
		return tree.Path{}, fmt.Errorf("id %q is ambiguous (%d matches): %w", ref, len(matches), util.ErrInvalidInput)
	}
}

func (s *session) projectPath(ref string) (tree.Path, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return p, err
	}
	if p.SongID != "" {
		return p, fmt.Errorf("%s is not a project: %w", ref, util.ErrInvalidInput)
	}
	return p, nil
}

func (s *session) songPath(ref string) (tree.Path, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return p, err
	}
	if p.SongID == "" || p.VersionID != "" {
		return p, fmt.Errorf("%s is not a song: %w", ref, util.ErrInvalidInput)
	}
	return p, nil
}

func (s *session) versionPath(ref string) (tree.Path, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return p, err
	}
	if p.VersionID == "" || p.ItemID != "" {
		return p, fmt.Errorf("%s is not a version: %w", ref, util.ErrInvalidInput)
	}
	return p, nil
}

func (s *session) takePath(ref string) (tree.Path, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return p, err
	}
	if _, ok := tree.FindTake(s.projects(), p); !ok {
		return p, fmt.Errorf("%s is not a take: %w", ref, util.ErrInvalidInput)
	}
	return p, nil
}

func (s *session) releasePath(ref string) (tree.Path, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return p, err
	}
	if _, ok := tree.FindRelease(s.projects(), p); !ok {
		return p, fmt.Errorf("%s is not a release plan: %w", ref, util.ErrInvalidInput)
	}
	return p, nil
}

// selectParent makes ref the selection before a create. An empty ref keeps
// the current selection.
func (s *session) selectParent(ref string, resolve func(string) (tree.Path, error)) error {
	if ref == "" {
		return nil
	}
	p, err := resolve(ref)
	if err != nil {
		return err
	}
	return s.notes.Select(lastID(p))
}

// targetVersion resolves an optional version argument, defaulting to the
// selected version
func (s *session) targetVersion(args []string) (tree.Path, error) {
	if len(args) > 0 && args[0] != "" {
		return s.versionPath(args[0])
	}
	p := s.notes.Selected()
	if p.VersionID == "" {
		return p, fmt.Errorf("no version selected: %w", util.ErrNoSelection)
	}
	return p, nil
}

// lastID is the id of the deepest record p addresses
func lastID(p tree.Path) string {
	switch {
	case p.ItemID != "":
		return p.ItemID
	case p.VersionID != "":
		return p.VersionID
	case p.SongID != "":
		return p.SongID
	default:
		return p.ProjectID
	}
}

// shortID abbreviates an id for listings; any unique prefix resolves back
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// selectedMark flags the selected row of a listing
func selectedMark(selected bool) string {
	if selected {
		return "*"
	}
	return " "
}
