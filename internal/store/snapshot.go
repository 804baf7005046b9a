package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/state"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
)

// Keys under which the notebook state is persisted
const (
	KeyProjects  = "mnb.projects"
	KeyBuilder   = "mnb.builder"
	KeySelection = "mnb.selection"
)

// LoadState reads the notebook state. Each key falls back to its default
// independently when absent or undecodable; only database errors are
// returned.
func (s *Store) LoadState() (state.State, error) {
	st := state.Default()

	if err := s.load(KeyProjects, &st.Projects); err != nil {
		return state.Default(), err
	}
	if err := s.load(KeyBuilder, &st.Builder); err != nil {
		return state.Default(), err
	}
	if err := s.load(KeySelection, &st.Selection); err != nil {
		return state.Default(), err
	}

	st.Projects = normalizeProjects(st.Projects)
	st.Selection = state.RepairSelection(st.Projects, st.Selection)
	return st, nil
}

// load decodes key into dst, leaving dst untouched when the key is missing
// or its value is corrupt
func (s *Store) load(key string, dst any) error {
	raw, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	switch v := dst.(type) {
	case *[]model.Project:
		var projects []model.Project
		if err := json.Unmarshal([]byte(raw), &projects); err != nil {
			util.WarnLog("Stored %s is unreadable, starting with no projects: %v", key, err)
			return nil
		}
		*v = projects
	case *model.BuilderFields:
		var b model.BuilderFields
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			util.WarnLog("Stored %s is unreadable, using default builder: %v", key, err)
			return nil
		}
		*v = b
	case *state.Selection:
		var sel state.Selection
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			util.WarnLog("Stored %s is unreadable, clearing selection: %v", key, err)
			return nil
		}
		*v = sel
	default:
		return fmt.Errorf("load %s: %w", key, util.ErrUnsupported)
	}
	return nil
}

// CheckState reports the stored keys that LoadState would replace with
// defaults. Absent keys are fine.
func (s *Store) CheckState() error {
	bad, err := s.unreadableKeys()
	if err != nil {
		return err
	}
	var errs []error
	for _, b := range bad {
		errs = append(errs, fmt.Errorf("%s: %v: %w", b.key, b.err, util.ErrCorrupt))
	}
	return errors.Join(errs...)
}

// DropUnreadable deletes the keys CheckState reports, so the next load
// starts from their defaults without warning. It returns the deleted keys.
func (s *Store) DropUnreadable() ([]string, error) {
	bad, err := s.unreadableKeys()
	if err != nil {
		return nil, err
	}
	var dropped []string
	for _, b := range bad {
		if err := s.Delete(b.key); err != nil {
			return dropped, err
		}
		util.WarnLog("Dropped unreadable %s: %v", b.key, b.err)
		dropped = append(dropped, b.key)
	}
	return dropped, nil
}

type unreadable struct {
	key string
	err error
}

func (s *Store) unreadableKeys() ([]unreadable, error) {
	checks := []struct {
		key string
		dst any
	}{
		{KeyProjects, &[]model.Project{}},
		{KeyBuilder, &model.BuilderFields{}},
		{KeySelection, &state.Selection{}},
	}

	var bad []unreadable
	for _, c := range checks {
		raw, ok, err := s.Get(c.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), c.dst); err != nil {
			bad = append(bad, unreadable{key: c.key, err: err})
		}
	}
	return bad, nil
}

// normalizeProjects points every child at its real parent and gives every
// version a QA map holding exactly the checklist keys. Older saves may lack
// keys or carry retired ones.
func normalizeProjects(projects []model.Project) []model.Project {
	tree.Relink(projects)
	for pi := range projects {
		for si := range projects[pi].Songs {
			versions := projects[pi].Songs[si].Versions
			for vi := range versions {
				versions[vi].QA = versions[vi].NormalizeQA()
			}
		}
	}
	return projects
}

// SaveState writes projects, builder and selection in one transaction,
// retrying while another process holds the write lock
func (s *Store) SaveState(st state.State) error {
	values := make(map[string]string, 3)
	for key, v := range map[string]any{
		KeyProjects:  st.Projects,
		KeyBuilder:   st.Builder,
		KeySelection: st.Selection,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		values[key] = string(data)
	}

	return util.Retry(util.StoreRetryConfig(), func() error {
		return s.PutMany(values)
	}, "save state")
}

// Persister returns a state listener that saves every change
func (s *Store) Persister() state.Listener {
	return func(st state.State) error {
		if err := s.SaveState(st); err != nil {
			return fmt.Errorf("failed to persist state: %w", err)
		}
		return nil
	}
}
