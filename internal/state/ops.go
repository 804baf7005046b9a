package state

import (
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
)

// CreateProject adds a project and selects it. An invalid draft creates
// nothing and returns an empty id.
func (s *Store) CreateProject(draft model.Project) (string, error) {
	var id string
	err := s.Update(func(st State) (State, bool) {
		st.Projects, id = tree.AddProject(st.Projects, draft, s.ids, s.now())
		if id == "" {
			return st, false
		}
		st.Selection = Selection{ProjectID: id}
		return st, true
	})
	return id, err
}

// UpdateProject applies fn to the project with the given id
func (s *Store) UpdateProject(id string, fn func(model.Project) model.Project) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.UpdateProject(projects, id, fn)
	})
}

// DeleteProject removes a project and everything below it
func (s *Store) DeleteProject(id string) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.DeleteProject(projects, id)
	})
}

// CreateSong adds a song to the selected project and selects it. Without a
// selected project nothing is created.
func (s *Store) CreateSong(draft model.Song) (string, error) {
	var id string
	err := s.Update(func(st State) (State, bool) {
		sel := st.Selection
		if sel.ProjectID == "" {
			return st, false
		}
		st.Projects, id = tree.AddSong(st.Projects, sel.Path(), draft, s.ids)
		if id == "" {
			return st, false
		}
		st.Selection = Selection{ProjectID: sel.ProjectID, SongID: id}
		return st, true
	})
	return id, err
}

// UpdateSong applies fn to the song at path
func (s *Store) UpdateSong(path tree.Path, fn func(model.Song) model.Song) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.UpdateSong(projects, path, fn)
	})
}

// DeleteSong removes the song at path and its versions
func (s *Store) DeleteSong(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.DeleteSong(projects, path)
	})
}

// CreateVersion adds a version to the selected song, snapshotting the
// current builder, and selects it. Without a selected song nothing is
// created.
func (s *Store) CreateVersion(draft model.Version) (string, error) {
	var id string
	err := s.Update(func(st State) (State, bool) {
		sel := st.Selection
		if sel.SongID == "" {
			return st, false
		}
		st.Projects, id = tree.AddVersion(st.Projects, sel.Path(), draft, st.Builder, s.ids, s.now())
		if id == "" {
			return st, false
		}
		sel.VersionID = id
		st.Selection = sel
		return st, true
	})
	return id, err
}

// UpdateVersion applies fn to the version at path
func (s *Store) UpdateVersion(path tree.Path, fn func(model.Version) model.Version) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.UpdateVersion(projects, path, fn)
	})
}

// DeleteVersion removes the version at path with its takes and release plans
func (s *Store) DeleteVersion(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.DeleteVersion(projects, path)
	})
}

// ToggleQA flips a checklist item on the version at path
func (s *Store) ToggleQA(path tree.Path, item string) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.ToggleQA(projects, path, item)
	})
}

// RecordPrompt appends text to the prompt history of the version at path
func (s *Store) RecordPrompt(path tree.Path, text string) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.AppendPromptHistory(projects, path, text, s.now())
	})
}

// AddTimelineEntry records a stage transition on the version at path
func (s *Store) AddTimelineEntry(path tree.Path, stage model.Stage, note string) error {
	entry := model.TimelineEntry{At: s.now(), Stage: stage, Note: model.CleanText(note)}
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.AppendTimeline(projects, path, entry)
	})
}

// CreateTake adds a take to the selected version. With exclusive keepers a
// take created as selected becomes the only keeper.
func (s *Store) CreateTake(draft model.Take) (string, error) {
	var id string
	err := s.Update(func(st State) (State, bool) {
		path := st.Selection.Path()
		if path.VersionID == "" {
			return st, false
		}
		st.Projects, id = tree.AddTake(st.Projects, path, draft, s.ids)
		if id == "" {
			return st, false
		}
		if draft.Selected && s.exclusiveKeeper {
			st.Projects, _ = tree.KeepOnly(st.Projects, path.Item(id))
		}
		return st, true
	})
	return id, err
}

// UpdateTake applies fn to the take at path
func (s *Store) UpdateTake(path tree.Path, fn func(model.Take) model.Take) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.UpdateTake(projects, path, fn)
	})
}

// DeleteTake removes the take at path
func (s *Store) DeleteTake(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.DeleteTake(projects, path)
	})
}

// ToggleKeeper flips the keeper flag of the take at path
func (s *Store) ToggleKeeper(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.ToggleKeeper(projects, path, s.exclusiveKeeper)
	})
}

// KeepOnly marks the take at path as the single keeper of its version
func (s *Store) KeepOnly(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.KeepOnly(projects, path)
	})
}

// CreateRelease adds a release plan to the selected version
func (s *Store) CreateRelease(draft model.ReleasePlan) (string, error) {
	var id string
	err := s.Update(func(st State) (State, bool) {
		path := st.Selection.Path()
		if path.VersionID == "" {
			return st, false
		}
		st.Projects, id = tree.AddRelease(st.Projects, path, draft, s.ids)
		return st, id != ""
	})
	return id, err
}

// UpdateRelease applies fn to the release plan at path
func (s *Store) UpdateRelease(path tree.Path, fn func(model.ReleasePlan) model.ReleasePlan) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.UpdateRelease(projects, path, fn)
	})
}

// DeleteRelease removes the release plan at path
func (s *Store) DeleteRelease(path tree.Path) error {
	return s.edit(func(projects []model.Project) ([]model.Project, bool) {
		return tree.DeleteRelease(projects, path)
	})
}
