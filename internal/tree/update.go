package tree

import (
	"time"

	"github.com/franz/music-notebook/internal/model"
)

// UpdateProject applies fn to the project with the given id. The id and the
// song list are kept: children change only through their own operations.
func UpdateProject(projects []model.Project, id string, fn func(model.Project) model.Project) ([]model.Project, bool) {
	return editProject(projects, id, func(p model.Project) (model.Project, bool) {
		updated := fn(p)
		updated.ID, updated.Songs = p.ID, p.Songs
		return updated, true
	})
}

// UpdateSong applies fn to the song at path
func UpdateSong(projects []model.Project, path Path, fn func(model.Song) model.Song) ([]model.Project, bool) {
	return editSong(projects, path, func(s model.Song) (model.Song, bool) {
		updated := fn(s)
		if updated.Status != s.Status && !updated.Status.ValidForSong() {
			return s, false
		}
		updated.ID, updated.ProjectID, updated.Versions = s.ID, s.ProjectID, s.Versions
		return updated, true
	})
}

// UpdateVersion applies fn to the version at path. The prompt history and
// timeline are append-only and cannot be rewritten here.
func UpdateVersion(projects []model.Project, path Path, fn func(model.Version) model.Version) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		updated := fn(v)
		if updated.Status != v.Status && !updated.Status.Valid() {
			return v, false
		}
		updated.ID, updated.SongID = v.ID, v.SongID
		updated.Takes, updated.Releases = v.Takes, v.Releases
		updated.PromptHistory, updated.Timeline = v.PromptHistory, v.Timeline
		return updated, true
	})
}

// UpdateTake applies fn to the take at path
func UpdateTake(projects []model.Project, path Path, fn func(model.Take) model.Take) ([]model.Project, bool) {
	return editTake(projects, path, func(t model.Take) (model.Take, bool) {
		updated := fn(t)
		updated.ID, updated.VersionID = t.ID, t.VersionID
		return updated, true
	})
}

// UpdateRelease applies fn to the release plan at path
func UpdateRelease(projects []model.Project, path Path, fn func(model.ReleasePlan) model.ReleasePlan) ([]model.Project, bool) {
	return editRelease(projects, path, func(r model.ReleasePlan) (model.ReleasePlan, bool) {
		updated := fn(r)
		if updated.Status != r.Status && !updated.Status.Valid() {
			return r, false
		}
		updated.ID = r.ID
		return updated, true
	})
}

// DeleteProject removes a project and everything below it
func DeleteProject(projects []model.Project, id string) ([]model.Project, bool) {
	return removeByID(projects, id, projectID)
}

// DeleteSong removes the song at path with its versions
func DeleteSong(projects []model.Project, path Path) ([]model.Project, bool) {
	return editProject(projects, path.ProjectID, func(p model.Project) (model.Project, bool) {
		songs, ok := removeByID(p.Songs, path.SongID, songID)
		p.Songs = songs
		return p, ok
	})
}

// DeleteVersion removes the version at path with its takes and release plans
func DeleteVersion(projects []model.Project, path Path) ([]model.Project, bool) {
	return editSong(projects, path, func(s model.Song) (model.Song, bool) {
		versions, ok := removeByID(s.Versions, path.VersionID, versionID)
		s.Versions = versions
		return s, ok
	})
}

// DeleteTake removes the take at path
func DeleteTake(projects []model.Project, path Path) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		takes, ok := removeByID(v.Takes, path.ItemID, takeID)
		v.Takes = takes
		return v, ok
	})
}

// DeleteRelease removes the release plan at path
func DeleteRelease(projects []model.Project, path Path) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		releases, ok := removeByID(v.Releases, path.ItemID, releaseID)
		v.Releases = releases
		return v, ok
	})
}

// ToggleQA flips one checklist item of the version at path. Keys outside
// the checklist are rejected.
func ToggleQA(projects []model.Project, path Path, item string) ([]model.Project, bool) {
	if !model.IsQAItem(item) {
		return projects, false
	}
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		qa := cloneQA(v.QA)
		qa[item] = !qa[item]
		v.QA = qa
		return v, true
	})
}

// ToggleKeeper flips the selected flag of the take at path. With exclusive
// set, selecting a take clears the flag on every other take of the version.
func ToggleKeeper(projects []model.Project, path Path, exclusive bool) ([]model.Project, bool) {
	t, ok := FindTake(projects, path)
	if !ok {
		return projects, false
	}
	if !t.Selected && exclusive {
		return KeepOnly(projects, path)
	}
	return editTake(projects, path, func(t model.Take) (model.Take, bool) {
		t.Selected = !t.Selected
		return t, true
	})
}

// KeepOnly marks the take at path as the single keeper of its version
func KeepOnly(projects []model.Project, path Path) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		if _, ok := findByID(v.Takes, path.ItemID, takeID); !ok {
			return v, false
		}
		takes := make([]model.Take, len(v.Takes))
		for i, t := range v.Takes {
			t.Selected = t.ID == path.ItemID
			takes[i] = t
		}
		v.Takes = takes
		return v, true
	})
}

// AppendPromptHistory records a prompt on the version at path. Blank prompts
// and repeats of the latest entry are not recorded.
func AppendPromptHistory(projects []model.Project, path Path, text string, now time.Time) ([]model.Project, bool) {
	if model.CleanText(text) == "" {
		return projects, false
	}
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		if n := len(v.PromptHistory); n > 0 && v.PromptHistory[n-1].Prompt == text {
			return v, false
		}
		v.PromptHistory = appendItem(v.PromptHistory, model.PromptSnapshot{At: now, Prompt: text})
		return v, true
	})
}

// AppendTimeline records a workflow stage transition on the version at path
func AppendTimeline(projects []model.Project, path Path, entry model.TimelineEntry) ([]model.Project, bool) {
	if !entry.Stage.Valid() {
		return projects, false
	}
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		v.Timeline = appendItem(v.Timeline, entry)
		return v, true
	})
}
