package state

import (
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
)

// Selection is the active project, song and version
type Selection struct {
	ProjectID string `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	SongID    string `json:"songId,omitempty" yaml:"songId,omitempty"`
	VersionID string `json:"versionId,omitempty" yaml:"versionId,omitempty"`
}

// Path returns the selection as a tree path
func (s Selection) Path() tree.Path {
	return tree.Path{ProjectID: s.ProjectID, SongID: s.SongID, VersionID: s.VersionID}
}

// RepairSelection makes sel point at existing records. At each level, an id
// missing from its parent's children falls back to the first child, or to
// none when there are no children. A fallback at one level resets the levels
// below it.
func RepairSelection(projects []model.Project, sel Selection) Selection {
	if len(projects) == 0 {
		return Selection{}
	}
	p, ok := tree.FindProject(projects, sel.ProjectID)
	if !ok {
		p = projects[0]
		sel = Selection{ProjectID: p.ID}
	}

	if len(p.Songs) == 0 {
		return Selection{ProjectID: p.ID}
	}
	s, ok := tree.FindSong(projects, sel.Path())
	if !ok {
		s = p.Songs[0]
		sel.SongID, sel.VersionID = s.ID, ""
	}

	if len(s.Versions) == 0 {
		sel.VersionID = ""
		return sel
	}
	if _, ok := tree.FindVersion(projects, sel.Path()); !ok {
		sel.VersionID = s.Versions[0].ID
	}
	return sel
}
