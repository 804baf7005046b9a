package tree

import (
	"fmt"

	"github.com/franz/music-notebook/internal/model"
)

func projectID(p model.Project) string     { return p.ID }
func songID(s model.Song) string           { return s.ID }
func versionID(v model.Version) string     { return v.ID }
func takeID(t model.Take) string           { return t.ID }
func releaseID(r model.ReleasePlan) string { return r.ID }

func editProject(projects []model.Project, id string, fn func(model.Project) (model.Project, bool)) ([]model.Project, bool) {
	return updateByID(projects, id, projectID, fn)
}

func editSong(projects []model.Project, path Path, fn func(model.Song) (model.Song, bool)) ([]model.Project, bool) {
	return editProject(projects, path.ProjectID, func(p model.Project) (model.Project, bool) {
		songs, ok := updateByID(p.Songs, path.SongID, songID, fn)
		if !ok {
			return p, false
		}
		p.Songs = songs
		return p, true
	})
}

func editVersion(projects []model.Project, path Path, fn func(model.Version) (model.Version, bool)) ([]model.Project, bool) {
	return editSong(projects, path, func(s model.Song) (model.Song, bool) {
		versions, ok := updateByID(s.Versions, path.VersionID, versionID, fn)
		if !ok {
			return s, false
		}
		s.Versions = versions
		return s, true
	})
}

func editTake(projects []model.Project, path Path, fn func(model.Take) (model.Take, bool)) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		takes, ok := updateByID(v.Takes, path.ItemID, takeID, fn)
		if !ok {
			return v, false
		}
		v.Takes = takes
		return v, true
	})
}

func editRelease(projects []model.Project, path Path, fn func(model.ReleasePlan) (model.ReleasePlan, bool)) ([]model.Project, bool) {
	return editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		releases, ok := updateByID(v.Releases, path.ItemID, releaseID, fn)
		if !ok {
			return v, false
		}
		v.Releases = releases
		return v, true
	})
}

// FindProject returns the project with the given id
func FindProject(projects []model.Project, id string) (model.Project, bool) {
	return findByID(projects, id, projectID)
}

// FindSong returns the song addressed by path
func FindSong(projects []model.Project, path Path) (model.Song, bool) {
	p, ok := FindProject(projects, path.ProjectID)
	if !ok {
		return model.Song{}, false
	}
	return findByID(p.Songs, path.SongID, songID)
}

// FindVersion returns the version addressed by path
func FindVersion(projects []model.Project, path Path) (model.Version, bool) {
	s, ok := FindSong(projects, path)
	if !ok {
		return model.Version{}, false
	}
	return findByID(s.Versions, path.VersionID, versionID)
}

// FindTake returns the take addressed by path
func FindTake(projects []model.Project, path Path) (model.Take, bool) {
	v, ok := FindVersion(projects, path)
	if !ok {
		return model.Take{}, false
	}
	return findByID(v.Takes, path.ItemID, takeID)
}

// FindRelease returns the release plan addressed by path
func FindRelease(projects []model.Project, path Path) (model.ReleasePlan, bool) {
	v, ok := FindVersion(projects, path)
	if !ok {
		return model.ReleasePlan{}, false
	}
	return findByID(v.Releases, path.ItemID, releaseID)
}

// Locate finds the full path of the record with the given id at any level.
// Ids are globally unique, so the first match is the only one.
func Locate(projects []model.Project, id string) (Path, bool) {
	if id == "" {
		return Path{}, false
	}
	for _, p := range projects {
		if p.ID == id {
			return Path{ProjectID: p.ID}, true
		}
		for _, s := range p.Songs {
			if s.ID == id {
				return Path{ProjectID: p.ID, SongID: s.ID}, true
			}
			for _, v := range s.Versions {
				vp := Path{ProjectID: p.ID, SongID: s.ID, VersionID: v.ID}
				if v.ID == id {
					return vp, true
				}
				for _, t := range v.Takes {
					if t.ID == id {
						return vp.Item(t.ID), true
					}
				}
				for _, r := range v.Releases {
					if r.ID == id {
						return vp.Item(r.ID), true
					}
				}
			}
		}
	}
	return Path{}, false
}

// IDs lists the id of every record in tree order, parents before children
func IDs(projects []model.Project) []string {
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.ID)
		for _, s := range p.Songs {
			ids = append(ids, s.ID)
			for _, v := range s.Versions {
				ids = append(ids, v.ID)
				for _, t := range v.Takes {
					ids = append(ids, t.ID)
				}
				for _, r := range v.Releases {
					ids = append(ids, r.ID)
				}
			}
		}
	}
	return ids
}

// Relink sets every child's parent id to the record that holds it. It
// rewrites projects in place and is meant for trees just read from storage.
func Relink(projects []model.Project) []model.Project {
	for pi := range projects {
		p := &projects[pi]
		for si := range p.Songs {
			s := &p.Songs[si]
			s.ProjectID = p.ID
			for vi := range s.Versions {
				v := &s.Versions[vi]
				v.SongID = s.ID
				for ti := range v.Takes {
					v.Takes[ti].VersionID = v.ID
				}
			}
		}
	}
	return projects
}

// Check validates every record in tree order and reports the first one that
// could not have been created, naming its id
func Check(projects []model.Project) error {
	for _, p := range projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
		for _, s := range p.Songs {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("song %s: %w", s.ID, err)
			}
			for _, v := range s.Versions {
				if err := v.Validate(); err != nil {
					return fmt.Errorf("version %s: %w", v.ID, err)
				}
				for _, t := range v.Takes {
					if err := t.Validate(); err != nil {
						return fmt.Errorf("take %s: %w", t.ID, err)
					}
				}
				for _, r := range v.Releases {
					if err := r.Validate(); err != nil {
						return fmt.Errorf("release %s: %w", r.ID, err)
					}
				}
			}
		}
	}
	return nil
}
