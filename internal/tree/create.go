package tree

import (
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/prompt"
)

// AddProject appends a new project built from draft. An invalid draft
// (empty name) produces no record: the input is returned with an empty id.
func AddProject(projects []model.Project, draft model.Project, ids model.IDSource, now time.Time) ([]model.Project, string) {
	if draft.Validate() != nil {
		return projects, ""
	}
	p := model.Project{
		ID:                ids.NewID(),
		Name:              model.CleanText(draft.Name),
		Notes:             draft.Notes,
		CreatedAt:         draft.CreatedAt,
		TargetReleaseDate: model.CleanText(draft.TargetReleaseDate),
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return appendItem(projects, p), p.ID
}

// AddSong appends a new song to the project at path.ProjectID
func AddSong(projects []model.Project, path Path, draft model.Song, ids model.IDSource) ([]model.Project, string) {
	if draft.Validate() != nil {
		return projects, ""
	}
	var id string
	out, ok := editProject(projects, path.ProjectID, func(p model.Project) (model.Project, bool) {
		s := model.Song{
			ID:         ids.NewID(),
			ProjectID:  p.ID,
			Title:      model.CleanText(draft.Title),
			BPM:        model.CleanText(draft.BPM),
			Key:        model.CleanText(draft.Key),
			Structure:  draft.Structure,
			Status:     draft.Status,
			References: prompt.CleanList(draft.References),
		}
		if s.Status == "" {
			s.Status = model.StatusDraft
		}
		id = s.ID
		p.Songs = appendItem(p.Songs, s)
		return p, true
	})
	if !ok {
		return projects, ""
	}
	return out, id
}

// AddVersion appends a new version to the song at path. The version
// snapshots the builder: its style prompt, lyric outline, meta tags, tempo,
// key and a copy of the fields themselves. Values already set on the draft
// win over the snapshot.
func AddVersion(projects []model.Project, path Path, draft model.Version, builder model.BuilderFields, ids model.IDSource, now time.Time) ([]model.Project, string) {
	if draft.Validate() != nil {
		return projects, ""
	}
	var id string
	out, ok := editSong(projects, path, func(s model.Song) (model.Song, bool) {
		v := newVersion(s, draft, builder.Clone(), now)
		v.ID = ids.NewID()
		id = v.ID
		s.Versions = appendItem(s.Versions, v)
		return s, true
	})
	if !ok {
		return projects, ""
	}
	return out, id
}

func newVersion(s model.Song, draft model.Version, b model.BuilderFields, now time.Time) model.Version {
	v := model.Version{
		SongID:         s.ID,
		Label:          model.CleanText(draft.Label),
		Seed:           model.CleanText(draft.Seed),
		BPM:            firstNonEmpty(draft.BPM, b.Tempo, s.BPM),
		Key:            firstNonEmpty(draft.Key, b.Key, s.Key),
		Duration:       model.CleanText(draft.Duration),
		StructureNotes: draft.StructureNotes,
		StylePrompt:    draft.StylePrompt,
		LyricOutline:   draft.LyricOutline,
		MetaTags:       prompt.CleanList(draft.MetaTags),
		LUFS:           cloneFloat(draft.LUFS),
		TruePeak:       cloneFloat(draft.TruePeak),
		FinalURL:       model.CleanText(draft.FinalURL),
		QA:             model.NewQAMap(),
		Status:         draft.Status,
		CreatedAt:      now,
		Builder:        &b,
	}
	if v.Label == "" {
		v.Label = model.NextVersionLabel(s.Versions)
	}
	if v.StylePrompt == "" {
		v.StylePrompt = prompt.StylePrompt(b)
	}
	if v.LyricOutline == "" {
		v.LyricOutline = prompt.LyricOutline(b.Sections)
	}
	if len(v.MetaTags) == 0 {
		v.MetaTags = prompt.CleanList(b.MetaTags)
	}
	if v.Status == "" {
		v.Status = model.StatusDraft
	}
	if v.StylePrompt != "" {
		v.PromptHistory = []model.PromptSnapshot{{At: now, Prompt: v.StylePrompt}}
	}
	v.Timeline = []model.TimelineEntry{{At: now, Stage: model.StagePrompt, Note: "version created"}}
	return v
}

// AddTake appends a new take to the version at path
func AddTake(projects []model.Project, path Path, draft model.Take, ids model.IDSource) ([]model.Project, string) {
	if draft.Validate() != nil {
		return projects, ""
	}
	var id string
	out, ok := editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		t := model.Take{
			ID:        ids.NewID(),
			VersionID: v.ID,
			Label:     model.CleanText(draft.Label),
			ShareURL:  model.CleanText(draft.ShareURL),
			Notes:     draft.Notes,
			Selected:  draft.Selected,
		}
		id = t.ID
		v.Takes = appendItem(v.Takes, t)
		return v, true
	})
	if !ok {
		return projects, ""
	}
	return out, id
}

// AddRelease appends a new release plan to the version at path
func AddRelease(projects []model.Project, path Path, draft model.ReleasePlan, ids model.IDSource) ([]model.Project, string) {
	if draft.Validate() != nil {
		return projects, ""
	}
	var id string
	out, ok := editVersion(projects, path, func(v model.Version) (model.Version, bool) {
		r := model.ReleasePlan{
			ID:       ids.NewID(),
			Platform: model.CleanText(draft.Platform),
			URL:      model.CleanText(draft.URL),
			Date:     model.CleanText(draft.Date),
			Notes:    draft.Notes,
			Status:   draft.Status,
		}
		if r.Status == "" {
			r.Status = model.ReleaseDraft
		}
		id = r.ID
		v.Releases = appendItem(v.Releases, r)
		return v, true
	})
	if !ok {
		return projects, ""
	}
	return out, id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if c := model.CleanText(v); c != "" {
			return c
		}
	}
	return ""
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// cloneQA copies a QA map so toggles never write into shared state
func cloneQA(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
