package tree

import (
	"testing"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	projects []model.Project
	ids      *model.SequenceSource
	a, b     Path // version paths in project A and project B
	takeA    Path
	release  Path
}

// newFixture builds two projects, each with one song and one version
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ids: &model.SequenceSource{Prefix: "t"}}

	var pa, pb, sa, sb, va, vb, take, rel string
	f.projects, pa = AddProject(nil, model.Project{Name: "A"}, f.ids, now)
	f.projects, pb = AddProject(f.projects, model.Project{Name: "B"}, f.ids, now)
	f.projects, sa = AddSong(f.projects, Path{ProjectID: pa}, model.Song{Title: "X"}, f.ids)
	f.projects, sb = AddSong(f.projects, Path{ProjectID: pb}, model.Song{Title: "Y"}, f.ids)

	f.projects, va = AddVersion(f.projects, Path{ProjectID: pa, SongID: sa}, model.Version{}, model.DefaultBuilder(), f.ids, now)
	f.projects, vb = AddVersion(f.projects, Path{ProjectID: pb, SongID: sb}, model.Version{}, model.DefaultBuilder(), f.ids, now)
	f.a = Path{ProjectID: pa, SongID: sa, VersionID: va}
	f.b = Path{ProjectID: pb, SongID: sb, VersionID: vb}

	f.projects, take = AddTake(f.projects, f.a, model.Take{Label: "take 1"}, f.ids)
	f.projects, rel = AddRelease(f.projects, f.a, model.ReleasePlan{Platform: "Bandcamp"}, f.ids)
	f.takeA = f.a.Item(take)
	f.release = f.a.Item(rel)

	for _, id := range []string{pa, pb, sa, sb, va, vb, take, rel} {
		require.NotEmpty(t, id)
	}
	return f
}

func TestAddProjectRequiresName(t *testing.T) {
	ids := &model.SequenceSource{}
	projects, id := AddProject(nil, model.Project{Name: "  "}, ids, now)
	assert.Empty(t, id)
	assert.Nil(t, projects)

	projects, id = AddProject(projects, model.Project{Name: " Night Drive ", TargetReleaseDate: "2025-03-01"}, ids, now)
	require.Len(t, projects, 1)
	assert.Equal(t, id, projects[0].ID)
	assert.Equal(t, "Night Drive", projects[0].Name)
	assert.Equal(t, now, projects[0].CreatedAt)
}

func TestCreateAppendsAndSetsParent(t *testing.T) {
	f := newFixture(t)

	p, ok := FindProject(f.projects, f.a.ProjectID)
	require.True(t, ok)
	require.Len(t, p.Songs, 1)
	assert.Equal(t, p.ID, p.Songs[0].ProjectID)
	assert.Equal(t, model.StatusDraft, p.Songs[0].Status)

	v, ok := FindVersion(f.projects, f.a)
	require.True(t, ok)
	assert.Equal(t, f.a.SongID, v.SongID)
	assert.Equal(t, "v1.0.0", v.Label)
	require.Len(t, v.Takes, 1)
	assert.Equal(t, v.ID, v.Takes[0].VersionID)
	assert.Equal(t, model.ReleaseDraft, v.Releases[0].Status)

	f.projects, _ = AddVersion(f.projects, f.a.Song(f.a.SongID), model.Version{}, model.BuilderFields{}, f.ids, now)
	s, _ := FindSong(f.projects, f.a)
	require.Len(t, s.Versions, 2)
	assert.Equal(t, "v1.1.0", s.Versions[1].Label, "new versions go last")
}

func TestAddVersionSnapshotsBuilder(t *testing.T) {
	ids := &model.SequenceSource{}
	projects, pid := AddProject(nil, model.Project{Name: "A"}, ids, now)
	projects, sid := AddSong(projects, Path{ProjectID: pid}, model.Song{Title: "X", Key: "D minor"}, ids)

	builder := model.BuilderFields{
		Genre:    "Techno",
		Tempo:    "132",
		Sections: []string{"Drop", "Intro"},
		MetaTags: []string{"Punchy Kick"},
	}
	projects, vid := AddVersion(projects, Path{ProjectID: pid, SongID: sid}, model.Version{Seed: "42"}, builder, ids, now)

	// Later builder edits must not leak into the snapshot
	builder.Genre = "Ambient"
	builder.Sections[0] = "Outro"

	v, ok := FindVersion(projects, Path{ProjectID: pid, SongID: sid, VersionID: vid})
	require.True(t, ok)
	assert.Equal(t, "[Genre=Techno]\n[Tempo=132bpm]", v.StylePrompt)
	assert.Equal(t, "[Intro]\n\n[Drop]", v.LyricOutline)
	assert.Equal(t, []string{"Punchy Kick"}, v.MetaTags)
	assert.Equal(t, "132", v.BPM)
	assert.Equal(t, "D minor", v.Key, "falls back to the song key")
	assert.Equal(t, "42", v.Seed)
	require.NotNil(t, v.Builder)
	assert.Equal(t, "Techno", v.Builder.Genre)
	assert.Equal(t, "Drop", v.Builder.Sections[0])

	assert.Equal(t, model.NewQAMap(), v.QA)
	require.Len(t, v.PromptHistory, 1)
	assert.Equal(t, v.StylePrompt, v.PromptHistory[0].Prompt)
	require.Len(t, v.Timeline, 1)
	assert.Equal(t, model.StagePrompt, v.Timeline[0].Stage)
}

func TestCreateDoesNotMutateDraft(t *testing.T) {
	f := newFixture(t)
	draft := model.Song{Title: "Z", References: []string{"ref a", "ref a", "ref b"}}
	f.projects, _ = AddSong(f.projects, Path{ProjectID: f.a.ProjectID}, draft, f.ids)

	assert.Empty(t, draft.ID)
	assert.Equal(t, []string{"ref a", "ref a", "ref b"}, draft.References)

	p, _ := FindProject(f.projects, f.a.ProjectID)
	assert.Equal(t, []string{"ref a", "ref b"}, p.Songs[1].References)
}

func TestCreateUnderMissingParentIsNoop(t *testing.T) {
	f := newFixture(t)
	before := f.projects

	out, id := AddSong(f.projects, Path{ProjectID: "missing"}, model.Song{Title: "Z"}, f.ids)
	assert.Empty(t, id)
	assert.Same(t, &before[0], &out[0])

	out, id = AddTake(f.projects, f.a.Version("missing"), model.Take{Label: "t"}, f.ids)
	assert.Empty(t, id)
	assert.Same(t, &before[0], &out[0])

	out, id = AddRelease(f.projects, f.a, model.ReleasePlan{Platform: ""}, f.ids)
	assert.Empty(t, id, "empty platform is rejected")
	assert.Same(t, &before[0], &out[0])
}

func TestUpdateSharesUntouchedRecords(t *testing.T) {
	f := newFixture(t)
	before := f.projects
	snapshotA, _ := FindTake(before, f.takeA)

	out, ok := UpdateTake(f.projects, f.takeA, func(t model.Take) model.Take {
		t.Label = "keeper candidate"
		return t
	})
	require.True(t, ok)

	// The input is untouched
	unchanged, _ := FindTake(before, f.takeA)
	assert.Equal(t, snapshotA, unchanged)

	// Copies along the path
	assert.NotSame(t, &before[0], &out[0])
	assert.NotSame(t, &before[0].Songs[0], &out[0].Songs[0])
	assert.NotSame(t, &before[0].Songs[0].Versions[0].Takes[0], &out[0].Songs[0].Versions[0].Takes[0])

	// Shared off the path
	assert.Same(t, &before[1].Songs[0], &out[1].Songs[0], "sibling project subtree is shared")
	assert.Same(t, &before[0].Songs[0].Versions[0].Releases[0], &out[0].Songs[0].Versions[0].Releases[0],
		"sibling release list is shared")

	got, _ := FindTake(out, f.takeA)
	assert.Equal(t, "keeper candidate", got.Label)
	assert.Equal(t, f.takeA.ItemID, got.ID)
}

func TestUpdateKeepsIdentityAndChildren(t *testing.T) {
	f := newFixture(t)
	out, ok := UpdateProject(f.projects, f.a.ProjectID, func(p model.Project) model.Project {
		p.ID = "hijack"
		p.Songs = nil
		p.Notes = "mastering at Abbey"
		return p
	})
	require.True(t, ok)
	p, found := FindProject(out, f.a.ProjectID)
	require.True(t, found)
	assert.Equal(t, "mastering at Abbey", p.Notes)
	assert.Len(t, p.Songs, 1)

	out, ok = UpdateVersion(out, f.a, func(v model.Version) model.Version {
		v.PromptHistory = nil
		v.FinalURL = "https://example.com/final"
		return v
	})
	require.True(t, ok)
	v, _ := FindVersion(out, f.a)
	assert.Equal(t, "https://example.com/final", v.FinalURL)
	assert.Len(t, v.PromptHistory, 1)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	f := newFixture(t)
	out, ok := UpdateSong(f.projects, f.a, func(s model.Song) model.Song {
		s.Status = model.StatusMastering
		return s
	})
	assert.False(t, ok)
	assert.Same(t, &f.projects[0], &out[0])

	_, ok = UpdateVersion(f.projects, f.a, func(v model.Version) model.Version {
		v.Status = model.StatusMastering
		return v
	})
	assert.True(t, ok)
}

func TestMissingPathIsNoop(t *testing.T) {
	f := newFixture(t)
	in := f.projects
	identity := func(t model.Take) model.Take { return t }

	cases := map[string]func() ([]model.Project, bool){
		"update project": func() ([]model.Project, bool) {
			return UpdateProject(in, "nope", func(p model.Project) model.Project { return p })
		},
		"update take in wrong version": func() ([]model.Project, bool) {
			return UpdateTake(in, f.b.Item(f.takeA.ItemID), identity)
		},
		"delete song":    func() ([]model.Project, bool) { return DeleteSong(in, f.a.Song("nope")) },
		"delete version": func() ([]model.Project, bool) { return DeleteVersion(in, f.a.Version("nope")) },
		"delete take":    func() ([]model.Project, bool) { return DeleteTake(in, f.a.Item("nope")) },
		"delete release": func() ([]model.Project, bool) { return DeleteRelease(in, f.b.Item(f.release.ItemID)) },
		"toggle qa":      func() ([]model.Project, bool) { return ToggleQA(in, f.a.Version("nope"), "true-peak") },
		"toggle unknown": func() ([]model.Project, bool) { return ToggleQA(in, f.a, "vibes") },
		"toggle keeper":  func() ([]model.Project, bool) { return ToggleKeeper(in, f.a.Item("nope"), false) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			out, ok := fn()
			assert.False(t, ok)
			require.Len(t, out, len(in))
			assert.Same(t, &in[0], &out[0], "input slice must be returned as is")
		})
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	p, _ := FindProject(f.projects, f.a.ProjectID)

	var descendants []string
	for _, s := range p.Songs {
		descendants = append(descendants, s.ID)
		for _, v := range s.Versions {
			descendants = append(descendants, v.ID)
			for _, tk := range v.Takes {
				descendants = append(descendants, tk.ID)
			}
			for _, r := range v.Releases {
				descendants = append(descendants, r.ID)
			}
		}
	}
	require.Len(t, descendants, 4)

	out, ok := DeleteProject(f.projects, f.a.ProjectID)
	require.True(t, ok)
	require.Len(t, out, 1)

	for _, id := range append(descendants, f.a.ProjectID) {
		_, found := Locate(out, id)
		assert.False(t, found, "%s survived the delete", id)
	}
	for _, proj := range out {
		for _, s := range proj.Songs {
			assert.NotEqual(t, f.a.ProjectID, s.ProjectID, "orphaned song")
		}
	}
	// The other project is intact
	_, found := Locate(out, f.b.VersionID)
	assert.True(t, found)
}

func TestCreateThenDeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	before := f.projects

	t.Run("project", func(t *testing.T) {
		out, id := AddProject(before, model.Project{Name: "C"}, f.ids, now)
		out, ok := DeleteProject(out, id)
		require.True(t, ok)
		assert.Equal(t, before, out)
	})
	t.Run("song", func(t *testing.T) {
		out, id := AddSong(before, Path{ProjectID: f.b.ProjectID}, model.Song{Title: "Z"}, f.ids)
		out, ok := DeleteSong(out, Path{ProjectID: f.b.ProjectID, SongID: id})
		require.True(t, ok)
		assert.Equal(t, before, out)
	})
	t.Run("version", func(t *testing.T) {
		out, id := AddVersion(before, f.b.Song(f.b.SongID), model.Version{}, model.DefaultBuilder(), f.ids, now)
		out, ok := DeleteVersion(out, f.b.Version(id))
		require.True(t, ok)
		assert.Equal(t, before, out)
	})
	t.Run("take", func(t *testing.T) {
		out, id := AddTake(before, f.b, model.Take{Label: "t"}, f.ids)
		out, ok := DeleteTake(out, f.b.Item(id))
		require.True(t, ok)
		assert.Equal(t, before, out)
	})
	t.Run("release", func(t *testing.T) {
		out, id := AddRelease(before, f.a, model.ReleasePlan{Platform: "Spotify"}, f.ids)
		out, ok := DeleteRelease(out, f.a.Item(id))
		require.True(t, ok)
		assert.Equal(t, before, out)
	})
}

func TestToggleQAInvolution(t *testing.T) {
	f := newFixture(t)
	orig, _ := FindVersion(f.projects, f.a)

	once, ok := ToggleQA(f.projects, f.a, "lufs-target")
	require.True(t, ok)
	v1, _ := FindVersion(once, f.a)
	assert.True(t, v1.QA["lufs-target"])
	assert.False(t, orig.QA["lufs-target"], "the input map is not written to")

	twice, ok := ToggleQA(once, f.a, "lufs-target")
	require.True(t, ok)
	v2, _ := FindVersion(twice, f.a)
	assert.Equal(t, orig.QA, v2.QA)
}

func TestToggleKeeper(t *testing.T) {
	f := newFixture(t)
	var second string
	f.projects, second = AddTake(f.projects, f.a, model.Take{Label: "take 2"}, f.ids)
	secondPath := f.a.Item(second)

	t.Run("permissive allows several keepers", func(t *testing.T) {
		out, _ := ToggleKeeper(f.projects, f.takeA, false)
		out, _ = ToggleKeeper(out, secondPath, false)
		v, _ := FindVersion(out, f.a)
		assert.Len(t, v.SelectedTakes(), 2)
	})

	t.Run("exclusive keeps one", func(t *testing.T) {
		out, _ := ToggleKeeper(f.projects, f.takeA, true)
		out, _ = ToggleKeeper(out, secondPath, true)
		v, _ := FindVersion(out, f.a)
		kept := v.SelectedTakes()
		require.Len(t, kept, 1)
		assert.Equal(t, second, kept[0].ID)

		out, _ = ToggleKeeper(out, secondPath, true)
		v, _ = FindVersion(out, f.a)
		assert.Empty(t, v.SelectedTakes(), "unselecting leaves no keeper")
	})
}

func TestAppendLogs(t *testing.T) {
	f := newFixture(t)
	later := now.Add(time.Hour)

	out, ok := AppendPromptHistory(f.projects, f.a, "[Genre=House]", later)
	require.True(t, ok)
	_, ok = AppendPromptHistory(out, f.a, "[Genre=House]", later)
	assert.False(t, ok, "repeat of the latest prompt is skipped")
	_, ok = AppendPromptHistory(out, f.a, "   ", later)
	assert.False(t, ok)

	out, ok = AppendTimeline(out, f.a, model.TimelineEntry{At: later, Stage: model.StageMastering, Note: "sent to mastering"})
	require.True(t, ok)
	_, ok = AppendTimeline(out, f.a, model.TimelineEntry{At: later, Stage: "party"})
	assert.False(t, ok)

	v, _ := FindVersion(out, f.a)
	require.Len(t, v.PromptHistory, 2)
	assert.Equal(t, "[Genre=House]", v.PromptHistory[1].Prompt)
	require.Len(t, v.Timeline, 2)
	assert.Equal(t, model.StageMastering, v.Timeline[1].Stage)

	orig, _ := FindVersion(f.projects, f.a)
	assert.Len(t, orig.PromptHistory, 1, "input history untouched")
}

func TestLocate(t *testing.T) {
	f := newFixture(t)

	p, ok := Locate(f.projects, f.takeA.ItemID)
	require.True(t, ok)
	assert.Equal(t, f.takeA, p)

	p, ok = Locate(f.projects, f.b.VersionID)
	require.True(t, ok)
	assert.Equal(t, f.b, p)

	_, ok = Locate(f.projects, "")
	assert.False(t, ok)
}

func TestIDsTreeOrder(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t,
		[]string{"t-1", "t-3", "t-5", "t-7", "t-8", "t-2", "t-4", "t-6"},
		IDs(f.projects))
	assert.Empty(t, IDs(nil))
}

func TestRelinkRestoresParentIDs(t *testing.T) {
	f := newFixture(t)
	s := &f.projects[0].Songs[0]
	s.ProjectID = "elsewhere"
	s.Versions[0].SongID = ""
	s.Versions[0].Takes[0].VersionID = "v-missing"

	projects := Relink(f.projects)
	song := projects[0].Songs[0]
	assert.Equal(t, f.a.ProjectID, song.ProjectID)
	assert.Equal(t, f.a.SongID, song.Versions[0].SongID)
	assert.Equal(t, f.a.VersionID, song.Versions[0].Takes[0].VersionID)
	assert.Empty(t, Relink(nil))
}

func TestCheckNamesFirstInvalidRecord(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, Check(f.projects))
	require.NoError(t, Check(nil))

	f.projects[1].Songs[0].Status = "bogus"
	f.projects[0].Songs[0].Versions[0].Releases[0].Platform = " "

	err := Check(f.projects)
	require.ErrorIs(t, err, util.ErrInvalidInput)
	assert.Contains(t, err.Error(), "release "+f.release.ItemID)
}
