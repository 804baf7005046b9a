package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{
		WithIDSource(&model.SequenceSource{Prefix: "t"}),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return New(Default(), opts...)
}

// seed builds project > song > version and returns their ids
func seed(t *testing.T, s *Store) (projectID, songID, versionID string) {
	t.Helper()
	var err error
	projectID, err = s.CreateProject(model.Project{Name: "Project A"})
	require.NoError(t, err)
	songID, err = s.CreateSong(model.Song{Title: "Song X"})
	require.NoError(t, err)
	versionID, err = s.CreateVersion(model.Version{})
	require.NoError(t, err)
	require.NotEmpty(t, versionID)
	return projectID, songID, versionID
}

func TestCreateSelectsNewRecords(t *testing.T) {
	s := newTestStore(t)
	p, song, v := seed(t, s)

	assert.Equal(t, Selection{ProjectID: p, SongID: song, VersionID: v}, s.State().Selection)
}

func TestCreateWithoutParentIsNoOp(t *testing.T) {
	s := newTestStore(t)
	calls := 0
	s.Subscribe(func(State) error { calls++; return nil })

	id, err := s.CreateSong(model.Song{Title: "Orphan"})
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = s.CreateVersion(model.Version{})
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = s.CreateTake(model.Take{Label: "t"})
	require.NoError(t, err)
	assert.Empty(t, id)

	assert.Empty(t, s.State().Projects)
	assert.Zero(t, calls, "no change means no notification")
}

func TestInvalidDraftIsNoOp(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateProject(model.Project{Name: "  "})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, s.State().Projects)
}

func TestCreateVersionSnapshotsBuilder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateBuilder(func(b model.BuilderFields) model.BuilderFields {
		b.Genre = "Synthwave"
		b.Tempo = "96"
		return b
	}))
	_, _, vid := seed(t, s)

	v, ok := tree.FindVersion(s.State().Projects, s.Selected())
	require.True(t, ok)
	assert.Equal(t, vid, v.ID)
	assert.Contains(t, v.StylePrompt, "[Genre=Synthwave]")
	assert.Equal(t, "96", v.BPM)

	// later builder edits leave the snapshot alone
	require.NoError(t, s.UpdateBuilder(func(b model.BuilderFields) model.BuilderFields {
		b.Genre = "Techno"
		return b
	}))
	v, _ = tree.FindVersion(s.State().Projects, s.Selected())
	assert.Contains(t, v.StylePrompt, "[Genre=Synthwave]")
	require.NotNil(t, v.Builder)
	assert.Equal(t, "Synthwave", v.Builder.Genre)
}

func TestDeleteRepairsSelection(t *testing.T) {
	s := newTestStore(t)
	p1, _, _ := seed(t, s)
	p2, err := s.CreateProject(model.Project{Name: "Project B"})
	require.NoError(t, err)
	assert.Equal(t, p2, s.State().Selection.ProjectID)

	require.NoError(t, s.DeleteProject(p2))
	sel := s.State().Selection
	assert.Equal(t, p1, sel.ProjectID)
	assert.NotEmpty(t, sel.SongID, "fallback selects the first song")
	assert.NotEmpty(t, sel.VersionID, "fallback selects the first version")

	require.NoError(t, s.DeleteProject(p1))
	assert.Equal(t, Selection{}, s.State().Selection)
}

func TestDeleteVersionFallsBackToSibling(t *testing.T) {
	s := newTestStore(t)
	_, _, v1 := seed(t, s)
	v2, err := s.CreateVersion(model.Version{})
	require.NoError(t, err)

	require.NoError(t, s.DeleteVersion(s.Selected()))
	assert.Equal(t, v1, s.State().Selection.VersionID)

	_, ok := tree.Locate(s.State().Projects, v2)
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	s := newTestStore(t)
	p1, song1, v1 := seed(t, s)
	_, err := s.CreateProject(model.Project{Name: "Project B"})
	require.NoError(t, err)

	require.NoError(t, s.Select(v1))
	assert.Equal(t, Selection{ProjectID: p1, SongID: song1, VersionID: v1}, s.State().Selection)

	tid, err := s.CreateTake(model.Take{Label: "take 1"})
	require.NoError(t, err)
	require.NoError(t, s.Select(p1))
	require.NoError(t, s.Select(tid))
	assert.Equal(t, v1, s.State().Selection.VersionID, "a take selects its version")

	before := s.State().Selection
	require.NoError(t, s.Select("nope"))
	assert.Equal(t, before, s.State().Selection)
}

func TestExclusiveKeeper(t *testing.T) {
	s := newTestStore(t, WithExclusiveKeeper(true))
	_, _, _ = seed(t, s)
	t1, err := s.CreateTake(model.Take{Label: "one", Selected: true})
	require.NoError(t, err)
	t2, err := s.CreateTake(model.Take{Label: "two", Selected: true})
	require.NoError(t, err)

	v, _ := tree.FindVersion(s.State().Projects, s.Selected())
	assert.Equal(t, []string{t2}, keepers(v))

	require.NoError(t, s.ToggleKeeper(s.Selected().Item(t1)))
	v, _ = tree.FindVersion(s.State().Projects, s.Selected())
	assert.Equal(t, []string{t1}, keepers(v))
}

func TestPermissiveKeeper(t *testing.T) {
	s := newTestStore(t)
	_, _, _ = seed(t, s)
	t1, _ := s.CreateTake(model.Take{Label: "one", Selected: true})
	t2, _ := s.CreateTake(model.Take{Label: "two"})

	require.NoError(t, s.ToggleKeeper(s.Selected().Item(t2)))
	v, _ := tree.FindVersion(s.State().Projects, s.Selected())
	assert.ElementsMatch(t, []string{t1, t2}, keepers(v))
}

func keepers(v model.Version) []string {
	var ids []string
	for _, t := range v.SelectedTakes() {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestToggleQAAndHistory(t *testing.T) {
	s := newTestStore(t)
	_, _, _ = seed(t, s)
	path := s.Selected()

	require.NoError(t, s.ToggleQA(path, "true-peak"))
	require.NoError(t, s.RecordPrompt(path, "[Genre=House]"))
	require.NoError(t, s.RecordPrompt(path, "[Genre=House]"))
	require.NoError(t, s.AddTimelineEntry(path, model.StageMastering, " sent to mastering "))

	v, _ := tree.FindVersion(s.State().Projects, path)
	assert.True(t, v.QA["true-peak"])
	assert.Equal(t, "[Genre=House]", v.PromptHistory[len(v.PromptHistory)-1].Prompt)
	last := v.Timeline[len(v.Timeline)-1]
	assert.Equal(t, model.StageMastering, last.Stage)
	assert.Equal(t, "sent to mastering", last.Note)
	assert.Equal(t, fixedNow, last.At)
}

func TestListenersReceiveEveryChange(t *testing.T) {
	s := newTestStore(t)
	var got []State
	unsubscribe := s.Subscribe(func(st State) error {
		got = append(got, st)
		return nil
	})

	seed(t, s)
	require.Len(t, got, 3)
	assert.Equal(t, s.State().Selection, got[2].Selection)

	unsubscribe()
	_, err := s.CreateProject(model.Project{Name: "Later"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListenerErrorsAreReturned(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("disk full")
	s.Subscribe(func(State) error { return boom })
	called := false
	s.Subscribe(func(State) error { called = true; return nil })

	id, err := s.CreateProject(model.Project{Name: "P"})
	assert.ErrorIs(t, err, boom)
	assert.True(t, called, "later listeners still run")
	assert.NotEmpty(t, id)
	assert.Len(t, s.State().Projects, 1, "the change stays applied")
}

func TestUpdateKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	p, _, _ := seed(t, s)

	require.NoError(t, s.UpdateProject(p, func(pr model.Project) model.Project {
		pr.ID = "hijack"
		pr.Name = "Renamed"
		pr.Songs = nil
		return pr
	}))
	got, ok := tree.FindProject(s.State().Projects, p)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Songs, 1)
}

func TestResetBuilder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateBuilder(func(b model.BuilderFields) model.BuilderFields {
		b.Mood = "dark"
		return b
	}))
	require.NoError(t, s.ResetBuilder())
	assert.Equal(t, model.DefaultBuilder(), s.State().Builder)
}

func TestNewRepairsInitialSelection(t *testing.T) {
	initial := Default()
	initial.Projects = []model.Project{{ID: "p1", Name: "P"}}
	initial.Selection = Selection{ProjectID: "gone", SongID: "gone"}

	s := New(initial)
	assert.Equal(t, Selection{ProjectID: "p1"}, s.State().Selection)
}

func TestConcurrentChangesNotifyInOrder(t *testing.T) {
	s := newTestStore(t)
	var seen []int
	s.Subscribe(func(st State) error {
		seen = append(seen, len(st.Projects))
		return nil
	})

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateProject(model.Project{Name: "P"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "listener saw an older state after a newer one")
	}
	assert.Equal(t, n, seen[len(seen)-1])
	assert.Len(t, s.State().Projects, n)
}
