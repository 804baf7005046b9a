package backup

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)

func sampleProjects() []model.Project {
	lufs := -9.5
	return []model.Project{{
		ID: "p1", Name: "Neon Nights", CreatedAt: at, TargetReleaseDate: "2025-03-01",
		Songs: []model.Song{{
			ID: "s1", ProjectID: "p1", Title: "Night Drive", Status: model.StatusCandidate,
			References: []string{"Kavinsky"},
			Versions: []model.Version{{
				ID: "v1", SongID: "s1", Label: "v1.0.0", BPM: "96",
				StylePrompt: "[Genre=Synthwave]", LyricOutline: "[Intro]",
				LUFS: &lufs, QA: model.NewQAMap(), Status: model.StatusMastering, CreatedAt: at,
				Takes:         []model.Take{{ID: "t1", VersionID: "v1", Label: "take 1", Selected: true}},
				Releases:      []model.ReleasePlan{{ID: "r1", Platform: "Bandcamp", Date: "2025-02-01", Status: model.ReleaseScheduled}},
				PromptHistory: []model.PromptSnapshot{{At: at, Prompt: "[Genre=Synthwave]"}},
				Timeline:      []model.TimelineEntry{{At: at, Stage: model.StagePrompt, Note: "version created"}},
			}},
		}},
	}, {
		ID: "p2", Name: "Empty", CreatedAt: at,
	}}
}

func TestRoundTrip(t *testing.T) {
	builder := model.DefaultBuilder()
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, Document{ExportedAt: at, Projects: sampleProjects(), Builder: &builder}, f))

			doc, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, DocumentVersion, doc.Version)
			assert.Equal(t, sampleProjects(), doc.Projects)
			require.NotNil(t, doc.Builder)
			assert.Equal(t, builder, *doc.Builder)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"backup.json", "backup.yml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, Document{Projects: sampleProjects()}))

		doc, err := ReadFile(path)
		require.NoError(t, err, name)
		assert.Len(t, doc.Projects, 2, name)
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("a.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("backup"))
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"garbage", "{", util.ErrCorrupt},
		{"newer version", `{"version": 99}`, util.ErrUnsupported},
		{"duplicate id", `{"projects":[{"id":"a","name":"x"},{"id":"a","name":"y"}]}`, util.ErrCorrupt},
		{"nested duplicate", `{"projects":[{"id":"a","name":"x","songs":[{"id":"a","title":"s"}]}]}`, util.ErrCorrupt},
		{"missing id", `{"projects":[{"name":"x"}]}`, util.ErrCorrupt},
		{"empty project name", `{"projects":[{"id":"p","name":" "}]}`, util.ErrCorrupt},
		{"empty song title", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":""}]}]}`, util.ErrCorrupt},
		{"unknown song status", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":"t","status":"bogus"}]}]}`, util.ErrCorrupt},
		{"unknown version status", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":"t",
			"versions":[{"id":"v","status":"weird"}]}]}]}`, util.ErrCorrupt},
		{"empty take label", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":"t",
			"versions":[{"id":"v","takes":[{"id":"k","label":""}]}]}]}]}`, util.ErrCorrupt},
		{"empty release platform", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":"t",
			"versions":[{"id":"v","releases":[{"id":"r","platform":""}]}]}]}]}`, util.ErrCorrupt},
		{"unknown release status", `{"projects":[{"id":"p","name":"x","songs":[{"id":"s","title":"t",
			"versions":[{"id":"v","releases":[{"id":"r","platform":"Bandcamp","status":"scheduled-ish"}]}]}]}]}`, util.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeRelinksParents(t *testing.T) {
	doc := `{"projects":[{"id":"p","name":"P","songs":[{"id":"s","projectId":"ghost","title":"S",
		"versions":[{"id":"v","songId":"nope","takes":[{"id":"k","versionId":"zzz","label":"take 1"}]}]}]}]}`

	d, err := Decode(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	song := d.Projects[0].Songs[0]
	assert.Equal(t, "p", song.ProjectID)
	assert.Equal(t, "s", song.Versions[0].SongID)
	assert.Equal(t, "v", song.Versions[0].Takes[0].VersionID)
}

func TestDecodeNormalizesQA(t *testing.T) {
	doc := `
projects:
  - id: p
    name: P
    songs:
      - id: s
        title: S
        versions:
          - id: v
            qa:
              artwork-ready: true
              old-check: false
            takes: []
`
	d, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	v := d.Projects[0].Songs[0].Versions[0]
	assert.Len(t, v.QA, len(model.QAChecklist))
	assert.True(t, v.QA["artwork-ready"])
	assert.NotContains(t, v.QA, "old-check")
	assert.Nil(t, v.Takes)
}

func TestUnsupportedFormat(t *testing.T) {
	assert.ErrorIs(t, Encode(&bytes.Buffer{}, Document{}, "toml"), util.ErrUnsupported)
	_, err := Decode(strings.NewReader(""), "toml")
	assert.ErrorIs(t, err, util.ErrUnsupported)
}

func TestMerge(t *testing.T) {
	existing := sampleProjects()[:1]
	incoming := []model.Project{
		{ID: "p1", Name: "same id"},
		{ID: "p9", Name: "collides below", Songs: []model.Song{{ID: "s1", Title: "dup"}}},
		{ID: "p3", Name: "new"},
	}

	var seen []string
	var addedFlags []bool
	out, added := Merge(existing, incoming, func(p model.Project, ok bool) {
		seen = append(seen, p.ID)
		addedFlags = append(addedFlags, ok)
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"p1", "p9", "p3"}, seen)
	assert.Equal(t, []bool{false, false, true}, addedFlags)
	require.Len(t, out, 2)
	assert.Equal(t, "p3", out[1].ID)
	assert.Len(t, existing, 1, "existing slice untouched")
}

func TestMergeIncomingDuplicates(t *testing.T) {
	incoming := []model.Project{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}}
	out, added := Merge(nil, incoming, nil)
	assert.Equal(t, 1, added)
	assert.Equal(t, "first", out[0].Name)
}
