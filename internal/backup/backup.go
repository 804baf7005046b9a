// Package backup exports the notebook to a portable JSON or YAML document
// and reads it back, replacing or merging into the current tree.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/franz/music-notebook/internal/util"
	"gopkg.in/yaml.v3"
)

// DocumentVersion is the layout version written by Encode
const DocumentVersion = 1

// Format is a document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension; JSON unless the
// extension is .yaml or .yml
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a full export of the notebook
type Document struct {
	Version    int                  `json:"version" yaml:"version"`
	ExportedAt time.Time            `json:"exportedAt" yaml:"exportedAt"`
	Projects   []model.Project      `json:"projects" yaml:"projects"`
	Builder    *model.BuilderFields `json:"builder,omitempty" yaml:"builder,omitempty"`
}

// Encode writes doc to w
func Encode(w io.Writer, doc Document, f Format) error {
	doc.Version = DocumentVersion
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("format %q: %w", f, util.ErrUnsupported)
	}
}

// Decode reads a document from r and checks it. Parent ids are set from the
// nesting, QA maps are normalized to the checklist and empty lists read back
// as nil. Records that could not have been created are rejected.
func Decode(r io.Reader, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %v: %w", err, util.ErrCorrupt)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %v: %w", err, util.ErrCorrupt)
		}
	default:
		return nil, fmt.Errorf("format %q: %w", f, util.ErrUnsupported)
	}

	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than %d: %w", doc.Version, DocumentVersion, util.ErrUnsupported)
	}
	doc.Projects = canonical(doc.Projects)
	if err := checkIDs(doc.Projects); err != nil {
		return nil, err
	}
	if err := tree.Check(doc.Projects); err != nil {
		return nil, fmt.Errorf("invalid record: %v: %w", err, util.ErrCorrupt)
	}
	return &doc, nil
}

// WriteFile exports doc to path in the format its extension names
func WriteFile(path string, doc Document) error {
	f, err := util.RetryableCreate(path, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, doc, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile imports the document at path
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// checkIDs rejects documents with missing or repeated ids at any level
func checkIDs(projects []model.Project) error {
	seen := make(map[string]bool)
	for _, id := range tree.IDs(projects) {
		if id == "" {
			return fmt.Errorf("record without id: %w", util.ErrCorrupt)
		}
		if seen[id] {
			return fmt.Errorf("duplicate id %s: %w", id, util.ErrCorrupt)
		}
		seen[id] = true
	}
	return nil
}

// canonical rewrites decoded projects in place: children point at their
// real parents, empty child lists become nil and QA maps hold exactly the
// checklist keys
func canonical(projects []model.Project) []model.Project {
	if len(projects) == 0 {
		return nil
	}
	tree.Relink(projects)
	for pi := range projects {
		p := &projects[pi]
		p.Songs = nilIfEmpty(p.Songs)
		for si := range p.Songs {
			s := &p.Songs[si]
			s.References = nilIfEmpty(s.References)
			s.Versions = nilIfEmpty(s.Versions)
			for vi := range s.Versions {
				v := &s.Versions[vi]
				v.QA = v.NormalizeQA()
				v.MetaTags = nilIfEmpty(v.MetaTags)
				v.Takes = nilIfEmpty(v.Takes)
				v.Releases = nilIfEmpty(v.Releases)
				v.PromptHistory = nilIfEmpty(v.PromptHistory)
				v.Timeline = nilIfEmpty(v.Timeline)
			}
		}
	}
	return projects
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
