// Package audio turns rendered audio files into take drafts. Tags are read
// with dhowden/tag; ffprobe, when installed, adds the duration.
package audio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/franz/music-notebook/internal/model"
)

// FileInfo is what the notebook can learn from an audio file
type FileInfo struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Comment  string
	Format   string // tag format, e.g. ID3v2.4
	FileType string // container, e.g. MP3
	BPM      string
	Key      string
	Duration string // m:ss, empty when unknown
}

// raw tag keys per format carrying tempo and musical key
var (
	bpmKeys = []string{"TBPM", "tmpo", "BPM", "bpm"}
	keyKeys = []string{"TKEY", "INITIALKEY", "initialkey", "KEY"}
)

// ReadTags reads the tags of the file at path
func ReadTags(path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	info := &FileInfo{
		Path:     path,
		Title:    model.CleanText(m.Title()),
		Artist:   model.CleanText(m.Artist()),
		Album:    model.CleanText(m.Album()),
		Genre:    model.CleanText(m.Genre()),
		Comment:  model.CleanText(m.Comment()),
		Format:   string(m.Format()),
		FileType: string(m.FileType()),
	}
	if raw := m.Raw(); raw != nil {
		info.BPM = rawString(raw, bpmKeys)
		info.Key = rawString(raw, keyKeys)
	}
	return info, nil
}

// rawString returns the first non-empty raw tag among keys. Values come
// back as strings, ints or byte slices depending on the container.
func rawString(raw map[string]interface{}, keys []string) string {
	for _, k := range keys {
		val, ok := raw[k]
		if !ok {
			continue
		}
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case int:
			s = strconv.Itoa(v)
		case []byte:
			s = string(v)
		}
		if s = strings.TrimSpace(strings.Trim(s, "\x00")); s != "" && s != "0" {
			return s
		}
	}
	return ""
}
