package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/util"
)

// Inspect gathers what can be learned about the file at path. Unreadable
// tags are not an error: the file name stands in for the title.
func Inspect(path string) (*FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	info, err := ReadTags(path)
	if err != nil {
		util.DebugLog("no tags in %s: %v", path, err)
		info = &FileInfo{Path: path}
	}

	if info.Title == "" {
		artist, title := ParseFilename(path)
		info.Title = title
		if info.Artist == "" {
			info.Artist = artist
		}
	}

	if d, err := ProbeDuration(path); err == nil {
		info.Duration = FormatDuration(d)
	} else {
		util.DebugLog("no duration for %s: %v", path, err)
	}
	return info, nil
}

// DraftTake builds a take draft from file information. The label is the
// title; the notes record where the take came from.
func DraftTake(info *FileInfo) model.Take {
	var notes []string
	if info.Artist != "" {
		notes = append(notes, "by "+info.Artist)
	}
	if info.FileType != "" && info.FileType != "UNKNOWN" {
		notes = append(notes, info.FileType)
	}
	if info.Duration != "" {
		notes = append(notes, info.Duration)
	}
	if info.BPM != "" {
		notes = append(notes, info.BPM+" bpm")
	}
	if info.Key != "" {
		notes = append(notes, "key "+info.Key)
	}
	if mode := ModeHint(info.Title); mode != "" {
		notes = append(notes, string(mode))
	}
	notes = append(notes, fmt.Sprintf("from %s", filepath.Base(info.Path)))

	return model.Take{
		Label: CleanLabel(info.Title),
		Notes: strings.Join(notes, ", "),
	}
}
