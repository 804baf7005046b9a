package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/franz/music-notebook/internal/util"
)

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// lookPath and runProbe are swapped in tests
var (
	lookPath = exec.LookPath
	runProbe = func(path string) ([]byte, error) {
		return exec.Command("ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", path).Output()
	}
	runVersion = func(ctx context.Context) ([]byte, error) {
		return exec.CommandContext(ctx, "ffprobe", "-version").Output()
	}
)

// FFprobeVersion returns the version ffprobe reports about itself, or
// util.ErrNotFound when it is not installed
func FFprobeVersion(ctx context.Context) (string, error) {
	if !FFprobeAvailable() {
		return "", util.ErrNotFound
	}
	out, err := runVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("ffprobe -version: %w", err)
	}
	// ffprobe version 6.1.1 Copyright (c) ...
	line, _, _ := strings.Cut(string(out), "\n")
	if fields := strings.Fields(line); len(fields) >= 3 && fields[1] == "version" {
		return fields[2], nil
	}
	return "unknown", nil
}

// FFprobeAvailable reports whether ffprobe is on PATH
func FFprobeAvailable() bool {
	_, err := lookPath("ffprobe")
	return err == nil
}

// ProbeDuration asks ffprobe for the playing time of the file at path.
// It returns util.ErrNotFound when ffprobe is not installed.
func ProbeDuration(path string) (time.Duration, error) {
	if !FFprobeAvailable() {
		return 0, util.ErrNotFound
	}

	output, err := runProbe(path)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return 0, fmt.Errorf("ffprobe failed: %s", string(exitErr.Stderr))
		}
		return 0, fmt.Errorf("ffprobe execution failed: %w", err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (time.Duration, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	secs, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration: %w", util.ErrCorrupt)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// FormatDuration renders d as m:ss, rounded to the second
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
