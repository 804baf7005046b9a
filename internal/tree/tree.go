// Package tree applies edits to the project → song → version → take/release
// hierarchy without mutating it. Each edit copies only the slices and records
// on the path to the addressed record; everything else is shared with the
// input. An edit addressed at a path that does not exist returns the input
// slice itself and false.
//
// Updater functions receive a copy of the record. They may reassign fields
// but must not write into slices or maps they did not allocate.
package tree

import (
	"slices"

	"github.com/samber/lo"
)

// Path addresses a record in the hierarchy. Unused trailing parts are left empty.
type Path struct {
	ProjectID string
	SongID    string
	VersionID string
	ItemID    string // take or release plan id
}

// Song returns the path of a song within the project of p
func (p Path) Song(songID string) Path {
	return Path{ProjectID: p.ProjectID, SongID: songID}
}

// Version returns the path of a version within the song of p
func (p Path) Version(versionID string) Path {
	return Path{ProjectID: p.ProjectID, SongID: p.SongID, VersionID: versionID}
}

// Item returns the path of a take or release plan within the version of p
func (p Path) Item(itemID string) Path {
	return Path{ProjectID: p.ProjectID, SongID: p.SongID, VersionID: p.VersionID, ItemID: itemID}
}

// updateByID replaces the element with the given id by fn's result.
// The returned slice is a fresh copy when fn reports a change.
func updateByID[T any](items []T, id string, idOf func(T) string, fn func(T) (T, bool)) ([]T, bool) {
	for i, item := range items {
		if idOf(item) != id {
			continue
		}
		updated, ok := fn(item)
		if !ok {
			return items, false
		}
		out := slices.Clone(items)
		out[i] = updated
		return out, true
	}
	return items, false
}

// removeByID returns a copy of items without the element with the given id
func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	i := slices.IndexFunc(items, func(item T) bool { return idOf(item) == id })
	if i < 0 {
		return items, false
	}
	if len(items) == 1 {
		return nil, true
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

// appendItem returns a copy of items with item at the end
func appendItem[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	return lo.Find(items, func(item T) bool { return idOf(item) == id })
}
