package backup

import (
	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
	"github.com/samber/lo"
)

// Merge appends the incoming projects that do not collide with existing
// ones. A project is skipped when any id in its subtree is already in use.
// onProject, if set, is called for every incoming project in order. The
// existing slice is never modified.
func Merge(existing, incoming []model.Project, onProject func(p model.Project, added bool)) ([]model.Project, int) {
	used := lo.SliceToMap(tree.IDs(existing), func(id string) (string, bool) { return id, true })

	out := existing
	added := 0
	for _, p := range incoming {
		ids := tree.IDs([]model.Project{p})
		ok := !lo.SomeBy(ids, func(id string) bool { return used[id] })
		if ok {
			out = append(out[:len(out):len(out)], p)
			for _, id := range ids {
				used[id] = true
			}
			added++
		}
		if onProject != nil {
			onProject(p, ok)
		}
	}
	return out, added
}
