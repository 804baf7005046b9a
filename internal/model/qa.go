package model

import "github.com/samber/lo"

// QAItem is one pass/fail gate tracked per version before release
type QAItem struct {
	ID    string
	Label string
}

// QAChecklist is the fixed release checklist. Its ids are the only keys a
// version's QA map may hold.
var QAChecklist = []QAItem{
	{ID: "lufs-target", Label: "Loudness hits the LUFS target"},
	{ID: "true-peak", Label: "True peak below -1 dBTP"},
	{ID: "key-bpm-logged", Label: "Key and BPM logged"},
	{ID: "lyrics-proofed", Label: "Lyrics proofread"},
	{ID: "stems-exported", Label: "Stems exported"},
	{ID: "artwork-ready", Label: "Artwork ready"},
}

// IsQAItem reports whether id belongs to the checklist
func IsQAItem(id string) bool {
	return lo.ContainsBy(QAChecklist, func(item QAItem) bool { return item.ID == id })
}

// NewQAMap returns a checklist map with every item unchecked
func NewQAMap() map[string]bool {
	return lo.SliceToMap(QAChecklist, func(item QAItem) (string, bool) { return item.ID, false })
}

// QAComplete reports whether every checklist item is checked
func (v Version) QAComplete() bool {
	return lo.EveryBy(QAChecklist, func(item QAItem) bool { return v.QA[item.ID] })
}

// HasFailingQA reports whether the QA map holds any false entry
func (v Version) HasFailingQA() bool {
	for _, ok := range v.QA {
		if !ok {
			return true
		}
	}
	return false
}

// NormalizeQA returns a copy of the QA map holding exactly the checklist keys.
// Missing keys default to false, unknown keys are dropped.
func (v Version) NormalizeQA() map[string]bool {
	m := NewQAMap()
	for id := range m {
		m[id] = v.QA[id]
	}
	return m
}
