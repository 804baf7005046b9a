package model

// Status is the workflow status of a song or version
type Status string

const (
	StatusDraft      Status = "draft"
	StatusCandidate  Status = "candidate"
	StatusApproved   Status = "approved"
	StatusRemastered Status = "remastered"
	StatusReleased   Status = "released"
	StatusLiveset    Status = "liveset"

	// Pipeline stage labels, only valid on versions
	StatusPrompt     Status = "prompt"
	StatusGeneration Status = "generation"
	StatusMastering  Status = "mastering"
	StatusRelease    Status = "release"
)

// SongStatuses lists the statuses a song may hold, in workflow order
var SongStatuses = []Status{
	StatusDraft,
	StatusCandidate,
	StatusApproved,
	StatusRemastered,
	StatusReleased,
	StatusLiveset,
}

// VersionStatuses lists the statuses a version may hold
var VersionStatuses = append(append([]Status{}, SongStatuses...),
	StatusPrompt,
	StatusGeneration,
	StatusMastering,
	StatusRelease,
)

// ValidForSong reports whether s may be stored on a song
func (s Status) ValidForSong() bool {
	for _, v := range SongStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether s may be stored on a version
func (s Status) Valid() bool {
	for _, v := range VersionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Stage is one of the four sequential phases a version moves through
type Stage string

const (
	StagePrompt     Stage = "prompt"
	StageGeneration Stage = "generation"
	StageMastering  Stage = "mastering"
	StageRelease    Stage = "release"
)

// Stages lists the workflow stages in order
var Stages = []Stage{StagePrompt, StageGeneration, StageMastering, StageRelease}

// Valid reports whether st is a known stage
func (st Stage) Valid() bool {
	for _, v := range Stages {
		if st == v {
			return true
		}
	}
	return false
}

// ReleaseStatus is the state of a release plan
type ReleaseStatus string

const (
	ReleaseDraft     ReleaseStatus = "draft"
	ReleaseScheduled ReleaseStatus = "scheduled"
	ReleaseReleased  ReleaseStatus = "released"
	ReleaseLive      ReleaseStatus = "live"
)

// ReleaseStatuses lists all release plan statuses
var ReleaseStatuses = []ReleaseStatus{ReleaseDraft, ReleaseScheduled, ReleaseReleased, ReleaseLive}

// Valid reports whether r is a known release status
func (r ReleaseStatus) Valid() bool {
	for _, v := range ReleaseStatuses {
		if r == v {
			return true
		}
	}
	return false
}
