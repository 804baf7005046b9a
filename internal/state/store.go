// Package state owns the in-memory aggregate: the project tree, the prompt
// builder and the selection. A single Store instance is constructed by the
// caller and passed to whatever needs it; every change goes through it and
// is announced to its listeners.
package state

import (
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/franz/music-notebook/internal/model"
	"github.com/franz/music-notebook/internal/tree"
)

// State is the whole application state
type State struct {
	Projects  []model.Project
	Builder   model.BuilderFields
	Selection Selection
}

// Default is the state of a fresh notebook
func Default() State {
	return State{Builder: model.DefaultBuilder()}
}

// Listener is called with the new state after every applied change.
// Persistence registers one to serialize the state.
type Listener func(State) error

type listener struct {
	id int
	fn Listener
}

// Store holds the state and serializes changes to it. Listeners never see
// states out of order: when concurrent changes race, a listener may skip an
// intermediate state but always ends on the newest one. Listeners must not
// change the store they listen to.
type Store struct {
	mu        sync.Mutex
	state     State
	seq       uint64
	listeners []listener
	nextID    int

	notifyMu sync.Mutex
	notified uint64

	ids             model.IDSource
	now             func() time.Time
	exclusiveKeeper bool
}

// Option configures a Store
type Option func(*Store)

// WithIDSource sets the identifier generator (UUIDs by default)
func WithIDSource(ids model.IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithClock sets the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithExclusiveKeeper makes selecting a take clear the other keepers
func WithExclusiveKeeper(exclusive bool) Option {
	return func(s *Store) { s.exclusiveKeeper = exclusive }
}

// New creates a store holding initial, with its selection repaired
func New(initial State, opts ...Option) *Store {
	s := &Store{
		ids: model.UUIDSource{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	initial.Selection = RepairSelection(initial.Projects, initial.Selection)
	s.state = initial
	return s
}

// State returns the current state. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after each change and returns a
// function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Update applies fn to the state. When fn reports a change, the selection
// is repaired, the new state installed and the listeners notified in
// registration order. Listener errors are joined and returned; the change
// itself stays applied.
func (s *Store) Update(fn func(State) (State, bool)) error {
	s.mu.Lock()
	next, changed := fn(s.state)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	next.Selection = RepairSelection(next.Projects, next.Selection)
	s.state = next
	s.seq++
	seq := s.seq
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq < s.notified {
		return nil
	}
	s.notified = seq

	var errs []error
	for _, l := range listeners {
		if err := l.fn(next); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Selected returns the current selection as a tree path
func (s *Store) Selected() tree.Path {
	return s.State().Selection.Path()
}

// Select makes the record with the given id the active one. Selecting a
// take or release plan selects its version. Unknown ids are ignored.
func (s *Store) Select(id string) error {
	return s.Update(func(st State) (State, bool) {
		p, ok := tree.Locate(st.Projects, id)
		if !ok {
			return st, false
		}
		sel := Selection{ProjectID: p.ProjectID, SongID: p.SongID, VersionID: p.VersionID}
		if sel == st.Selection {
			return st, false
		}
		st.Selection = sel
		return st, true
	})
}

// UpdateBuilder applies fn to the prompt-builder fields
func (s *Store) UpdateBuilder(fn func(model.BuilderFields) model.BuilderFields) error {
	return s.Update(func(st State) (State, bool) {
		b := fn(st.Builder.Clone())
		if reflect.DeepEqual(b, st.Builder) {
			return st, false
		}
		st.Builder = b
		return st, true
	})
}

// ResetBuilder restores the default builder fields
func (s *Store) ResetBuilder() error {
	return s.UpdateBuilder(func(model.BuilderFields) model.BuilderFields {
		return model.DefaultBuilder()
	})
}

// ReplaceProjects swaps the whole tree, as done by a backup import
func (s *Store) ReplaceProjects(projects []model.Project) error {
	return s.Update(func(st State) (State, bool) {
		st.Projects = projects
		return st, true
	})
}

// edit wraps a tree operation on the project list
func (s *Store) edit(fn func([]model.Project) ([]model.Project, bool)) error {
	return s.Update(func(st State) (State, bool) {
		projects, ok := fn(st.Projects)
		if !ok {
			return st, false
		}
		st.Projects = projects
		return st, true
	})
}
