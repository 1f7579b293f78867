// Package store owns the in-memory task collection. Every mutation goes
// through a Backend first and is committed locally only once the backend
// accepted it.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

var (
	// ErrNotFound means the id is not in the collection. It points at a stale
	// reference, callers usually report it as a warning.
	ErrNotFound = errors.New("task not found")
	// ErrBusy means another mutation of the same record has not finished.
	ErrBusy = errors.New("another change to this item is still in flight")
	// ErrInvalidDraft means the task would be rejected before reaching the backend.
	ErrInvalidDraft = errors.New("invalid task")
	// ErrUnsupported means the backend cannot do this, e.g. comments offline.
	ErrUnsupported = errors.New("not supported by this backend")
)

// Backend persists tasks. The issue tracker and the offline file both
// implement it.
type Backend interface {
	// Fetch returns every live task in display order.
	Fetch(ctx context.Context) ([]model.Task, error)
	// Create persists a new task and returns it with its identity filled in.
	Create(ctx context.Context, t model.Task) (model.Task, error)
	// Update replaces the whole stored record with t.
	Update(ctx context.Context, t model.Task) (model.Task, error)
	// Delete retires the task.
	Delete(ctx context.Context, t model.Task) error
}

// Observer is told about every committed change. prev and next are
// snapshots of the collection around the change.
type Observer interface {
	Changed(prev, next []model.Task, change model.Change)
}

type ObserverFunc func(prev, next []model.Task, change model.Change)

func (f ObserverFunc) Changed(prev, next []model.Task, change model.Change) {
	f(prev, next, change)
}

type Option func(*Store)

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	backend   Backend
	observers []Observer
	now       func() time.Time

	mu       sync.Mutex
	tasks    []model.Task
	inflight map[string]bool
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers another observer after construction.
func (s *Store) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// List returns a copy of the collection in display order.
func (s *Store) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// RefreshAll replaces the collection with the backend's current state.
func (s *Store) RefreshAll(ctx context.Context) error {
	fetched, err := s.backend.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	seen := make(map[string]bool, len(fetched))
	tasks := make([]model.Task, 0, len(fetched))
	for _, t := range fetched {
		if seen[t.ID] {
			logging.Logger.WithField("id", t.ID).Warn("dropping duplicate task from refresh")
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}

	s.mu.Lock()
	prev := s.snapshot()
	s.tasks = tasks
	next := s.snapshot()
	observers := s.observers
	s.mu.Unlock()

	logging.Logger.WithField("count", len(tasks)).Debug("task collection refreshed")
	notify(observers, prev, next, model.Change{Kind: model.ChangeReset})
	return nil
}

// Create validates the draft, persists it and appends the result.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	d.Title = strings.TrimSpace(d.Title)
	t := d.Task(s.now())
	if err := validate(t); err != nil {
		return model.Task{}, err
	}

	created, err := s.backend.Create(ctx, t)
	if err != nil {
		return model.Task{}, fmt.Errorf("create %q: %w", t.Title, err)
	}

	change := model.Change{Kind: model.ChangeCreated, ID: created.ID, To: created.Status}
	s.mu.Lock()
	prev := s.snapshot()
	if i := s.indexOf(created.ID); i >= 0 {
		// A refresh already picked the record up.
		change.Kind, change.From = model.ChangeUpdated, s.tasks[i].Status
		s.tasks[i] = created
	} else {
		s.tasks = append(s.tasks, created)
	}
	next := s.snapshot()
	observers := s.observers
	s.mu.Unlock()

	logging.Logger.WithFields(logrus.Fields{"id": created.ID, "status": created.Status}).Info("task created")
	notify(observers, prev, next, change)
	return created, nil
}

// Update merges p over the stored task and sends the whole merged record to
// the backend. It reports whether the status changed.
func (s *Store) Update(ctx context.Context, id string, p model.Patch) (model.Task, bool, error) {
	current, err := s.acquire(id)
	if err != nil {
		return model.Task{}, false, err
	}
	defer s.release(id)

	if p.Empty() {
		return current, false, nil
	}

	merged := p.Apply(current)
	merged.Title = strings.TrimSpace(merged.Title)
	merged.UpdatedAt = s.now()
	if err := validate(merged); err != nil {
		return model.Task{}, false, err
	}

	updated, err := s.backend.Update(ctx, merged)
	if err != nil {
		return model.Task{}, false, fmt.Errorf("update %s: %w", id, err)
	}

	s.mu.Lock()
	prev := s.snapshot()
	committed := false
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i] = updated
		committed = true
	}
	next := s.snapshot()
	observers := s.observers
	s.mu.Unlock()

	changed := current.Status != updated.Status
	if !committed {
		// A refresh replaced the collection while the request was out.
		logging.Logger.WithField("id", id).Warn("updated task no longer in collection")
		return updated, changed, nil
	}

	logging.Logger.WithFields(logrus.Fields{"id": id, "from": current.Status, "to": updated.Status}).Info("task updated")
	notify(observers, prev, next, model.Change{Kind: model.ChangeUpdated, ID: id, From: current.Status, To: updated.Status})
	return updated, changed, nil
}

// Delete retires the task in the backend and then drops it locally. Unknown
// ids are a no-op. When the backend fails the task stays in the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	current, err := s.acquire(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer s.release(id)

	if err := s.backend.Delete(ctx, current); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	s.mu.Lock()
	prev := s.snapshot()
	removed := false
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		removed = true
	}
	next := s.snapshot()
	observers := s.observers
	s.mu.Unlock()

	if removed {
		logging.Logger.WithField("id", id).Info("task deleted")
		notify(observers, prev, next, model.Change{Kind: model.ChangeDeleted, ID: id, From: current.Status})
	}
	return nil
}

// acquire marks id as in flight and returns its current value.
func (s *Store) acquire(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.inflight[id] {
		return model.Task{}, fmt.Errorf("%w: %s", ErrBusy, id)
	}
	s.inflight[id] = true
	return s.tasks[i], nil
}

func (s *Store) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []model.Task {
	return append([]model.Task(nil), s.tasks...)
}

func notify(observers []Observer, prev, next []model.Task, change model.Change) {
	for _, o := range observers {
		o.Changed(prev, next, change)
	}
}

func validate(t model.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	if _, err := model.ParseStatus(string(t.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if _, err := model.ParsePriority(string(t.Priority)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if _, err := model.ParseAssignee(string(t.Assignee)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if _, err := model.ParseDueDate(t.DueDate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return nil
}
