// Package tasks owns the authoritative in-memory task collection.
//
// A Store is built once per session with NewStore, which loads the
// collection through a Persister. Every successful mutation is handed back
// to the Persister before the call returns; failed calls never write.
package tasks

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persister stores and restores the whole collection as one snapshot.
// Implementations swallow their own failures: Load returns an empty
// collection when nothing usable is stored.
type Persister interface {
	Save(tasks []Task)
	Load() []Task
}

// minPrefixLen is the shortest id prefix Resolve accepts
const minPrefixLen = 6

// Store is the sole mutator of the task collection
type Store struct {
	mu      sync.RWMutex
	tasks   []Task
	persist Persister
	now     func() time.Time
	newID   func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function that assigns new task ids
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates a store and loads its collection from p
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		persist: p,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded := p.Load()
	s.tasks = make([]Task, 0, len(loaded))
	for _, t := range loaded {
		s.tasks = append(s.tasks, t.Clone())
	}
	return s
}

// timestamp drops the monotonic reading so stored times compare like persisted ones
func (s *Store) timestamp() time.Time {
	return s.now().Round(0)
}

func (s *Store) save() {
	snapshot := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		snapshot[i] = t.Clone()
	}
	s.persist.Save(snapshot)
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// touch refreshes UpdatedAt, never letting it fall behind CreatedAt
func (s *Store) touch(t *Task) {
	now := s.timestamp()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// uniqueID draws ids until one is not in use. Callers hold s.mu.
func (s *Store) uniqueID() (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique task id")
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be blank"}
	}
	return nil
}

// Create adds a pending task to the end of the collection
func (s *Store) Create(title, description string, due *time.Time) (Task, error) {
	if err := validateTitle(title); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueID()
	if err != nil {
		return Task{}, err
	}

	now := s.timestamp()
	task := Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if due != nil {
		d := *due
		task.DueDate = &d
	}
	s.tasks = append(s.tasks, task)
	s.save()

	return task.Clone(), nil
}

// List returns a copy of every task in insertion order
func (s *Store) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		tasks[i] = t.Clone()
	}
	return tasks
}

// Len returns the number of tasks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get retrieves a task by ID
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Update merges p into the task with the given id
func (s *Store) Update(id string, p Patch) (Task, error) {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return Task{}, err
		}
	}
	if p.Status != nil && !p.Status.IsValid() {
		return Task{}, &ValidationError{Field: "status", Reason: "unknown status " + string(*p.Status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(id, p)
}

// apply merges p into the stored task and persists. Callers hold s.mu.
func (s *Store) apply(id string, p Patch) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}

	t := s.tasks[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	s.touch(&t)

	s.tasks[i] = t
	s.save()
	return t.Clone(), nil
}

// SetStatus changes only the status of a task
func (s *Store) SetStatus(id string, status Status) (Task, error) {
	return s.Update(id, Patch{Status: &status})
}

// Toggle marks a completed task pending and any other task completed
func (s *Store) Toggle(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}

	next := StatusCompleted
	if s.tasks[i].Status == StatusCompleted {
		next = StatusPending
	}
	return s.apply(id, Patch{Status: &next})
}

// Delete removes a task and reports whether anything was removed
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.save()
	return true
}

// Resolve resolves a task identifier to its full ID.
// It checks an exact ID match first, then a unique ID prefix of at least
// minPrefixLen characters.
func (s *Store) Resolve(idOrPrefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(idOrPrefix); i >= 0 {
		return s.tasks[i].ID, nil
	}

	if len(idOrPrefix) >= minPrefixLen {
		var matches []string
		for _, t := range s.tasks {
			if strings.HasPrefix(t.ID, idOrPrefix) {
				matches = append(matches, t.ID)
			}
		}
		if len(matches) == 1 {
			return matches[0], nil
		}
		if len(matches) > 1 {
			return "", fmt.Errorf("%w: %s (matches %d tasks)", ErrAmbiguous, idOrPrefix, len(matches))
		}
	}

	return "", &NotFoundError{ID: idOrPrefix}
}
