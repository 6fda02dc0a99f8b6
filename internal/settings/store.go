// Package settings holds the user's dashboard preferences and keeps them in
// durable storage across sessions.
package settings

import (
	"fmt"
	"log"
	"sync"
)

// Store is the single process-wide settings instance. Every mutation is
// validated, applied under the lock and then persisted.
type Store struct {
	mu        sync.Mutex
	state     State
	storage   Storage
	listeners map[int]func(State)
	nextID    int
}

// Open loads persisted settings over the defaults. It never fails: unreadable
// or corrupt data falls back to the defaults and is logged.
func Open(storage Storage) *Store {
	s := &Store{
		state:     Defaults(),
		storage:   storage,
		listeners: make(map[int]func(State)),
	}
	if storage == nil {
		return s
	}

	data, err := storage.Load()
	if err != nil {
		log.Printf("settings: load failed, using defaults: %v", err)
		return s
	}
	state, err := Decode(data)
	if err != nil {
		log.Printf("settings: %v (using defaults)", err)
	}
	s.state = state
	return s
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update shallow-merges p into the current settings. An invalid result is
// rejected with a *ValidationError and nothing changes.
func (s *Store) Update(p Patch) (State, error) {
	return s.mutate(func(cur State) (State, error) {
		next := p.Apply(cur)
		if err := next.Validate(); err != nil {
			return cur, err
		}
		return next, nil
	})
}

// Reset restores the defaults, keeping the current dark mode.
func (s *Store) Reset() (State, error) {
	return s.mutate(func(cur State) (State, error) {
		next := Defaults()
		next.DarkMode = cur.DarkMode
		return next, nil
	})
}

// ToggleDarkMode flips dark mode only.
func (s *Store) ToggleDarkMode() (State, error) {
	return s.mutate(func(cur State) (State, error) {
		cur.DarkMode = !cur.DarkMode
		return cur, nil
	})
}

// Reload re-reads storage, for example after another process wrote the file.
// Listeners fire only when the state actually changed. The lock is held from
// load to assignment so a concurrent mutation is never overwritten by an
// older read.
func (s *Store) Reload() (State, error) {
	s.mu.Lock()
	if s.storage == nil {
		cur := s.state
		s.mu.Unlock()
		return cur, nil
	}
	data, err := s.storage.Load()
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}
	next, err := Decode(data)
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}
	changed := next != s.state
	s.state = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if changed {
		notify(listeners, next)
	}
	return next, nil
}

// Subscribe registers fn to run after every change. The returned func
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate commits the state produced by fn and persists it. A persist failure
// is returned but the in-memory state keeps the new value.
func (s *Store) mutate(fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}
	s.state = next
	persistErr := s.persistLocked()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, next)
	if persistErr != nil {
		return next, persistErr
	}
	return next, nil
}

func (s *Store) persistLocked() error {
	if s.storage == nil {
		return nil
	}
	data, err := Encode(s.state)
	if err != nil {
		return err
	}
	if err := s.storage.Save(data); err != nil {
		return fmt.Errorf("settings: persist: %w", err)
	}
	return nil
}

func (s *Store) snapshotListeners() []func(State) {
	out := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
