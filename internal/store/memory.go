// internal/store/memory.go
//
// In-memory store of player sessions. Each browser session owns one
// game.Engine holding its rounds and statistics.
//
// Characteristics:
//   - Sessions keyed by session ID in a map.
//   - Map guarded by RWMutex; each Session serializes access to its engine.
//   - State is lost when the process restarts.
//   - Idle sessions can be evicted with Sweep. Get and GetOrCreate refresh a
//     session's idle clock while holding the map lock, so a session handed to
//     a request is not swept unless that request outlives the idle window.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/numberguess/internal/game"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one player's state. Engine and the mutable fields must only be
// touched inside Do.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *game.Engine
	name     string
	daily    bool // active round uses the daily source
	lastSeen time.Time
}

// NewSession wraps an engine in a session.
func NewSession(id string, e *game.Engine) *Session {
	return &Session{ID: id, engine: e, lastSeen: time.Now()}
}

// State is the mutable part of a session handed to Do callbacks.
type State struct {
	Engine *game.Engine
	Name   string // display name, already normalized
	Daily  bool   // active round is a daily round
}

// Do runs fn with exclusive access to the session and writes back Name/Daily.
func (s *Session) Do(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	st := &State{Engine: s.engine, Name: s.name, Daily: s.daily}
	err := fn(st)
	s.name, s.daily = st.Name, st.Daily
	return err
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store defines the session persistence interface.
type Store interface {
	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// GetOrCreate returns the session for id, creating it with create when missing.
	GetOrCreate(ctx context.Context, id string, create func() *Session) (*Session, error)

	// Sweep removes sessions idle since before cutoff and reports how many.
	Sweep(ctx context.Context, cutoff time.Time) int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) GetOrCreate(ctx context.Context, id string, create func() *Session) (*Session, error) {
	if s, err := m.Get(ctx, id); err == nil {
		return s, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		return s, nil
	}
	s := create()
	if s == nil {
		return nil, errors.New("create returned nil session")
	}
	s.ID = id
	m.sessions[id] = s
	return s, nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
