package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/opsbot/opsbot/internal/metrics"
	"github.com/opsbot/opsbot/internal/storage"
	"github.com/opsbot/opsbot/internal/systems"
)

// Loader reads the registry from its source.
type Loader func() (systems.Registry, error)

type Answerer interface {
	Answer(ctx context.Context, question string, reg systems.Registry) string
}

type Option func(*Manager)

func WithRecorder(r storage.Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithRand sets the constructor for per-session random sources.
func WithRand(newRand func() systems.Rand) Option {
	return func(m *Manager) { m.newRand = newRand }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIdleTimeout makes EvictIdle drop sessions not fetched for d.
// Zero keeps sessions until Reset.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

type Manager struct {
	load      Loader
	responder Answerer
	recorder  storage.Recorder
	newRand   func() systems.Rand
	now       func() time.Time

	idleTimeout time.Duration

	mu       sync.RWMutex
	base     systems.Registry
	sessions map[string]*Session
}

// NewManager loads the source once. A load error means there is nothing
// to show and is returned as is.
func NewManager(load Loader, responder Answerer, opts ...Option) (*Manager, error) {
	m := &Manager{
		load:      load,
		responder: responder,
		newRand: func() systems.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	reg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load systems: %w", err)
	}
	m.base = reg
	metrics.ObserveSummary(systems.Summarize(reg))
	return m, nil
}

// Get returns the session for id, creating it from the loaded registry on
// first use.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s
	}
	s = &Session{ID: id, m: m, rng: m.newRand(), registry: m.base.Clone(), lastSeen: m.now()}
	m.sessions[id] = s
	return s
}

// EvictIdle drops sessions that nobody fetched within the idle timeout and
// returns how many were removed.
func (m *Manager) EvictIdle() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)

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

// Base is the registry new sessions start from.
func (m *Manager) Base() systems.Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.base.Clone()
}

func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Reset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Each calls fn for every live session.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	for _, s := range list {
		fn(s)
	}
}

// reload rereads the source and makes it the starting point for new sessions.
func (m *Manager) reload() (systems.Registry, error) {
	reg, err := m.load()
	if err != nil {
		return nil, fmt.Errorf("reload systems: %w", err)
	}
	metrics.Reloads.Inc()
	metrics.ObserveSummary(systems.Summarize(reg))
	m.mu.Lock()
	m.base = reg.Clone()
	m.mu.Unlock()
	return reg, nil
}
