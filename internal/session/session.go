// Package session holds per-user dashboard state: the user's own copy of
// the registry and the question/answer transcript.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/opsbot/opsbot/internal/metrics"
	"github.com/opsbot/opsbot/internal/storage"
	"github.com/opsbot/opsbot/internal/systems"
)

// RecentLimit is how many chat entries a shell shows by default.
const RecentLimit = 5

type ChatEntry struct {
	Question string    `json:"question"`
	Response string    `json:"response"`
	AskedAt  time.Time `json:"asked_at"`
}

// Snapshot is everything a shell needs to render one view.
type Snapshot struct {
	SessionID string           `json:"session_id"`
	Systems   systems.Registry `json:"systems"`
	Summary   systems.Summary  `json:"summary"`
	Recent    []ChatEntry      `json:"recent"`
}

type Session struct {
	ID string

	m          *Manager
	rng        systems.Rand
	mu         sync.Mutex
	registry   systems.Registry
	transcript []ChatEntry
	lastSeen   time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Registry() systems.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Clone()
}

func (s *Session) Summary() systems.Summary {
	return systems.Summarize(s.Registry())
}

func (s *Session) Filter(query string) systems.Registry {
	return systems.Filter(s.Registry(), query)
}

// Reload rereads the source. On failure the current registry is kept.
func (s *Session) Reload() error {
	reg, err := s.m.reload()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()
	slog.Info("registry reloaded", "session", s.ID, "systems", len(reg))
	return nil
}

// Mutate replaces the registry with a simulated next step.
func (s *Session) Mutate() systems.Registry {
	s.mu.Lock()
	s.registry = systems.Update(s.registry, s.rng)
	out := s.registry.Clone()
	s.mu.Unlock()

	metrics.Simulations.Inc()
	return out
}

// Ask answers question against the current registry and appends the
// exchange to the transcript. Blank questions are ignored.
func (s *Session) Ask(ctx context.Context, question string) (ChatEntry, bool) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatEntry{}, false
	}
	answer := s.m.responder.Answer(ctx, question, s.Registry())
	entry := ChatEntry{Question: question, Response: answer, AskedAt: s.m.now()}

	s.mu.Lock()
	s.transcript = append(s.transcript, entry)
	s.mu.Unlock()

	if s.m.recorder != nil {
		ev := storage.Event{Timestamp: entry.AskedAt, SessionID: s.ID, Question: question, Response: answer}
		if err := s.m.recorder.AppendInteraction(ev); err != nil {
			slog.Warn("failed to record transcript entry", "session", s.ID, "error", err)
		}
	}
	return entry, true
}

func (s *Session) Transcript() []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Recent returns up to n of the latest entries, newest first. The
// transcript itself is never trimmed.
func (s *Session) Recent(n int) []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.transcript) {
		n = len(s.transcript)
	}
	out := make([]ChatEntry, 0, n)
	for i := len(s.transcript) - 1; i >= len(s.transcript)-n; i-- {
		out = append(out, s.transcript[i])
	}
	return out
}

func (s *Session) Snapshot() Snapshot {
	reg := s.Registry()
	return Snapshot{
		SessionID: s.ID,
		Systems:   reg,
		Summary:   systems.Summarize(reg),
		Recent:    s.Recent(RecentLimit),
	}
}
