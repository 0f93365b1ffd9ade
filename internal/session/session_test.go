package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbot/opsbot/internal/metrics"
	"github.com/opsbot/opsbot/internal/storage"
	"github.com/opsbot/opsbot/internal/systems"
)

type echoAnswerer struct {
	seen []systems.Registry
}

func (e *echoAnswerer) Answer(_ context.Context, q string, reg systems.Registry) string {
	e.seen = append(e.seen, reg)
	return fmt.Sprintf("%d systems: %s", len(reg), q)
}

type memRecorder struct{ events []storage.Event }

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.events = append(m.events, ev)
	return nil
}
func (m *memRecorder) LoadInteractions() ([]storage.Event, error) { return m.events, nil }

func fixture() systems.Registry {
	return systems.Registry{
		{Name: "web1", Status: systems.StatusRunning, CPU: 45, Memory: 60},
		{Name: "db1", Status: systems.StatusStopped},
		{Name: "cache1", Status: systems.StatusRunning, CPU: 85, Memory: 90},
	}
}

func staticLoader(reg systems.Registry) Loader {
	return func() (systems.Registry, error) { return reg.Clone(), nil }
}

func newManager(t *testing.T, load Loader, opts ...Option) (*Manager, *echoAnswerer) {
	t.Helper()
	ans := &echoAnswerer{}
	seed := uint64(0)
	opts = append([]Option{WithRand(func() systems.Rand {
		seed++
		return rand.New(rand.NewPCG(seed, seed))
	})}, opts...)
	m, err := NewManager(load, ans, opts...)
	require.NoError(t, err)
	return m, ans
}

func TestNewManagerPropagatesLoadError(t *testing.T) {
	_, err := NewManager(func() (systems.Registry, error) {
		return nil, systems.ErrSourceMissing
	}, &echoAnswerer{})
	require.ErrorIs(t, err, systems.ErrSourceMissing)
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	a := m.Get("a")
	b := m.Get("b")
	assert.Same(t, a, m.Get("a"))
	assert.Equal(t, 2, m.Len())

	before := b.Registry()
	for i := 0; i < 30; i++ {
		a.Mutate()
	}
	assert.Equal(t, before, b.Registry())
	assert.Equal(t, fixture(), b.Registry())
}

func TestMutateKeepsPreviousValuesIntact(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	held := s.Registry()
	for i := 0; i < 30; i++ {
		s.Mutate()
	}
	assert.Equal(t, fixture(), held)
}

func TestReloadRestoresSource(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	for i := 0; i < 50; i++ {
		s.Mutate()
	}
	require.NoError(t, s.Reload())
	assert.Equal(t, fixture(), s.Registry())
}

func TestReloadFailureKeepsRegistry(t *testing.T) {
	calls := 0
	m, _ := newManager(t, func() (systems.Registry, error) {
		calls++
		if calls > 1 {
			return nil, systems.ErrFormat
		}
		return fixture(), nil
	})
	s := m.Get("a")
	err := s.Reload()
	require.ErrorIs(t, err, systems.ErrFormat)
	assert.Equal(t, fixture(), s.Registry())
}

func TestReloadUpdatesBaseForNewSessions(t *testing.T) {
	src := fixture()
	m, _ := newManager(t, func() (systems.Registry, error) { return src.Clone(), nil })
	src = src[:1]
	require.NoError(t, m.Get("a").Reload())
	assert.Len(t, m.Get("b").Registry(), 1)
}

func TestAskAppendsAndRecords(t *testing.T) {
	rec := &memRecorder{}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	m, ans := newManager(t, staticLoader(fixture()), WithRecorder(rec), WithClock(func() time.Time { return now }))
	s := m.Get("a")

	entry, ok := s.Ask(context.Background(), "  Which servers are down?  ")
	require.True(t, ok)
	assert.Equal(t, ChatEntry{Question: "Which servers are down?", Response: "3 systems: Which servers are down?", AskedAt: now}, entry)

	// full registry reaches the responder regardless of the question
	require.Len(t, ans.seen, 1)
	assert.Equal(t, fixture(), ans.seen[0])

	require.Len(t, rec.events, 1)
	assert.Equal(t, "a", rec.events[0].SessionID)
	assert.Equal(t, entry.Response, rec.events[0].Response)
}

func TestAskIgnoresBlankQuestion(t *testing.T) {
	m, ans := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	_, ok := s.Ask(context.Background(), "   ")
	assert.False(t, ok)
	assert.Empty(t, s.Transcript())
	assert.Empty(t, ans.seen)
}

func TestRecentIsNewestFirstAndTranscriptUnbounded(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	for i := 1; i <= 8; i++ {
		s.Ask(context.Background(), fmt.Sprintf("q%d", i))
	}

	recent := s.Recent(RecentLimit)
	require.Len(t, recent, 5)
	got := make([]string, 0, len(recent))
	for _, e := range recent {
		got = append(got, e.Question)
	}
	assert.Equal(t, []string{"q8", "q7", "q6", "q5", "q4"}, got)
	assert.Len(t, s.Transcript(), 8)
	assert.Len(t, s.Recent(0), 8)
}

func TestSnapshot(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	s.Ask(context.Background(), "hello")

	snap := s.Snapshot()
	assert.Equal(t, "a", snap.SessionID)
	assert.Equal(t, fixture(), snap.Systems)
	assert.Equal(t, 2, snap.Summary.Running)
	assert.Len(t, snap.Recent, 1)
}

func TestEachAndReset(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	m.Get("a")
	m.Get("b")

	ids := map[string]bool{}
	m.Each(func(s *Session) { ids[s.ID] = true })
	assert.Equal(t, map[string]bool{"a": true, "b": true}, ids)

	m.Reset("a")
	_, ok := m.Lookup("a")
	assert.False(t, ok)
	_, ok = m.Lookup("b")
	assert.True(t, ok)
}

func TestFilterUsesSessionRegistry(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()))
	s := m.Get("a")
	assert.Equal(t, []string{"db1"}, s.Filter("which are down").Names())
	assert.Equal(t, []string{"cache1"}, s.Filter("high cpu").Names())
}

func TestEvictIdleDropsStaleSessions(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	m, _ := newManager(t, staticLoader(fixture()),
		WithClock(func() time.Time { return now }),
		WithIdleTimeout(30*time.Minute))

	for i := 0; i < 500; i++ {
		m.Get(fmt.Sprintf("anon-%d", i))
	}
	now = now.Add(20 * time.Minute)
	active := m.Get("anon-7")
	assert.Zero(t, m.EvictIdle())

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 499, m.EvictIdle())
	assert.Equal(t, 1, m.Len())
	got, ok := m.Lookup("anon-7")
	require.True(t, ok)
	assert.Same(t, active, got)
}

func TestEvictIdleDisabledWithoutTimeout(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	m, _ := newManager(t, staticLoader(fixture()), WithClock(func() time.Time { return now }))
	m.Get("a")
	now = now.Add(24 * time.Hour)
	assert.Zero(t, m.EvictIdle())
	assert.Equal(t, 1, m.Len())
}

type stopEverything struct{}

func (stopEverything) Float64() float64 { return 0 }
func (stopEverything) IntN(int) int     { return 0 }

func TestMutateLeavesSourceGaugesAlone(t *testing.T) {
	m, _ := newManager(t, staticLoader(fixture()), WithRand(func() systems.Rand { return stopEverything{} }))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SystemsRunning))

	// both running systems stop, the stopped one restarts
	reg := m.Get("a").Mutate()
	assert.Equal(t, 1, systems.Summarize(reg).Running)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SystemsRunning))
}
