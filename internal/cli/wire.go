package cli

import (
	"context"
	"log/slog"

	"github.com/opsbot/opsbot/internal/config"
	"github.com/opsbot/opsbot/internal/llm"
	"github.com/opsbot/opsbot/internal/narrator"
	"github.com/opsbot/opsbot/internal/scheduler"
	"github.com/opsbot/opsbot/internal/session"
	"github.com/opsbot/opsbot/internal/storage"
	"github.com/opsbot/opsbot/internal/systems"
)

type app struct {
	cfg *config.Config
}

func (a *app) loader() session.Loader {
	path := a.cfg.SystemsFilePath
	return func() (systems.Registry, error) { return systems.Load(path) }
}

// responder never fails: without a usable client every answer explains
// that the model is not configured.
func (a *app) responder() *narrator.Responder {
	client, err := llm.New(a.cfg)
	if err != nil {
		slog.Warn("language model unavailable", "provider", a.cfg.LLMProvider, "error", err)
		return narrator.New(nil)
	}
	return narrator.New(client)
}

func (a *app) sessions(opts ...session.Option) (*session.Manager, error) {
	if a.cfg.TranscriptLogPath != "" {
		rec, err := storage.NewFileRecorder(a.cfg.TranscriptLogPath)
		if err != nil {
			slog.Warn("transcript log disabled", "path", a.cfg.TranscriptLogPath, "error", err)
		} else {
			opts = append(opts, session.WithRecorder(rec))
		}
	}
	opts = append(opts, session.WithIdleTimeout(a.cfg.SessionIdleTimeout))
	mgr, err := session.NewManager(a.loader(), a.responder(), opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("systems loaded", "path", a.cfg.SystemsFilePath, "systems", len(mgr.Base()))
	return mgr, nil
}

// reapSchedule is how often idle sessions are looked for.
const reapSchedule = "@every 1m"

// background starts the session reaper and the optional simulation job.
// The returned stop func shuts down whatever was started.
func (a *app) background(mgr *session.Manager) (func(), error) {
	var started []*scheduler.Scheduler
	stop := func() {
		for _, s := range started {
			s.Stop()
		}
	}
	if a.cfg.SessionIdleTimeout > 0 {
		reaper := scheduler.New(reapSchedule, func(context.Context) error {
			if n := mgr.EvictIdle(); n > 0 {
				slog.Info("idle sessions evicted", "evicted", n, "sessions", mgr.Len())
			}
			return nil
		})
		if err := reaper.Start(); err != nil {
			return stop, err
		}
		started = append(started, reaper)
	}
	sim, err := a.autoSimulate(mgr)
	if err != nil {
		return stop, err
	}
	if sim != nil {
		started = append(started, sim)
	}
	return stop, nil
}

// autoSimulate starts the optional cron job that mutates every live
// session. It returns nil when no schedule is configured.
func (a *app) autoSimulate(mgr *session.Manager) (*scheduler.Scheduler, error) {
	if a.cfg.SimulateSchedule == "" {
		return nil, nil
	}
	s := scheduler.New(a.cfg.SimulateSchedule, func(context.Context) error {
		mgr.EvictIdle()
		n := 0
		mgr.Each(func(sess *session.Session) {
			sess.Mutate()
			n++
		})
		slog.Debug("scheduled simulation applied", "sessions", n)
		return nil
	})
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}
