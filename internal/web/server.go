// Package web is the browser dashboard: an HTML page plus a small JSON API
// over the caller's session.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsbot/opsbot/internal/metrics"
	"github.com/opsbot/opsbot/internal/session"
	"github.com/opsbot/opsbot/internal/systems"
)

const sessionCookie = "opsbot_session"

// SampleQuestions are offered as one-click prompts on the page.
var SampleQuestions = []string{
	"Which servers are down?",
	"Show me the CPU usage of all systems",
	"Any service with memory usage over 80%?",
	"What's the status of the database server?",
	"Which systems are running normally?",
}

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type Server struct {
	sessions *session.Manager
	server   *http.Server
	addr     string
}

func NewServer(sessions *session.Manager, addr string) *Server {
	return &Server{sessions: sessions, addr: addr}
}

func (ws *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/systems", ws.handleSystems)
	mux.HandleFunc("/api/summary", ws.handleSummary)
	mux.HandleFunc("/api/charts", ws.handleCharts)
	mux.HandleFunc("/api/history", ws.handleHistory)
	mux.HandleFunc("/api/simulate", ws.handleSimulate)
	mux.HandleFunc("/api/reload", ws.handleReload)
	mux.HandleFunc("/api/ask", ws.handleAsk)
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/", ws.handleRoot)

	return mux
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (ws *Server) Start() error {
	ws.server = &http.Server{
		Addr:         ws.addr,
		Handler:      ws.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("starting dashboard", "addr", ws.addr)
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *Server) Stop(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ws.server.Shutdown(ctx)
}

// session returns the caller's session, issuing a cookie on first visit.
func (ws *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return ws.sessions.Get(c.Value)
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ws.sessions.Get(id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (ws *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": ws.sessions.Len()})
}

func (ws *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query().Get("q")
	sess := ws.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"intent":  systems.Classify(q).String(),
		"systems": sess.Filter(q),
	})
}

func (ws *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, ws.session(w, r).Summary())
}

type chartsResponse struct {
	Usage  systems.Bars          `json:"usage"`
	Status []systems.StatusCount `json:"status"`
}

func (ws *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	reg := ws.session(w, r).Registry()
	writeJSON(w, http.StatusOK, chartsResponse{
		Usage:  systems.UsageBars(reg),
		Status: systems.StatusDistribution(reg),
	})
}

func (ws *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	sess := ws.session(w, r)
	if r.URL.Query().Get("all") == "true" {
		writeJSON(w, http.StatusOK, sess.Transcript())
		return
	}
	writeJSON(w, http.StatusOK, sess.Recent(session.RecentLimit))
}

func (ws *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	sess := ws.session(w, r)
	sess.Mutate()
	slog.Debug("simulated update", "session", sess.ID)
	ws.respondSnapshot(w, r, sess)
}

func (ws *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	sess := ws.session(w, r)
	if err := sess.Reload(); err != nil {
		slog.Error("reload failed", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ws.respondSnapshot(w, r, sess)
}

type askRequest struct {
	Question string `json:"question"`
}

func (ws *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req askRequest
	if isForm(r) {
		req.Question = r.FormValue("question")
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request: "+err.Error())
		return
	}

	sess := ws.session(w, r)
	entry, ok := sess.Ask(r.Context(), req.Question)
	if isForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// respondSnapshot redirects browser form posts back to the page and returns
// the session snapshot to API clients.
func (ws *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if isForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
