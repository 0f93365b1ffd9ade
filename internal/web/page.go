package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/opsbot/opsbot/internal/session"
	"github.com/opsbot/opsbot/internal/systems"
)

const (
	viewTable  = "table"
	viewUsage  = "usage"
	viewStatus = "status"
)

type viewOption struct {
	Value, Label string
}

var views = []viewOption{
	{viewTable, "Table"},
	{viewUsage, "CPU/Memory Chart"},
	{viewStatus, "Status Chart"},
}

type pageData struct {
	View      string
	Views     []viewOption
	Snapshot  session.Snapshot
	Samples   []string
	Question  string
	ChartJSON template.JS
}

func (ws *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := r.URL.Query().Get("view")
	switch view {
	case viewUsage, viewStatus:
	default:
		view = viewTable
	}

	snap := ws.session(w, r).Snapshot()
	charts, err := json.Marshal(chartsResponse{
		Usage:  systems.UsageBars(snap.Systems),
		Status: systems.StatusDistribution(snap.Systems),
	})
	if err != nil {
		http.Error(w, "failed to encode charts", http.StatusInternalServerError)
		return
	}

	data := pageData{
		View:      view,
		Views:     views,
		Snapshot:  snap,
		Samples:   SampleQuestions,
		Question:  r.URL.Query().Get("q"),
		ChartJSON: template.JS(charts),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("failed to render dashboard", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
