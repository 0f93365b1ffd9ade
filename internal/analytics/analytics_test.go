package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opsbot/opsbot/internal/narrator"
	"github.com/opsbot/opsbot/internal/storage"
)

func TestAnalyzeDay(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	events := []storage.Event{
		{Timestamp: day.Add(-time.Minute), SessionID: "old", Question: "which servers are down?"},
		{Timestamp: day.Add(time.Hour), SessionID: "a", Question: "Which servers are down?", Response: "db1"},
		{Timestamp: day.Add(2 * time.Hour), SessionID: "a", Question: "high cpu?", Response: "Error querying language model: timeout"},
		{Timestamp: day.Add(3 * time.Hour), SessionID: "b", Question: "hello", Response: "hi"},
		{Timestamp: day.Add(4 * time.Hour), SessionID: "b"},
		{Timestamp: day.Add(5 * time.Hour), SessionID: "c", Question: "anything running?", Response: narrator.UnavailableMessage},
		{Timestamp: day.Add(24 * time.Hour), SessionID: "next", Question: "running?"},
	}

	stats := AnalyzeDay(events, day.Add(12*time.Hour))
	assert.Equal(t, "2026-10-18", stats.Date)
	assert.Equal(t, 4, stats.Questions)
	assert.Equal(t, 3, stats.UniqueSessions)
	assert.Equal(t, 2, stats.FailedAnswers)
	assert.Equal(t, map[string]int{"stopped": 1, "high_cpu": 1, "all": 1, "running": 1}, stats.ByIntent)
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(DailyStats{
		Date:           "2026-10-18",
		Questions:      3,
		UniqueSessions: 2,
		ByIntent:       map[string]int{"stopped": 2, "all": 1},
	})
	assert.Equal(t, "Report for 2026-10-18\nQuestions: 3\nSessions: 2\nFailed answers: 0\nBy intent:\n  stopped: 2\n  all: 1\n", out)
}

func TestFormatReportEmpty(t *testing.T) {
	out := FormatReport(AnalyzeDay(nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Report for 2026-01-02\nQuestions: 0\nSessions: 0\nFailed answers: 0\n", out)
}
