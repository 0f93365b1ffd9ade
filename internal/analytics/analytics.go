package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opsbot/opsbot/internal/narrator"
	"github.com/opsbot/opsbot/internal/storage"
	"github.com/opsbot/opsbot/internal/systems"
)

// DailyStats summarizes one UTC day of the transcript log.
type DailyStats struct {
	Date           string         `json:"date"`
	Questions      int            `json:"questions"`
	UniqueSessions int            `json:"unique_sessions"`
	FailedAnswers  int            `json:"failed_answers"`
	ByIntent       map[string]int `json:"by_intent"`
}

// AnalyzeDay counts the events that fall on targetDate's calendar day.
func AnalyzeDay(events []storage.Event, targetDate time.Time) DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := DailyStats{
		Date:     startOfDay.Format("2006-01-02"),
		ByIntent: make(map[string]int),
	}
	sessions := make(map[string]struct{})

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		if ev.Question == "" {
			continue
		}
		stats.Questions++
		sessions[ev.SessionID] = struct{}{}
		stats.ByIntent[systems.Classify(ev.Question).String()]++
		if narrator.Failed(ev.Response) {
			stats.FailedAnswers++
		}
	}
	stats.UniqueSessions = len(sessions)
	return stats
}

func FormatReport(stats DailyStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Report for %s\n", stats.Date)
	fmt.Fprintf(&sb, "Questions: %d\n", stats.Questions)
	fmt.Fprintf(&sb, "Sessions: %d\n", stats.UniqueSessions)
	fmt.Fprintf(&sb, "Failed answers: %d\n", stats.FailedAnswers)

	if len(stats.ByIntent) == 0 {
		return sb.String()
	}
	intents := make([]string, 0, len(stats.ByIntent))
	for k := range stats.ByIntent {
		intents = append(intents, k)
	}
	sort.Slice(intents, func(i, j int) bool {
		if stats.ByIntent[intents[i]] != stats.ByIntent[intents[j]] {
			return stats.ByIntent[intents[i]] > stats.ByIntent[intents[j]]
		}
		return intents[i] < intents[j]
	})
	sb.WriteString("By intent:\n")
	for _, k := range intents {
		fmt.Fprintf(&sb, "  %s: %d\n", k, stats.ByIntent[k])
	}
	return sb.String()
}
