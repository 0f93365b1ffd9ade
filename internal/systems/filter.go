package systems

import "strings"

// HighUsageThreshold is the percentage above which CPU or memory counts as high.
const HighUsageThreshold = 80

type Intent int

const (
	IntentAll Intent = iota
	IntentStopped
	IntentHighMemory
	IntentHighCPU
	IntentRunning
)

func (i Intent) String() string {
	switch i {
	case IntentStopped:
		return "stopped"
	case IntentHighMemory:
		return "high_memory"
	case IntentHighCPU:
		return "high_cpu"
	case IntentRunning:
		return "running"
	default:
		return "all"
	}
}

// Classify maps free text onto one predicate. The first match wins.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "down") || strings.Contains(q, "stopped"):
		return IntentStopped
	case strings.Contains(q, "high memory") || strings.Contains(q, "memory over"):
		return IntentHighMemory
	case strings.Contains(q, "high cpu") || strings.Contains(q, "cpu over"):
		return IntentHighCPU
	case strings.Contains(q, "running"):
		return IntentRunning
	default:
		return IntentAll
	}
}

func (i Intent) Match(rec Record) bool {
	switch i {
	case IntentStopped:
		return rec.Status == StatusStopped
	case IntentHighMemory:
		return rec.Memory > HighUsageThreshold
	case IntentHighCPU:
		return rec.CPU > HighUsageThreshold
	case IntentRunning:
		return rec.Status == StatusRunning
	default:
		return true
	}
}

// Filter returns the subset of reg selected by the query text.
func Filter(reg Registry, query string) Registry {
	return reg.Where(Classify(query).Match)
}
