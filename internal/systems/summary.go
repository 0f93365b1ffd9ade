package systems

import (
	"encoding/json"
	"fmt"
)

// Percent is an average that may be unavailable.
type Percent struct {
	Value float64
	Valid bool
}

func (p Percent) String() string {
	if !p.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", p.Value)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	if err := json.Unmarshal(data, &p.Value); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

type Summary struct {
	Total            int     `json:"total"`
	Running          int     `json:"running"`
	Stopped          int     `json:"stopped"`
	AvgCPURunning    Percent `json:"avg_cpu_running"`
	AvgMemoryRunning Percent `json:"avg_memory_running"`
}

// Summarize counts systems and averages CPU and memory over running ones.
// Anything not running is counted as stopped.
func Summarize(reg Registry) Summary {
	s := Summary{Total: len(reg)}
	var cpu, mem float64
	for _, rec := range reg {
		if !rec.Running() {
			continue
		}
		s.Running++
		cpu += rec.CPU
		mem += rec.Memory
	}
	s.Stopped = s.Total - s.Running
	if s.Running == 0 {
		return s
	}
	n := float64(s.Running)
	s.AvgCPURunning = Percent{Value: cpu / n, Valid: true}
	s.AvgMemoryRunning = Percent{Value: mem / n, Valid: true}
	return s
}
