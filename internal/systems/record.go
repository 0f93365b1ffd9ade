// Package systems holds the monitored-system registry and the pure
// operations over it: loading, simulated telemetry, filtering and
// aggregation.
package systems

type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// Record is a single monitored system. Values are percentages in [0,100].
type Record struct {
	Name   string  `json:"name"`
	Status Status  `json:"status"`
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

func (r Record) Running() bool { return r.Status == StatusRunning }

// Registry is an ordered set of records; order is the source file order.
// Operations never modify a Registry in place, they return a new one.
type Registry []Record

func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	copy(out, r)
	return out
}

// Where returns the records matching pred, preserving order.
func (r Registry) Where(pred func(Record) bool) Registry {
	out := make(Registry, 0, len(r))
	for _, rec := range r {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for _, rec := range r {
		out = append(out, rec.Name)
	}
	return out
}
