package systems

import "sort"

// Bars is the grouped CPU/memory series, one entry per record.
type Bars struct {
	Names  []string  `json:"names"`
	CPU    []float64 `json:"cpu"`
	Memory []float64 `json:"memory"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

func UsageBars(reg Registry) Bars {
	b := Bars{
		Names:  make([]string, 0, len(reg)),
		CPU:    make([]float64, 0, len(reg)),
		Memory: make([]float64, 0, len(reg)),
	}
	for _, rec := range reg {
		b.Names = append(b.Names, rec.Name)
		b.CPU = append(b.CPU, rec.CPU)
		b.Memory = append(b.Memory, rec.Memory)
	}
	return b
}

// StatusDistribution counts records per status, most frequent first.
func StatusDistribution(reg Registry) []StatusCount {
	counts := make(map[Status]int)
	for _, rec := range reg {
		counts[rec.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for st, n := range counts {
		out = append(out, StatusCount{Status: st, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}
