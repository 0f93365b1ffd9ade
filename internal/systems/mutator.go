package systems

const (
	perturbChance = 0.30
	flipChance    = 0.10
)

// Rand is the random source used by Update. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Update simulates live telemetry. Every record gets two independent draws:
// a 30% chance to random-walk its CPU and memory (running systems only) and
// a 10% chance to toggle its status. The input registry is left untouched.
func Update(reg Registry, rng Rand) Registry {
	out := reg.Clone()
	for i := range out {
		step(&out[i], rng)
	}
	return out
}

func step(rec *Record, rng Rand) {
	if rng.Float64() < perturbChance && rec.Running() {
		rec.CPU = clamp(rec.CPU+float64(uniformInt(rng, -10, 10)))
		rec.Memory = clamp(rec.Memory+float64(uniformInt(rng, -5, 15)))
	}

	if rng.Float64() < flipChance {
		if rec.Running() {
			rec.Status = StatusStopped
			rec.CPU = 0
			rec.Memory = 0
		} else {
			rec.Status = StatusRunning
			rec.CPU = float64(uniformInt(rng, 10, 90))
			rec.Memory = float64(uniformInt(rng, 20, 80))
		}
	}
}

// uniformInt returns an integer in [lo, hi], both ends inclusive.
func uniformInt(rng Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}
