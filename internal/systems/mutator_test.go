package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so individual branches can be forced.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted int out of range")
	}
	return v
}

func sampleRegistry() Registry {
	return Registry{
		{Name: "web1", Status: StatusRunning, CPU: 95, Memory: 97},
		{Name: "web2", Status: StatusRunning, CPU: 3, Memory: 2},
		{Name: "db1", Status: StatusStopped},
		{Name: "cache1", Status: StatusRunning, CPU: 50, Memory: 50},
		{Name: "batch", Status: StatusStopped, CPU: 12, Memory: 40},
	}
}

func TestUpdateStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	reg := sampleRegistry()
	for round := 0; round < 2000; round++ {
		reg = Update(reg, rng)
		for _, rec := range reg {
			require.GreaterOrEqual(t, rec.CPU, 0.0, "round %d %s", round, rec.Name)
			require.LessOrEqual(t, rec.CPU, 100.0, "round %d %s", round, rec.Name)
			require.GreaterOrEqual(t, rec.Memory, 0.0, "round %d %s", round, rec.Name)
			require.LessOrEqual(t, rec.Memory, 100.0, "round %d %s", round, rec.Name)
		}
	}
}

func TestUpdateStoppedSystemsAreZeroed(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	reg := sampleRegistry()
	flips := 0
	for round := 0; round < 500; round++ {
		next := Update(reg, rng)
		for i := range next {
			if reg[i].Running() && next[i].Status == StatusStopped {
				flips++
				assert.Zero(t, next[i].CPU)
				assert.Zero(t, next[i].Memory)
			}
		}
		reg = next
	}
	assert.Positive(t, flips)
}

func TestUpdateDoesNotModifyInput(t *testing.T) {
	in := sampleRegistry()
	before := in.Clone()
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		_ = Update(in, rng)
	}
	assert.Equal(t, before, in)
}

func TestUpdatePerturbsRunningSystem(t *testing.T) {
	reg := Registry{{Name: "web1", Status: StatusRunning, CPU: 50, Memory: 50}}
	// considered, cpu +10, memory +15, no flip
	rng := &scriptedRand{floats: []float64{0.1, 0.9}, ints: []int{20, 20}}

	out := Update(reg, rng)
	assert.Equal(t, Record{Name: "web1", Status: StatusRunning, CPU: 60, Memory: 65}, out[0])
}

func TestUpdateClampsAtBounds(t *testing.T) {
	reg := Registry{
		{Name: "hot", Status: StatusRunning, CPU: 98, Memory: 95},
		{Name: "idle", Status: StatusRunning, CPU: 4, Memory: 2},
	}
	rng := &scriptedRand{
		floats: []float64{0.0, 0.99, 0.0, 0.99},
		ints:   []int{20, 20, 0, 0},
	}

	out := Update(reg, rng)
	assert.Equal(t, 100.0, out[0].CPU)
	assert.Equal(t, 100.0, out[0].Memory)
	assert.Equal(t, 0.0, out[1].CPU)
	assert.Equal(t, 0.0, out[1].Memory)
}

func TestUpdateStatusFlipIsIndependentOfPerturbDraw(t *testing.T) {
	reg := Registry{{Name: "web1", Status: StatusRunning, CPU: 70, Memory: 80}}
	// not considered for change, but the flip draw still fires
	rng := &scriptedRand{floats: []float64{0.95, 0.05}}

	out := Update(reg, rng)
	assert.Equal(t, Record{Name: "web1", Status: StatusStopped}, out[0])
}

func TestUpdateRestartsStoppedSystem(t *testing.T) {
	reg := Registry{{Name: "db1", Status: StatusStopped}}
	// stopped systems are never perturbed; flip to running picks fresh values
	rng := &scriptedRand{floats: []float64{0.1, 0.01}, ints: []int{0, 60}}

	out := Update(reg, rng)
	assert.Equal(t, Record{Name: "db1", Status: StatusRunning, CPU: 10, Memory: 80}, out[0])
}
