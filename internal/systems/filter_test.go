package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriority(t *testing.T) {
	cases := map[string]Intent{
		"Which servers are down?":                  IntentStopped,
		"list STOPPED services":                    IntentStopped,
		"Any service with memory over 80%?":        IntentHighMemory,
		"high memory please":                       IntentHighMemory,
		"who has HIGH CPU":                         IntentHighCPU,
		"cpu over 80":                              IntentHighCPU,
		"Which systems are running normally?":      IntentRunning,
		"Show me the CPU usage of all systems":     IntentAll,
		"":                                         IntentAll,
		"running systems that are down":            IntentStopped,
		"running with high memory":                 IntentHighMemory,
		"high cpu and high memory":                 IntentHighMemory,
		"What's the status of the database server": IntentAll,
	}
	for q, want := range cases {
		assert.Equal(t, want, Classify(q), q)
	}
}

func TestFilterDownReturnsStoppedSubset(t *testing.T) {
	reg := sampleRegistry()
	got := Filter(reg, "down")

	assert.Equal(t, []string{"db1", "batch"}, got.Names())
	for _, rec := range got {
		assert.Contains(t, reg, rec)
	}
}

func TestFilterThresholdsAreStrict(t *testing.T) {
	reg := Registry{
		{Name: "edge", Status: StatusRunning, CPU: 80, Memory: 80},
		{Name: "over", Status: StatusRunning, CPU: 80.5, Memory: 81},
	}
	assert.Equal(t, []string{"over"}, Filter(reg, "high cpu").Names())
	assert.Equal(t, []string{"over"}, Filter(reg, "memory over 80").Names())
}

func TestFilterIdentityIsCopy(t *testing.T) {
	reg := sampleRegistry()
	got := Filter(reg, "anything at all")
	assert.Equal(t, reg, got)

	got[0].CPU = 1
	assert.Equal(t, 95.0, reg[0].CPU)
}

func TestSingleHotDatabaseScenario(t *testing.T) {
	reg, err := Decode([]byte(`[{"name":"db1","status":"running","cpu":90,"memory":95}]`))
	assert.NoError(t, err)

	assert.Equal(t, []string{"db1"}, Filter(reg, "high cpu").Names())
	assert.Equal(t, []string{"db1"}, Filter(reg, "high memory").Names())

	s := Summarize(reg)
	assert.Equal(t, 1, s.Running)
	assert.Equal(t, 0, s.Stopped)
	assert.Equal(t, Percent{Value: 90, Valid: true}, s.AvgCPURunning)
	assert.Equal(t, Percent{Value: 95, Valid: true}, s.AvgMemoryRunning)
}
