package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsbot/opsbot/internal/systems"
)

var (
	SystemsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opsbot_systems_total",
		Help: "Number of systems in the registry loaded from the source file",
	})
	SystemsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opsbot_systems_running",
		Help: "Number of running systems in the registry loaded from the source file",
	})
	SystemsStopped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opsbot_systems_stopped",
		Help: "Number of stopped systems in the registry loaded from the source file",
	})
	AvgCPURunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opsbot_avg_cpu_running_percent",
		Help: "Average CPU of running systems in the source registry, 0 when none are running",
	})
	AvgMemoryRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opsbot_avg_memory_running_percent",
		Help: "Average memory of running systems in the source registry, 0 when none are running",
	})
	Simulations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsbot_simulations_total",
		Help: "Number of simulated telemetry updates applied",
	})
	Reloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsbot_reloads_total",
		Help: "Number of registry reloads from the source file",
	})
	Questions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsbot_questions_total",
		Help: "Number of questions forwarded to the language model",
	})
	LLMErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsbot_llm_errors_total",
		Help: "Number of failed language model calls",
	})
)

// ObserveSummary publishes the summary of the registry loaded from the
// source. Per-session simulations are not reflected.
func ObserveSummary(s systems.Summary) {
	SystemsTotal.Set(float64(s.Total))
	SystemsRunning.Set(float64(s.Running))
	SystemsStopped.Set(float64(s.Stopped))
	AvgCPURunning.Set(valueOrZero(s.AvgCPURunning))
	AvgMemoryRunning.Set(valueOrZero(s.AvgMemoryRunning))
}

func valueOrZero(p systems.Percent) float64 {
	if !p.Valid {
		return 0
	}
	return p.Value
}

func Handler() http.Handler {
	return promhttp.Handler()
}
