// Package detector scores metric samples against a rolling per-owner baseline.
package detector

import (
	"github.com/dbpulse/dbpulse/internal/models"
	"github.com/dbpulse/dbpulse/internal/stats"
)

// Metric dimension names as they appear in anomaly output.
const (
	MetricCPU       = "cpu"
	MetricMemory    = "memory"
	MetricErrorRate = "error_rate"
	MetricLatency   = "latency_ms"
)

const (
	msgCPU       = "CPU usage is significantly higher than normal (above μ + 2σ)"
	msgMemory    = "Memory usage is significantly higher than normal (above μ + 2σ)"
	msgErrorRate = "Error rate is significantly higher than normal (above μ + 2σ)"
	msgLatency   = "Latency is significantly higher than normal (above μ + 2σ)"
)

// Evaluate compares the current sample against the baseline of the given
// history and returns every dimension whose value exceeds mean + 2*stddev.
// With an empty history the baseline is zero, so any strictly positive value
// flags. Output order is fixed: cpu, memory, error_rate, latency_ms.
//
// Pure function: no I/O, inputs are not mutated. Fetching history and
// persisting the result are the caller's responsibility.
func Evaluate(current models.MetricSample, history []models.MetricSample) []models.Anomaly {
	cpuArr := make([]float64, 0, len(history))
	memArr := make([]float64, 0, len(history))
	errArr := make([]float64, 0, len(history))
	latArr := make([]float64, 0, len(history))
	for _, h := range history {
		cpuArr = append(cpuArr, h.CPUPercent)
		memArr = append(memArr, h.MemPercent)
		errArr = append(errArr, h.ErrorRate)
		latArr = append(latArr, h.LatencyMs)
	}

	var anomalies []models.Anomaly
	check := func(metric string, value float64, values []float64, message string) {
		mu := stats.Mean(values)
		sigma := stats.StdDev(values)
		if value > mu+2*sigma {
			anomalies = append(anomalies, models.Anomaly{
				Metric:  metric,
				Value:   value,
				Mean:    mu,
				StdDev:  sigma,
				Message: message,
			})
		}
	}

	check(MetricCPU, current.CPUPercent, cpuArr, msgCPU)
	check(MetricMemory, current.MemPercent, memArr, msgMemory)
	check(MetricErrorRate, current.ErrorRate, errArr, msgErrorRate)
	check(MetricLatency, current.LatencyMs, latArr, msgLatency)

	return anomalies
}
