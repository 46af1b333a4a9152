package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbpulse/dbpulse/internal/models"
)

func latencyHistory(values ...float64) []models.MetricSample {
	history := make([]models.MetricSample, len(values))
	for i, v := range values {
		history[i] = models.MetricSample{LatencyMs: v}
	}
	return history
}

func TestEvaluate_NoAnomalyAtExactThreshold(t *testing.T) {
	history := latencyHistory(10, 10, 10, 10)
	current := models.MetricSample{LatencyMs: 10}

	anomalies := Evaluate(current, history)

	// mu=10, sigma=0, threshold=10; 10 > 10 is false.
	assert.Empty(t, anomalies)
}

func TestEvaluate_FlagsAboveZeroSigmaBaseline(t *testing.T) {
	history := latencyHistory(10, 10, 10, 10)
	current := models.MetricSample{LatencyMs: 11}

	anomalies := Evaluate(current, history)

	require.Len(t, anomalies, 1)
	assert.Equal(t, MetricLatency, anomalies[0].Metric)
	assert.Equal(t, 11.0, anomalies[0].Value)
	assert.Equal(t, 10.0, anomalies[0].Mean)
	assert.Equal(t, 0.0, anomalies[0].StdDev)
}

func TestEvaluate_EmptyHistoryFlagsAnyPositiveValue(t *testing.T) {
	current := models.MetricSample{CPUPercent: 5}

	anomalies := Evaluate(current, nil)

	// With no history the baseline is zero, so 5 > 0 flags.
	require.Len(t, anomalies, 1)
	assert.Equal(t, MetricCPU, anomalies[0].Metric)
	assert.Equal(t, 5.0, anomalies[0].Value)
	assert.Equal(t, 0.0, anomalies[0].Mean)
	assert.Equal(t, 0.0, anomalies[0].StdDev)
}

func TestEvaluate_EmptyHistoryZeroValueDoesNotFlag(t *testing.T) {
	current := models.MetricSample{}

	anomalies := Evaluate(current, nil)

	assert.Empty(t, anomalies)
}

func TestEvaluate_OutputOrderIsFixed(t *testing.T) {
	// Every dimension flags against an empty history.
	current := models.MetricSample{
		LatencyMs:  100,
		CPUPercent: 50,
		MemPercent: 60,
		ErrorRate:  0.5,
	}

	anomalies := Evaluate(current, nil)

	require.Len(t, anomalies, 4)
	assert.Equal(t, MetricCPU, anomalies[0].Metric)
	assert.Equal(t, MetricMemory, anomalies[1].Metric)
	assert.Equal(t, MetricErrorRate, anomalies[2].Metric)
	assert.Equal(t, MetricLatency, anomalies[3].Metric)
}

func TestEvaluate_DimensionsScoredIndependently(t *testing.T) {
	history := []models.MetricSample{
		{CPUPercent: 10, MemPercent: 90, LatencyMs: 100, ErrorRate: 0},
		{CPUPercent: 12, MemPercent: 91, LatencyMs: 110, ErrorRate: 0},
		{CPUPercent: 11, MemPercent: 89, LatencyMs: 105, ErrorRate: 0},
	}
	current := models.MetricSample{CPUPercent: 95, MemPercent: 90, LatencyMs: 104, ErrorRate: 0}

	anomalies := Evaluate(current, history)

	require.Len(t, anomalies, 1)
	assert.Equal(t, MetricCPU, anomalies[0].Metric)
}

func TestEvaluate_MessagesCarryBaselineContext(t *testing.T) {
	current := models.MetricSample{ErrorRate: 1}

	anomalies := Evaluate(current, nil)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "Error rate is significantly higher than normal (above μ + 2σ)", anomalies[0].Message)
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	history := latencyHistory(10, 20, 30)
	current := models.MetricSample{LatencyMs: 500}

	Evaluate(current, history)

	assert.Equal(t, 10.0, history[0].LatencyMs)
	assert.Equal(t, 20.0, history[1].LatencyMs)
	assert.Equal(t, 30.0, history[2].LatencyMs)
}
