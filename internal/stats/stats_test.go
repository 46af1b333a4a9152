package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
}

func TestMean_Values(t *testing.T) {
	assert.Equal(t, 10.0, Mean([]float64{10}))
	assert.Equal(t, 5.0, Mean([]float64{2, 4, 6, 8}))
}

func TestMean_DropsNonFinite(t *testing.T) {
	values := []float64{10, math.NaN(), 20, math.Inf(1), math.Inf(-1)}
	assert.Equal(t, 15.0, Mean(values))
}

func TestStdDev_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestStdDev_SingleValue(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{42}))
}

func TestStdDev_Population(t *testing.T) {
	// Population stddev divides by N, not N-1.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestStdDev_IdenticalValues(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{10, 10, 10, 10}))
}

func TestStdDev_DropsNonFinite(t *testing.T) {
	// Only one finite value remains, so the result is 0.
	assert.Equal(t, 0.0, StdDev([]float64{5, math.NaN(), math.Inf(1)}))
}
