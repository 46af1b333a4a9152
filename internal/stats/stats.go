// Package stats provides the baseline arithmetic for anomaly detection.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean of values, or 0 for an empty input.
// Non-finite values are dropped before computing.
func Mean(values []float64) float64 {
	finite := dropNonFinite(values)
	if len(finite) == 0 {
		return 0
	}
	m, err := mstats.Mean(finite)
	if err != nil {
		return 0
	}
	return m
}

// StdDev returns the population standard deviation of values (divide by N,
// not N-1), or 0 for fewer than 2 values. Non-finite values are dropped
// before computing.
func StdDev(values []float64) float64 {
	finite := dropNonFinite(values)
	if len(finite) < 2 {
		return 0
	}
	sd, err := mstats.StandardDeviationPopulation(finite)
	if err != nil {
		return 0
	}
	return sd
}

func dropNonFinite(values []float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	return finite
}
