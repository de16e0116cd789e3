// Package confidence provides confidence score math utilities.
// Scores are on a 0-100 scale throughout.
package confidence

import "math"

// Aggregate combines multiple confidence scores.
// Uses geometric mean to penalize low-confidence components.
func Aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	product := 1.0
	for _, s := range scores {
		if s <= 0 {
			return 0
		}
		product *= s
	}

	return math.Pow(product, 1.0/float64(len(scores)))
}

// WeightedAverage calculates weighted confidence.
func WeightedAverage(scores []float64, weights []float64) float64 {
	if len(scores) == 0 || len(scores) != len(weights) {
		return 0
	}

	var sum, weightSum float64
	for i, s := range scores {
		sum += s * weights[i]
		weightSum += weights[i]
	}

	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// Clamp ensures a score is in the valid range [0, 100].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Named confidence bands.
const (
	High   = 95.0
	Medium = 80.0
	Low    = 60.0
	Min    = 50.0
)
