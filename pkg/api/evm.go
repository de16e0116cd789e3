// Package api defines earned value management result types.
package api

import "time"

// ProjectStatus classifies overall cost/schedule health.
type ProjectStatus string

const (
	StatusOnTrack    ProjectStatus = "on_track"
	StatusAtRisk     ProjectStatus = "at_risk"
	StatusOverBudget ProjectStatus = "over_budget"
	StatusCritical   ProjectStatus = "critical"
)

// EVMMetrics is the consolidated earned value management output for a
// project. All currency fields share the project currency; indices are
// dimensionless ratios.
type EVMMetrics struct {
	// Base values
	BAC float64 `json:"bac"` // budget at completion
	PV  float64 `json:"pv"`  // planned value
	EV  float64 `json:"ev"`  // earned value
	AC  float64 `json:"ac"`  // actual cost

	// Variances
	CV float64 `json:"cv"` // cost variance (EV - AC)
	SV float64 `json:"sv"` // schedule variance (EV - PV)

	// Performance indices
	CPI float64 `json:"cpi"` // cost performance index
	SPI float64 `json:"spi"` // schedule performance index

	// Completion forecasting
	EAC  float64 `json:"eac"`  // estimate at completion
	ETC  float64 `json:"etc"`  // estimate to complete
	VAC  float64 `json:"vac"`  // variance at completion
	TCPI float64 `json:"tcpi"` // to-complete performance index

	// Progress
	PercentComplete float64 `json:"percent_complete"`
	PercentSpent    float64 `json:"percent_spent"`

	Status      ProjectStatus `json:"status"`
	HealthScore float64       `json:"health_score"`

	CalculatedAt time.Time `json:"calculated_at"`
}
