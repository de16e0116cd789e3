// Package api defines forecast types.
package api

import "time"

// ForecastMethod identifies which EAC estimate was selected.
type ForecastMethod string

const (
	MethodCPI         ForecastMethod = "cpi"
	MethodSPI         ForecastMethod = "spi"
	MethodCPITimesSPI ForecastMethod = "cpi_spi"
)

// ConfidenceFactors breaks the forecast confidence into its inputs.
// Each factor is on a 0-100 scale.
type ConfidenceFactors struct {
	DataQuality        float64 `json:"data_quality"`
	HistoricalAccuracy float64 `json:"historical_accuracy"`
	ExternalFactors    float64 `json:"external_factors"`
}

// Forecast is the completion-cost forecast for a project.
type Forecast struct {
	// Candidate estimates at completion
	EACByCPI       float64 `json:"eac_by_cpi"`
	EACBySPI       float64 `json:"eac_by_spi"`
	EACByCPIAndSPI float64 `json:"eac_by_cpi_and_spi"`

	SelectedEAC    float64        `json:"selected_eac"`
	SelectedMethod ForecastMethod `json:"selected_method"`

	ForecastCompletionDate time.Time `json:"forecast_completion_date"`
	DaysRemaining          int       `json:"days_remaining"`

	ConfidenceLevel   float64           `json:"confidence_level"` // 0-100
	ConfidenceFactors ConfidenceFactors `json:"confidence_factors"`

	Assumptions []string `json:"assumptions"`

	GeneratedAt time.Time `json:"generated_at"`
}
