// Package api defines the shared request/response contracts for all services.
package api

// CostReport is the full pipeline output for one project.
type CostReport struct {
	ProjectID string               `json:"project_id"`
	Metrics   EVMMetrics           `json:"metrics"`
	Breakdown []BudgetVsActualLine `json:"breakdown"`
	Forecast  Forecast             `json:"forecast"`
	Alerts    []Alert              `json:"alerts"`

	// Degraded is set when the computation succeeded but persistence of
	// the snapshot or alerts failed. Dashboards still get a full report.
	Degraded bool `json:"degraded,omitempty"`
}

// ForecastRequest is the input for standalone forecast generation.
type ForecastRequest struct {
	Metrics     EVMMetrics `json:"metrics"`
	ProjectType string     `json:"project_type,omitempty"`
}

// AlertsRequest is the input for standalone alert generation.
type AlertsRequest struct {
	Metrics   EVMMetrics           `json:"metrics"`
	Breakdown []BudgetVsActualLine `json:"breakdown"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
