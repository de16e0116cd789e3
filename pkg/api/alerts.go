// Package api defines budget comparison and alert types.
package api

import (
	"time"

	"github.com/google/uuid"
)

// BudgetLineStatus classifies a per-category budget comparison line.
type BudgetLineStatus string

const (
	LineUnderBudget BudgetLineStatus = "under_budget"
	LineOnBudget    BudgetLineStatus = "on_budget"
	LineOverBudget  BudgetLineStatus = "over_budget"
)

// BudgetVsActualLine compares budget against booked cost for one WBS
// category. Variance is over-budget-positive: actual above budget yields
// a positive variance.
type BudgetVsActualLine struct {
	WBSCode         string           `json:"wbs_code"`
	WBSName         string           `json:"wbs_name"`
	BudgetAmount    float64          `json:"budget_amount"`
	ActualAmount    float64          `json:"actual_amount"`
	CommittedAmount float64          `json:"committed_amount"`
	RemainingBudget float64          `json:"remaining_budget"`
	Variance        float64          `json:"variance"`
	VariancePercent float64          `json:"variance_percent"`
	Status          BudgetLineStatus `json:"status"`
}

// AlertType identifies the rule that fired.
type AlertType string

const (
	AlertBudgetExceeded AlertType = "budget_exceeded"
	AlertCPILow         AlertType = "cpi_low"
	AlertSPILow         AlertType = "spi_low"
)

// AlertSeverity grades an alert.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a threshold-triggered cost-control alert. Acknowledge/resolve
// transitions are owned by the alert store, not the generator.
type Alert struct {
	ID                 uuid.UUID     `json:"id"`
	ProjectID          string        `json:"project_id,omitempty"`
	AlertType          AlertType     `json:"alert_type"`
	Severity           AlertSeverity `json:"severity"`
	Message            string        `json:"message"`
	CurrentValue       float64       `json:"current_value"`
	ThresholdValue     float64       `json:"threshold_value,omitempty"`
	AffectedWBS        string        `json:"affected_wbs,omitempty"`
	RecommendedActions []string      `json:"recommended_actions"`
	IsAcknowledged     bool          `json:"is_acknowledged"`
	IsResolved         bool          `json:"is_resolved"`
	CreatedAt          time.Time     `json:"created_at"`
}
