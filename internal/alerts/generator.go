// Package alerts evaluates cost-control threshold rules.
// Each rule is independent; zero, one, or many alerts may fire per run.
package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"natacare-cost/pkg/api"
)

// Rule thresholds. Performance indices alert under 0.9 and escalate under
// 0.8; budget lines alert above +10% variance and escalate above +20%.
const (
	IndexThreshold          = 0.9
	IndexCriticalThreshold  = 0.8
	VarianceWarnPercent     = 10.0
	VarianceCriticalPercent = 20.0
)

var now = time.Now

// Generate runs every alert rule against the metrics and the per-category
// budget comparison. Returns an empty (non-nil) slice when everything is
// within tolerance. Every alert starts unacknowledged and unresolved; the
// alert store owns those transitions.
func Generate(m api.EVMMetrics, breakdown []api.BudgetVsActualLine) []api.Alert {
	result := make([]api.Alert, 0)

	for _, line := range breakdown {
		if line.VariancePercent <= VarianceWarnPercent {
			continue
		}
		severity := api.SeverityWarning
		if line.VariancePercent > VarianceCriticalPercent {
			severity = api.SeverityCritical
		}
		alert := newAlert(api.AlertBudgetExceeded, severity,
			fmt.Sprintf("Budget exceeded on %s (%s): %.1f%% over budget", line.WBSName, line.WBSCode, line.VariancePercent),
			line.VariancePercent, 0,
			[]string{
				"Review spending for " + line.WBSName,
				"Evaluate pending change orders",
				"Reforecast remaining budget for this package",
			})
		alert.AffectedWBS = line.WBSCode
		result = append(result, alert)
	}

	if m.CPI < IndexThreshold {
		severity := api.SeverityWarning
		if m.CPI < IndexCriticalThreshold {
			severity = api.SeverityCritical
		}
		result = append(result, newAlert(api.AlertCPILow, severity,
			fmt.Sprintf("Cost performance index %.2f below threshold %.2f", m.CPI, IndexThreshold),
			m.CPI, IndexThreshold,
			[]string{
				"Analyze cost drivers",
				"Review supplier and subcontractor rates",
				"Tighten change order controls",
			}))
	}

	if m.SPI < IndexThreshold {
		severity := api.SeverityWarning
		if m.SPI < IndexCriticalThreshold {
			severity = api.SeverityCritical
		}
		result = append(result, newAlert(api.AlertSPILow, severity,
			fmt.Sprintf("Schedule performance index %.2f below threshold %.2f", m.SPI, IndexThreshold),
			m.SPI, IndexThreshold,
			[]string{
				"Review project schedule",
				"Re-sequence critical path activities",
				"Add resources to lagging work packages",
			}))
	}

	return result
}

func newAlert(alertType api.AlertType, severity api.AlertSeverity, message string, current, threshold float64, actions []string) api.Alert {
	return api.Alert{
		ID:                 uuid.New(),
		AlertType:          alertType,
		Severity:           severity,
		Message:            message,
		CurrentValue:       current,
		ThresholdValue:     threshold,
		RecommendedActions: actions,
		IsAcknowledged:     false,
		IsResolved:         false,
		CreatedAt:          now(),
	}
}
