// Package api defines the shared contracts for the cost-control services.
package api

import "time"

// WBSLine is one row of work-breakdown-structure budget/progress data.
// Line-level fields are not required to reconcile against each other;
// the calculator only sums budget and planned across lines.
type WBSLine struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Budget    float64 `json:"budget"`    // planned total cost at completion
	Planned   float64 `json:"planned"`   // planned value consumed to date
	Earned    float64 `json:"earned"`    // earned value to date
	Actual    float64 `json:"actual"`    // actual cost to date (row display only)
	Committed float64 `json:"committed"` // committed but unspent
	Progress  float64 `json:"progress"`  // 0-100 percent complete
}

// FinanceAggregate carries project-level actual/committed totals. These are
// supplied independently of the WBS line sums and win over them.
type FinanceAggregate struct {
	TotalActual    float64 `json:"total_actual"`
	TotalCommitted float64 `json:"total_committed"`
}

// LedgerEntry is a single booked cost transaction attributed to a WBS code.
type LedgerEntry struct {
	ID          string    `json:"id"`
	WBSCode     string    `json:"wbs_code"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Committed   bool      `json:"committed"` // committed but not yet spent
	BookedAt    time.Time `json:"booked_at"`
}

// ProjectInput bundles everything the cost-control pipeline consumes for
// one project. The data-access layer materializes it; the pipeline never
// queries anything itself.
type ProjectInput struct {
	ProjectID        string           `json:"project_id"`
	ProjectType      string           `json:"project_type,omitempty"` // benchmark lookup key
	WBSLines         []WBSLine        `json:"wbs_lines"`
	Finance          FinanceAggregate `json:"finance"`
	PhysicalProgress float64          `json:"physical_progress"` // 0-100
	Ledger           []LedgerEntry    `json:"ledger,omitempty"`
}
