// Package evm computes consolidated earned value management metrics.
package evm

import (
	"math"
	"time"

	"natacare-cost/pkg/api"
)

// Index thresholds for status banding.
const (
	criticalThreshold = 0.9
	onTrackThreshold  = 0.95
)

// now is swapped out in tests.
var now = time.Now

// Calculate consolidates WBS lines, the project-level finance aggregate,
// and overall physical progress into a single set of EVM metrics.
//
// BAC and PV are summed across lines; AC always comes from the finance
// aggregate, never from per-line actuals. EV is driven by the overall
// physical progress, not by per-line progress. Degenerate inputs (zero
// BAC, AC, or PV) fall back to neutral values instead of NaN/Inf: CPI and
// SPI default to 1, ETC to the remaining budgeted work, TCPI to 1. A
// brand-new project with nothing booked reads as on-plan.
func Calculate(lines []api.WBSLine, finance api.FinanceAggregate, physicalProgress float64) api.EVMMetrics {
	var bac, pv float64
	for _, line := range lines {
		bac += line.Budget
		pv += line.Planned
	}

	ac := finance.TotalActual
	ev := bac * physicalProgress / 100

	cpi := safeRatio(ev, ac)
	spi := safeRatio(ev, pv)

	etc := bac - ev
	if cpi > 0 {
		etc = (bac - ev) / cpi
	}
	eac := ac + etc
	vac := bac - eac

	tcpi := 1.0
	if bac != ac {
		tcpi = (bac - ev) / (bac - ac)
	}

	percentSpent := 0.0
	if bac != 0 {
		percentSpent = ac / bac * 100
	}

	return api.EVMMetrics{
		BAC:             bac,
		PV:              pv,
		EV:              ev,
		AC:              ac,
		CV:              ev - ac,
		SV:              ev - pv,
		CPI:             cpi,
		SPI:             spi,
		EAC:             eac,
		ETC:             etc,
		VAC:             vac,
		TCPI:            tcpi,
		PercentComplete: physicalProgress,
		PercentSpent:    percentSpent,
		Status:          deriveStatus(cpi, spi),
		HealthScore:     HealthScore(cpi, spi),
		CalculatedAt:    now(),
	}
}

// safeRatio divides num by den, defaulting to a neutral 1 when den is 0.
// The same fallback applies at every call site.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 1
	}
	return num / den
}

// deriveStatus bands CPI/SPI into a project status. Evaluated in priority
// order, first match wins. Indices in the 0.90-0.95 residual band count as
// at_risk; exactly 0.95 on both is on_track.
func deriveStatus(cpi, spi float64) api.ProjectStatus {
	switch {
	case cpi < criticalThreshold && spi < criticalThreshold:
		return api.StatusCritical
	case cpi < criticalThreshold:
		return api.StatusOverBudget
	case spi < criticalThreshold:
		return api.StatusAtRisk
	case cpi < onTrackThreshold || spi < onTrackThreshold:
		return api.StatusAtRisk
	default:
		return api.StatusOnTrack
	}
}

// HealthScore maps the two performance indices onto a 0-100+ scale.
// Shortfall below par performance is penalized at 1.5x, so over-budget
// projects sink under 80 before their raw average would. Over-performance
// may push the score past 100. Monotonic in both indices.
func HealthScore(cpi, spi float64) float64 {
	score := 50*(cpi+spi) - 25*(math.Max(0, 1-cpi)+math.Max(0, 1-spi))
	return math.Max(0, score)
}
