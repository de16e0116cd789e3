// Package budget builds per-category budget-vs-actual comparisons.
package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"natacare-cost/pkg/api"
)

// A line is over budget above +10% variance, under budget below -10%.
const statusBandPercent = 10.0

var hundred = decimal.NewFromInt(100)

// Build compares each WBS line's budget against booked cost. When ledger
// entries are present they are grouped by WBS code and win over the
// per-line actual/committed figures; without a ledger the line figures are
// used as-is. Variance is over-budget-positive. Output is ordered by WBS
// code regardless of input order.
func Build(lines []api.WBSLine, ledger []api.LedgerEntry) []api.BudgetVsActualLine {
	actuals := make(map[string]decimal.Decimal)
	committed := make(map[string]decimal.Decimal)
	for _, entry := range ledger {
		amount := decimal.NewFromFloat(entry.Amount)
		if entry.Committed {
			committed[entry.WBSCode] = committed[entry.WBSCode].Add(amount)
		} else {
			actuals[entry.WBSCode] = actuals[entry.WBSCode].Add(amount)
		}
	}

	out := make([]api.BudgetVsActualLine, 0, len(lines))
	for _, line := range lines {
		budgetAmount := decimal.NewFromFloat(line.Budget)

		actual := decimal.NewFromFloat(line.Actual)
		committedAmount := decimal.NewFromFloat(line.Committed)
		if len(ledger) > 0 {
			actual = actuals[line.Code]
			committedAmount = committed[line.Code]
		}

		variance := actual.Sub(budgetAmount)
		var variancePercent decimal.Decimal
		switch {
		case !budgetAmount.IsZero():
			variancePercent = variance.Div(budgetAmount).Mul(hundred)
		case actual.IsPositive():
			// No budget but cost booked: fully over.
			variancePercent = hundred
		}

		remaining := budgetAmount.Sub(actual).Sub(committedAmount)

		out = append(out, api.BudgetVsActualLine{
			WBSCode:         line.Code,
			WBSName:         line.Name,
			BudgetAmount:    budgetAmount.Round(2).InexactFloat64(),
			ActualAmount:    actual.Round(2).InexactFloat64(),
			CommittedAmount: committedAmount.Round(2).InexactFloat64(),
			RemainingBudget: remaining.Round(2).InexactFloat64(),
			Variance:        variance.Round(2).InexactFloat64(),
			VariancePercent: variancePercent.Round(2).InexactFloat64(),
			Status:          lineStatus(variancePercent),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].WBSCode < out[j].WBSCode })
	return out
}

func lineStatus(variancePercent decimal.Decimal) api.BudgetLineStatus {
	switch {
	case variancePercent.GreaterThan(decimal.NewFromFloat(statusBandPercent)):
		return api.LineOverBudget
	case variancePercent.LessThan(decimal.NewFromFloat(-statusBandPercent)):
		return api.LineUnderBudget
	default:
		return api.LineOnBudget
	}
}
