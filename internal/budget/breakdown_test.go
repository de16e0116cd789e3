package budget

import (
	"math"
	"testing"
	"time"

	"natacare-cost/pkg/api"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestBuildFromLedger(t *testing.T) {
	lines := []api.WBSLine{
		{Code: "1.2", Name: "MEP Works", Budget: 200_000},
		{Code: "1.1", Name: "Structural Works", Budget: 500_000},
	}
	booked := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ledger := []api.LedgerEntry{
		{ID: "t1", WBSCode: "1.1", Amount: 300_000, BookedAt: booked},
		{ID: "t2", WBSCode: "1.1", Amount: 150_000, BookedAt: booked},
		{ID: "t3", WBSCode: "1.1", Amount: 40_000, Committed: true, BookedAt: booked},
		{ID: "t4", WBSCode: "1.2", Amount: 250_000, BookedAt: booked},
	}

	out := Build(lines, ledger)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}

	// Ordered by WBS code regardless of input order.
	if out[0].WBSCode != "1.1" || out[1].WBSCode != "1.2" {
		t.Fatalf("unexpected order: %s, %s", out[0].WBSCode, out[1].WBSCode)
	}

	structural := out[0]
	approx(t, "ActualAmount", structural.ActualAmount, 450_000)
	approx(t, "CommittedAmount", structural.CommittedAmount, 40_000)
	approx(t, "RemainingBudget", structural.RemainingBudget, 10_000)
	approx(t, "Variance", structural.Variance, -50_000)
	approx(t, "VariancePercent", structural.VariancePercent, -10)
	if structural.Status != api.LineOnBudget {
		t.Fatalf("status = %v, want on_budget at exactly -10%%", structural.Status)
	}

	mep := out[1]
	approx(t, "Variance", mep.Variance, 50_000)
	approx(t, "VariancePercent", mep.VariancePercent, 25)
	if mep.Status != api.LineOverBudget {
		t.Fatalf("status = %v, want over_budget", mep.Status)
	}
}

func TestBuildLedgerOrderIndependent(t *testing.T) {
	lines := []api.WBSLine{{Code: "1.1", Name: "Structural Works", Budget: 100_000}}
	ledger := []api.LedgerEntry{
		{ID: "a", WBSCode: "1.1", Amount: 10_000},
		{ID: "b", WBSCode: "1.1", Amount: 20_000},
		{ID: "c", WBSCode: "1.1", Amount: 30_000},
	}
	reversed := []api.LedgerEntry{ledger[2], ledger[1], ledger[0]}

	a := Build(lines, ledger)
	b := Build(lines, reversed)
	if a[0] != b[0] {
		t.Fatalf("breakdown depends on ledger order:\n%+v\n%+v", a[0], b[0])
	}
}

func TestBuildWithoutLedgerUsesLineFigures(t *testing.T) {
	lines := []api.WBSLine{
		{Code: "1.1", Name: "Structural Works", Budget: 500_000, Actual: 480_000, Committed: 30_000},
	}

	out := Build(lines, nil)
	approx(t, "ActualAmount", out[0].ActualAmount, 480_000)
	approx(t, "CommittedAmount", out[0].CommittedAmount, 30_000)
	approx(t, "VariancePercent", out[0].VariancePercent, -4)
	if out[0].Status != api.LineOnBudget {
		t.Fatalf("status = %v, want on_budget", out[0].Status)
	}
}

func TestBuildStatusBands(t *testing.T) {
	cases := []struct {
		name   string
		actual float64
		want   api.BudgetLineStatus
	}{
		{"deep underrun", 50_000, api.LineUnderBudget},
		{"on plan", 100_000, api.LineOnBudget},
		{"small overrun", 108_000, api.LineOnBudget},
		{"real overrun", 115_000, api.LineOverBudget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := []api.WBSLine{{Code: "1", Name: "X", Budget: 100_000, Actual: tc.actual}}
			out := Build(lines, nil)
			if out[0].Status != tc.want {
				t.Fatalf("status = %v, want %v (variance %.1f%%)", out[0].Status, tc.want, out[0].VariancePercent)
			}
		})
	}
}

func TestBuildZeroBudgetLine(t *testing.T) {
	lines := []api.WBSLine{{Code: "9.9", Name: "Unbudgeted", Budget: 0, Actual: 12_000}}
	out := Build(lines, nil)

	approx(t, "VariancePercent", out[0].VariancePercent, 100)
	if out[0].Status != api.LineOverBudget {
		t.Fatalf("status = %v, want over_budget for unbudgeted spend", out[0].Status)
	}
}

func TestBuildEmpty(t *testing.T) {
	out := Build(nil, nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", out)
	}
}
