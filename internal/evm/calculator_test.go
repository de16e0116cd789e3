package evm

import (
	"math"
	"testing"
	"time"

	"natacare-cost/pkg/api"
)

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

func fixtureLines() []api.WBSLine {
	return []api.WBSLine{
		{Code: "1.1", Name: "Structural Works", Budget: 1_000_000, Planned: 800_000, Earned: 750_000, Actual: 780_000, Committed: 100_000, Progress: 75},
		{Code: "1.2", Name: "MEP Works", Budget: 2_000_000, Planned: 1_500_000, Earned: 1_400_000, Actual: 1_450_000, Committed: 200_000, Progress: 70},
	}
}

func TestCalculate(t *testing.T) {
	finance := api.FinanceAggregate{TotalActual: 2_230_000, TotalCommitted: 300_000}

	m := Calculate(fixtureLines(), finance, 72.5)

	approx(t, "BAC", m.BAC, 3_000_000, 0.01)
	approx(t, "PV", m.PV, 2_300_000, 0.01)
	approx(t, "AC", m.AC, 2_230_000, 0.01)
	approx(t, "EV", m.EV, 2_175_000, 0.01)
	approx(t, "CV", m.CV, -55_000, 0.01)
	approx(t, "SV", m.SV, -125_000, 0.01)
	approx(t, "CPI", m.CPI, 0.975, 0.001)
	approx(t, "SPI", m.SPI, 0.946, 0.001)
	approx(t, "PercentComplete", m.PercentComplete, 72.5, 0.001)
	approx(t, "PercentSpent", m.PercentSpent, 74.33, 0.01)

	if m.CalculatedAt.IsZero() {
		t.Fatal("CalculatedAt not stamped")
	}
}

func TestCalculateIdentities(t *testing.T) {
	cases := []struct {
		name     string
		finance  api.FinanceAggregate
		progress float64
	}{
		{"fixture", api.FinanceAggregate{TotalActual: 2_230_000}, 72.5},
		{"early", api.FinanceAggregate{TotalActual: 150_000}, 5},
		{"complete", api.FinanceAggregate{TotalActual: 3_200_000}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Calculate(fixtureLines(), tc.finance, tc.progress)
			approx(t, "CV identity", m.CV, m.EV-m.AC, 1e-9)
			approx(t, "SV identity", m.SV, m.EV-m.PV, 1e-9)
			approx(t, "EV formula", m.EV, m.BAC*tc.progress/100, 1e-6)
			approx(t, "EAC identity", m.EAC, m.AC+m.ETC, 1e-6)
			approx(t, "VAC identity", m.VAC, m.BAC-m.EAC, 1e-6)
		})
	}
}

func TestCalculateLineOrderIndependent(t *testing.T) {
	finance := api.FinanceAggregate{TotalActual: 2_230_000}
	lines := fixtureLines()
	reversed := []api.WBSLine{lines[1], lines[0]}

	a := Calculate(lines, finance, 72.5)
	b := Calculate(reversed, finance, 72.5)

	if a.BAC != b.BAC || a.PV != b.PV || a.CPI != b.CPI || a.SPI != b.SPI {
		t.Fatalf("metrics depend on line order: %+v vs %+v", a, b)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixed }
	defer func() { now = restore }()

	finance := api.FinanceAggregate{TotalActual: 2_230_000, TotalCommitted: 300_000}
	a := Calculate(fixtureLines(), finance, 72.5)
	b := Calculate(fixtureLines(), finance, 72.5)
	if a != b {
		t.Fatalf("identical inputs produced different metrics:\n%+v\n%+v", a, b)
	}
}

func TestCalculateDegenerateInputs(t *testing.T) {
	m := Calculate(nil, api.FinanceAggregate{}, 0)

	if m.BAC != 0 || m.PV != 0 || m.EV != 0 || m.AC != 0 {
		t.Fatalf("expected zero base values, got %+v", m)
	}
	if m.CPI != 1 || m.SPI != 1 || m.TCPI != 1 {
		t.Fatalf("expected neutral indices for empty project, got cpi=%v spi=%v tcpi=%v", m.CPI, m.SPI, m.TCPI)
	}
	if m.PercentSpent != 0 {
		t.Fatalf("PercentSpent = %v, want 0", m.PercentSpent)
	}
	if m.Status != api.StatusOnTrack {
		t.Fatalf("Status = %v, want on_track", m.Status)
	}

	for name, v := range map[string]float64{
		"CPI": m.CPI, "SPI": m.SPI, "EAC": m.EAC, "ETC": m.ETC,
		"VAC": m.VAC, "TCPI": m.TCPI, "HealthScore": m.HealthScore,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
}

func TestCalculateStatus(t *testing.T) {
	// One line, 50% progress: EV = 500k. AC and PV tune CPI and SPI.
	lines := []api.WBSLine{{Code: "1", Budget: 1_000_000, Planned: 0}}

	cases := []struct {
		name string
		ac   float64
		pv   float64
		want api.ProjectStatus
	}{
		{"over budget alone", 600_000, 520_000, api.StatusOverBudget}, // cpi 0.833, spi 0.962
		{"behind schedule alone", 510_000, 600_000, api.StatusAtRisk}, // cpi 0.980, spi 0.833
		{"both failing", 625_000, 625_000, api.StatusCritical},        // cpi 0.8, spi 0.8
		{"healthy", 490_000, 500_000, api.StatusOnTrack},              // cpi 1.020, spi 1.0
		{"residual band", 530_000, 535_000, api.StatusAtRisk},         // cpi 0.943, spi 0.935
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines[0].Planned = tc.pv
			m := Calculate(lines, api.FinanceAggregate{TotalActual: tc.ac}, 50)
			if m.Status != tc.want {
				t.Fatalf("status = %v, want %v (cpi=%.3f spi=%.3f)", m.Status, tc.want, m.CPI, m.SPI)
			}
		})
	}
}

func TestDeriveStatusBoundaries(t *testing.T) {
	cases := []struct {
		cpi, spi float64
		want     api.ProjectStatus
	}{
		{0.95, 0.95, api.StatusOnTrack},
		{1.0, 1.0, api.StatusOnTrack},
		{0.8, 0.8, api.StatusCritical},
		{0.85, 0.95, api.StatusOverBudget},
		{1.2, 0.85, api.StatusAtRisk},
		{0.92, 0.96, api.StatusAtRisk},
		{0.9, 0.9, api.StatusAtRisk}, // exactly at the critical threshold is not critical
	}
	for _, tc := range cases {
		if got := deriveStatus(tc.cpi, tc.spi); got != tc.want {
			t.Errorf("deriveStatus(%v, %v) = %v, want %v", tc.cpi, tc.spi, got, tc.want)
		}
	}
}

func TestHealthScore(t *testing.T) {
	if got := HealthScore(1.0, 1.0); got <= 80 {
		t.Fatalf("HealthScore(1, 1) = %v, want > 80", got)
	}
	if got := HealthScore(0.91, 0.8); got >= 80 {
		t.Fatalf("HealthScore(0.91, 0.8) = %v, want < 80", got)
	}
	if got := HealthScore(0.727, 0.8); got >= 80 {
		t.Fatalf("HealthScore(0.727, 0.8) = %v, want < 80", got)
	}

	// Monotonic in CPI.
	prev := -1.0
	for cpi := 0.5; cpi <= 1.5; cpi += 0.1 {
		score := HealthScore(cpi, 0.9)
		if score < prev {
			t.Fatalf("HealthScore not monotonic at cpi=%v: %v < %v", cpi, score, prev)
		}
		prev = score
	}

	if got := HealthScore(0, 0); got < 0 {
		t.Fatalf("HealthScore(0, 0) = %v, want >= 0", got)
	}
}

func TestForecastingFields(t *testing.T) {
	// CPI below 1: remaining work costs more than planned.
	lines := []api.WBSLine{{Code: "1", Budget: 1_000_000, Planned: 550_000}}
	m := Calculate(lines, api.FinanceAggregate{TotalActual: 550_000}, 50)

	if m.CPI >= 1 {
		t.Fatalf("fixture expects cpi < 1, got %v", m.CPI)
	}
	if m.ETC <= m.BAC-m.EV {
		t.Fatalf("ETC = %v, want > remaining budgeted work %v for cpi < 1", m.ETC, m.BAC-m.EV)
	}
	if m.EAC <= m.BAC {
		t.Fatalf("EAC = %v, want > BAC %v for cpi < 1", m.EAC, m.BAC)
	}
	if m.VAC >= 0 {
		t.Fatalf("VAC = %v, want negative for projected overrun", m.VAC)
	}
	// Past performance is below 1, so hitting BAC demands tcpi above 1.
	if m.TCPI <= 1 {
		t.Fatalf("TCPI = %v, want > 1", m.TCPI)
	}
}
