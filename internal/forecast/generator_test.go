package forecast

import (
	"math"
	"testing"
	"time"

	"natacare-cost/internal/benchmark"
	"natacare-cost/pkg/api"
)

// overBudgetMetrics is a standard over-budget, slightly-behind project.
func overBudgetMetrics() api.EVMMetrics {
	return api.EVMMetrics{
		BAC:             3_000_000,
		PV:              2_300_000,
		EV:              2_175_000,
		AC:              2_255_000,
		CPI:             0.964,
		SPI:             0.946,
		ETC:             855_000,
		EAC:             3_110_000,
		PercentComplete: 72.5,
	}
}

func TestGenerateSelectsCPIByDefault(t *testing.T) {
	fc := NewGenerator(nil).Generate(overBudgetMetrics())

	if fc.SelectedMethod != api.MethodCPI {
		t.Fatalf("SelectedMethod = %v, want cpi", fc.SelectedMethod)
	}
	if fc.SelectedEAC != fc.EACByCPI {
		t.Fatalf("SelectedEAC = %v, want EACByCPI %v", fc.SelectedEAC, fc.EACByCPI)
	}
}

func TestGenerateEACMethods(t *testing.T) {
	m := overBudgetMetrics()
	fc := NewGenerator(nil).Generate(m)

	if fc.EACByCPI <= m.BAC {
		t.Fatalf("EACByCPI = %v, want > BAC %v for cpi < 1", fc.EACByCPI, m.BAC)
	}

	wantCPI := m.BAC / m.CPI
	if math.Abs(fc.EACByCPI-wantCPI) > 0.01 {
		t.Fatalf("EACByCPI = %v, want %v", fc.EACByCPI, wantCPI)
	}

	wantSPI := m.AC + (m.BAC-m.PV)/m.SPI
	if math.Abs(fc.EACBySPI-wantSPI) > 0.01 {
		t.Fatalf("EACBySPI = %v, want %v", fc.EACBySPI, wantSPI)
	}

	wantBlend := m.AC + (m.BAC-m.EV)/(m.CPI*m.SPI)
	if math.Abs(fc.EACByCPIAndSPI-wantBlend) > 0.01 {
		t.Fatalf("EACByCPIAndSPI = %v, want %v", fc.EACByCPIAndSPI, wantBlend)
	}
}

func TestGenerateScheduleDominanceOverride(t *testing.T) {
	m := overBudgetMetrics()
	m.SPI = 0.7

	fc := NewGenerator(nil).Generate(m)
	if fc.SelectedMethod != api.MethodCPITimesSPI {
		t.Fatalf("SelectedMethod = %v, want cpi_spi when schedule slip dominates", fc.SelectedMethod)
	}
	if fc.SelectedEAC != fc.EACByCPIAndSPI {
		t.Fatalf("SelectedEAC = %v, want blended %v", fc.SelectedEAC, fc.EACByCPIAndSPI)
	}
}

func TestGenerateCompletionDate(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixed }
	defer func() { now = restore }()

	fc := NewGenerator(nil).Generate(overBudgetMetrics())

	if fc.DaysRemaining <= 0 {
		t.Fatalf("DaysRemaining = %d, want > 0 while work remains", fc.DaysRemaining)
	}
	if !fc.ForecastCompletionDate.After(fixed) {
		t.Fatalf("ForecastCompletionDate %v not after %v", fc.ForecastCompletionDate, fixed)
	}
	want := fixed.AddDate(0, 0, fc.DaysRemaining)
	if !fc.ForecastCompletionDate.Equal(want) {
		t.Fatalf("ForecastCompletionDate = %v, want %v", fc.ForecastCompletionDate, want)
	}
}

func TestGenerateConfidence(t *testing.T) {
	fc := NewGenerator(benchmark.Default()).WithProjectType("commercial").Generate(overBudgetMetrics())

	if fc.ConfidenceLevel <= 0 || fc.ConfidenceLevel > 100 {
		t.Fatalf("ConfidenceLevel = %v, want in (0, 100]", fc.ConfidenceLevel)
	}
	factors := map[string]float64{
		"DataQuality":        fc.ConfidenceFactors.DataQuality,
		"HistoricalAccuracy": fc.ConfidenceFactors.HistoricalAccuracy,
		"ExternalFactors":    fc.ConfidenceFactors.ExternalFactors,
	}
	for name, v := range factors {
		if v <= 0 {
			t.Fatalf("%s = %v, want > 0", name, v)
		}
	}
}

func TestGenerateAssumptions(t *testing.T) {
	fc := NewGenerator(nil).Generate(overBudgetMetrics())
	if len(fc.Assumptions) != 4 {
		t.Fatalf("len(Assumptions) = %d, want 4", len(fc.Assumptions))
	}
}

func TestGenerateDegenerateMetrics(t *testing.T) {
	// Fresh project: everything zero, indices neutral.
	m := api.EVMMetrics{CPI: 1, SPI: 1, TCPI: 1}
	fc := NewGenerator(nil).Generate(m)

	for name, v := range map[string]float64{
		"EACByCPI":       fc.EACByCPI,
		"EACBySPI":       fc.EACBySPI,
		"EACByCPIAndSPI": fc.EACByCPIAndSPI,
		"SelectedEAC":    fc.SelectedEAC,
		"Confidence":     fc.ConfidenceLevel,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
	if fc.ConfidenceLevel <= 0 {
		t.Fatalf("ConfidenceLevel = %v, want > 0 even for empty project", fc.ConfidenceLevel)
	}
}

func TestGenerateZeroIndicesGuarded(t *testing.T) {
	m := api.EVMMetrics{BAC: 1_000_000, PV: 500_000, EV: 400_000, AC: 450_000}
	// CPI and SPI deliberately zero: the generator must not divide by them.
	fc := NewGenerator(nil).Generate(m)

	if math.IsNaN(fc.EACByCPI) || math.IsInf(fc.EACByCPI, 0) {
		t.Fatalf("EACByCPI not finite: %v", fc.EACByCPI)
	}
	if fc.EACByCPI != m.BAC {
		t.Fatalf("EACByCPI = %v, want BAC fallback %v", fc.EACByCPI, m.BAC)
	}
	if fc.EACBySPI != m.AC+(m.BAC-m.PV) {
		t.Fatalf("EACBySPI = %v, want remaining-at-plan fallback", fc.EACBySPI)
	}
}

func TestDaysRemainingStretchedBySlip(t *testing.T) {
	onPlan := overBudgetMetrics()
	onPlan.SPI = 1.0
	behind := overBudgetMetrics()
	behind.SPI = 0.5

	a := daysRemaining(onPlan)
	b := daysRemaining(behind)
	if b <= a {
		t.Fatalf("daysRemaining behind schedule (%d) should exceed on-plan (%d)", b, a)
	}
}
