// Package benchmark provides static industry performance benchmarks.
// The table is built once at startup and passed by reference to whatever
// needs it; nothing mutates it after construction.
package benchmark

// Profile holds typical earned-value performance bands for a project type.
type Profile struct {
	Name             string
	CPILow           float64 // lower bound of the typical CPI band
	CPIHigh          float64
	SPILow           float64
	SPIHigh          float64
	ForecastAccuracy float64 // 0-100, how well trend-based EACs track reality for this type
}

// Table is an immutable lookup of benchmark profiles by project type.
type Table struct {
	profiles map[string]Profile
}

// New builds a table from the given profiles. The input map is copied.
func New(profiles map[string]Profile) *Table {
	copied := make(map[string]Profile, len(profiles))
	for k, v := range profiles {
		copied[k] = v
	}
	return &Table{profiles: copied}
}

// Default returns the built-in industry table.
func Default() *Table {
	return New(defaultProfiles)
}

// Lookup returns the profile for a project type, falling back to the
// general profile for unknown types.
func (t *Table) Lookup(projectType string) Profile {
	if p, ok := t.profiles[projectType]; ok {
		return p
	}
	return t.profiles["general"]
}

// Industry averages for construction project types. CPI/SPI bands reflect
// where healthy projects of each type usually land; forecast accuracy is
// lower for types with volatile ground conditions and procurement.
var defaultProfiles = map[string]Profile{
	"residential": {
		Name:             "Residential",
		CPILow:           0.92,
		CPIHigh:          1.05,
		SPILow:           0.90,
		SPIHigh:          1.02,
		ForecastAccuracy: 78,
	},
	"commercial": {
		Name:             "Commercial",
		CPILow:           0.90,
		CPIHigh:          1.04,
		SPILow:           0.88,
		SPIHigh:          1.02,
		ForecastAccuracy: 74,
	},
	"infrastructure": {
		Name:             "Infrastructure",
		CPILow:           0.85,
		CPIHigh:          1.02,
		SPILow:           0.82,
		SPIHigh:          1.00,
		ForecastAccuracy: 65,
	},
	"industrial": {
		Name:             "Industrial",
		CPILow:           0.88,
		CPIHigh:          1.03,
		SPILow:           0.85,
		SPIHigh:          1.01,
		ForecastAccuracy: 70,
	},
	"general": {
		Name:             "General",
		CPILow:           0.90,
		CPIHigh:          1.03,
		SPILow:           0.88,
		SPIHigh:          1.01,
		ForecastAccuracy: 72,
	},
}
