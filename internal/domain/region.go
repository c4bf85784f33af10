package domain

import "strings"

// Volume units accepted in the region dataset.
const (
	UnitMCM = "MCM"
	UnitHam = "ham"
)

// hamToMCM converts hectare-meters to million cubic meters (1 ha·m = 10,000 m³).
const hamToMCM = 0.01

// RegionMetrics holds the raw hydrological figures for one region. Volume fields are
// expressed in VolumeUnit (MCM when empty).
type RegionMetrics struct {
	CurrentLevel               float64 `json:"level"`          // m below ground
	ExtractionRate             float64 `json:"extraction"`     // % of recharge extracted
	AnnualRainfall             float64 `json:"rainfall"`       // mm/year
	GroundWaterRecharge        float64 `json:"groundWaterRecharge"`
	GroundWaterExtraction      float64 `json:"groundWaterExtraction"`
	NaturalDischarge           float64 `json:"naturalDischarges"`
	AnnualExtractableResources float64 `json:"annualExtractableResources"`
	Category                   string  `json:"category,omitempty"`
	VolumeUnit                 string  `json:"unit,omitempty"`
}

// Normalized returns a copy with volume fields converted to MCM and negative
// values clamped to zero.
func (m RegionMetrics) Normalized() RegionMetrics {
	factor := 1.0
	if strings.EqualFold(strings.TrimSpace(m.VolumeUnit), UnitHam) {
		factor = hamToMCM
	}

	m.GroundWaterRecharge = nonNegative(m.GroundWaterRecharge) * factor
	m.GroundWaterExtraction = nonNegative(m.GroundWaterExtraction) * factor
	m.NaturalDischarge = nonNegative(m.NaturalDischarge) * factor
	m.AnnualExtractableResources = nonNegative(m.AnnualExtractableResources) * factor
	m.ExtractionRate = nonNegative(m.ExtractionRate)
	m.AnnualRainfall = nonNegative(m.AnnualRainfall)
	m.VolumeUnit = UnitMCM
	return m
}

// HistoricalLevelPoint is one observed annual water-table depth.
type HistoricalLevelPoint struct {
	Year  int     `json:"year"`
	Level float64 `json:"level"`
}

// MonthlyRainfallPoint is one month of observed rainfall.
type MonthlyRainfallPoint struct {
	Month    string  `json:"month"`
	Rainfall float64 `json:"rainfall"`
}

// Months lists the calendar month labels in order.
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
