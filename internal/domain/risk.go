package domain

// RiskAxis names one dimension of the risk profile.
type RiskAxis string

const (
	AxisDepletion         RiskAxis = "Depletion Risk"
	AxisQuality           RiskAxis = "Quality Risk"
	AxisRainfallDependent RiskAxis = "Rainfall Dependency"
	AxisSustainability    RiskAxis = "Sustainability"
	AxisRechargePotential RiskAxis = "Recharge Potential"
)

// RiskScore is a single axis score in [0, 100].
type RiskScore struct {
	Axis  RiskAxis `json:"subject"`
	Score float64  `json:"A"`
}

// RiskProfile is the five-axis risk profile, always in axis order.
type RiskProfile []RiskScore

// absentRiskFactor is the normalized factor used for a metric that is zero.
const absentRiskFactor = 0.5

// ScoreRisk scores a region on the five risk axes. A zero extraction rate,
// level or rainfall counts as absent and scores at the midpoint.
func ScoreRisk(m RegionMetrics) RiskProfile {
	extraction, level, rainfall := absentRiskFactor, absentRiskFactor, absentRiskFactor
	if m.ExtractionRate != 0 {
		extraction = clamp(m.ExtractionRate, 0, 100) / 100
	}
	if m.CurrentLevel != 0 {
		level = clamp(m.CurrentLevel, 0, 20) / 20
	}
	if m.AnnualRainfall != 0 {
		rainfall = clamp(1-m.AnnualRainfall/1500, 0, 1)
	}

	return RiskProfile{
		{Axis: AxisDepletion, Score: round2(extraction * 100)},
		{Axis: AxisQuality, Score: round2(level * 100)},
		{Axis: AxisRainfallDependent, Score: round2(rainfall * 100)},
		{Axis: AxisSustainability, Score: round2(100 - (extraction*70 + level*30))},
		{Axis: AxisRechargePotential, Score: round2(100 - rainfall*100)},
	}
}

// Score returns the score for axis, or false if the profile lacks it.
func (p RiskProfile) Score(axis RiskAxis) (float64, bool) {
	for _, s := range p {
		if s.Axis == axis {
			return s.Score, true
		}
	}
	return 0, false
}
