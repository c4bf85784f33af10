package domain

import "math"

// ProjectionPoint is one horizon year of the scenario projection. Current is
// only set for the anchor year.
type ProjectionPoint struct {
	Year                 int      `json:"year"`
	Current              *float64 `json:"current,omitempty"`
	BusinessAsUsual      float64  `json:"businessAsUsual"`
	BusinessAsUsualLower float64  `json:"businessAsUsualLower"`
	BusinessAsUsualUpper float64  `json:"businessAsUsualUpper"`
	Conservative         float64  `json:"conservative"`
	Aggressive           float64  `json:"aggressive"`
	WorstCase            float64  `json:"worstCase"`
}

// ProjectionSeries is the projection from the anchor year forward.
type ProjectionSeries []ProjectionPoint

const (
	// ProjectionHorizon is the number of projected years, anchor year included.
	ProjectionHorizon = 6

	minProjectedLevel  = 1.0
	uncertaintyPerYear = 0.05
	climateDriftPerYr  = -0.02

	// defaultExtractionRate stands in for an absent (zero) extraction rate.
	defaultExtractionRate = 50.0
)

// Project extends the trend series into four scenarios over ProjectionHorizon
// years. The business-as-usual band never narrows as the horizon grows.
func Project(trend TrendSeries, m RegionMetrics) ProjectionSeries {
	if len(trend) == 0 {
		return ProjectionSeries{}
	}

	anchorLevel, anchorYear := anchor(trend)
	f := ProjectionFactor(historicalSlope(trend), m)

	conservativeRate, aggressiveRate := f, f
	if f < 0 {
		conservativeRate = f * 0.5
		aggressiveRate = f * 0.25
	}

	out := make(ProjectionSeries, ProjectionHorizon)
	var halfWidth float64
	for i := range out {
		fi := float64(i)
		year := anchorYear + i
		c := ClimateImpact(year, anchorYear)

		bau := round2(floorLevel(anchorLevel + f*fi + c))
		halfWidth = math.Max(halfWidth, round2(bau*uncertaintyPerYear*fi))

		// The lower bound shares the 1 m floor; upper keeps the full band width
		// so the band never narrows.
		lower := round2(floorLevel(bau - halfWidth))
		upper := round2(lower + 2*halfWidth)

		var recovery float64
		if i > 2 {
			recovery = 0.1 * (fi - 2)
		}

		p := ProjectionPoint{
			Year:                 year,
			BusinessAsUsual:      bau,
			BusinessAsUsualLower: lower,
			BusinessAsUsualUpper: upper,
			Conservative:         round2(floorLevel(anchorLevel + conservativeRate*fi + c*0.7)),
			Aggressive:           round2(floorLevel(anchorLevel + aggressiveRate*fi + c*0.5 + recovery)),
			WorstCase:            round2(floorLevel(anchorLevel + f*1.5*fi + c*1.5)),
		}
		if i == 0 {
			current := anchorLevel
			p.Current = &current
		}
		out[i] = p
	}
	return out
}

// RainfallFactor maps annual rainfall onto [-1, 1] around a 900 mm norm.
// Zero rainfall means no data and contributes nothing.
func RainfallFactor(rainfall float64) float64 {
	if rainfall == 0 {
		return 0
	}
	return clamp((rainfall-900)/500, -1, 1)
}

// RechargeBalance is the recharge surplus relative to recharge. It is zero
// unless both recharge and extraction are present.
func RechargeBalance(recharge, extraction float64) float64 {
	if recharge <= 0 || extraction <= 0 {
		return 0
	}
	return (recharge - extraction) / math.Max(recharge, 1)
}

// ExtractionPenalty is the yearly level adjustment for an extraction rate (%).
func ExtractionPenalty(rate float64) float64 {
	switch {
	case rate > 80:
		return -0.4
	case rate > 60:
		return -0.2
	case rate > 40:
		return -0.1
	default:
		return 0.05
	}
}

// ProjectionFactor combines the historical slope with the region's pressures
// into a yearly level change. An absent extraction rate is taken as
// defaultExtractionRate.
func ProjectionFactor(slope float64, m RegionMetrics) float64 {
	rate := m.ExtractionRate
	if rate == 0 {
		rate = defaultExtractionRate
	}
	return slope*1.2 +
		ExtractionPenalty(rate) +
		RainfallFactor(m.AnnualRainfall)*0.1 +
		RechargeBalance(m.GroundWaterRecharge, m.GroundWaterExtraction)*0.15
}

// ClimateImpact is the cumulative climate drift for year relative to the anchor.
func ClimateImpact(year, anchorYear int) float64 {
	return climateDriftPerYr * float64(year-anchorYear)
}

func anchor(trend TrendSeries) (level float64, year int) {
	last := trend[len(trend)-1]
	return last.Level, last.Year
}

func historicalSlope(trend TrendSeries) float64 {
	n := len(trend)
	return (trend[n-1].Level - trend[0].Level) / math.Max(1, float64(n-1))
}

func floorLevel(v float64) float64 {
	return math.Max(minProjectedLevel, v)
}
