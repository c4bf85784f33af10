package domain

import "math"

// TrendPoint is one year of the decomposed water-level trend.
type TrendPoint struct {
	Year          int      `json:"year"`
	Level         float64  `json:"level"`
	Trend         float64  `json:"trend"`
	SafeThreshold float64  `json:"safe"`
	FiveYearAvg   *float64 `json:"fiveYearAvg,omitempty"`
	ClimateImpact float64  `json:"climateImpact"`
	HumanImpact   float64  `json:"humanImpact"`
}

// TrendSeries is a chronological sequence of trend points.
type TrendSeries []TrendPoint

const (
	syntheticYears      = 10
	movingAverageWindow = 5
	// defaultSlope is used when a single observation leaves the slope undefined.
	defaultSlope = -0.05
)

// SynthesizeHistoricalTrend decomposes the supplied series, or synthesizes a
// ten-year series ending in the current year when none is available.
func SynthesizeHistoricalTrend(series []HistoricalLevelPoint, gen *Generator) TrendSeries {
	trend, err := DeriveHistoricalTrend(series)
	if err != nil {
		return SyntheticHistoricalTrend(CurrentYear(), gen)
	}
	return trend
}

// DeriveHistoricalTrend computes the trend decomposition of observed levels.
// It returns ErrMissingData for an empty series.
func DeriveHistoricalTrend(series []HistoricalLevelPoint) (TrendSeries, error) {
	n := len(series)
	if n == 0 {
		return nil, ErrMissingData
	}

	first := series[0].Level
	slope := defaultSlope
	if n > 1 {
		slope = (series[n-1].Level - first) / float64(n-1)
	}

	out := make(TrendSeries, n)
	var window float64
	for i, p := range series {
		window += p.Level
		avg := p.Level
		if i >= movingAverageWindow {
			window -= series[i-movingAverageWindow].Level
		}
		if i >= movingAverageWindow-1 {
			avg = round1(window / movingAverageWindow)
		}

		fi := float64(i)
		out[i] = TrendPoint{
			Year:          p.Year,
			Level:         p.Level,
			Trend:         round1(first + slope*fi),
			SafeThreshold: math.Min(p.Level*1.2, p.Level+2),
			FiveYearAvg:   &avg,
			ClimateImpact: round1(0.3 * math.Sin(fi*0.8)),
			HumanImpact:   round1(-0.03 * fi),
		}
	}
	return out, nil
}

// SyntheticHistoricalTrend builds a gently declining ten-year series ending at
// endYear, anchored at a level between 15 and 20 m drawn from gen.
func SyntheticHistoricalTrend(endYear int, gen *Generator) TrendSeries {
	anchor := round1(gen.between(15, 20))

	out := make(TrendSeries, syntheticYears)
	for i := range out {
		fi := float64(i)
		level := round1(anchor - fi/20 + 0.3*math.Sin(fi*0.5))

		safe := anchor - 1
		if i > 5 {
			safe -= 0.2
		}

		out[i] = TrendPoint{
			Year:          endYear - syntheticYears + 1 + i,
			Level:         level,
			Trend:         round1(level - fi/15),
			SafeThreshold: round1(safe),
			ClimateImpact: round1(0.4 * math.Cos(fi*0.8)),
			HumanImpact:   round1(-0.05 * fi),
		}
	}
	return out
}
