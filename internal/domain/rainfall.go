package domain

import "math"

// RainfallPoint is one month of the analyzed rainfall pattern (mm).
type RainfallPoint struct {
	Month            string  `json:"month"`
	Rainfall         float64 `json:"rainfall"`
	WeightedAvg      float64 `json:"weightedAvg"`
	HistoricalAvg    float64 `json:"historicalAvg"`
	ExpectedNextYear float64 `json:"expectedNextYear"`
	ClimateImpact    float64 `json:"climateImpact"`
}

// RainfallSeries is a calendar-ordered sequence of monthly rainfall points.
type RainfallSeries []RainfallPoint

// monsoonPattern is the typical monthly rainfall shape (mm), Jan through Dec.
var monsoonPattern = [12]float64{20, 15, 25, 40, 60, 120, 180, 190, 140, 70, 30, 10}

// AnalyzeRainfall analyzes the supplied monthly series, or synthesizes a
// monsoon-shaped year when none is available.
func AnalyzeRainfall(series []MonthlyRainfallPoint, gen *Generator) RainfallSeries {
	out, err := DeriveRainfall(series, gen)
	if err != nil {
		return SyntheticRainfall(gen)
	}
	return out
}

// DeriveRainfall computes weighted averages and expectations for observed
// monthly rainfall, in whole millimetres. The first two months have no
// lookback and keep their observed rainfall as the weighted average. It
// returns ErrMissingData for an empty series.
func DeriveRainfall(series []MonthlyRainfallPoint, gen *Generator) (RainfallSeries, error) {
	if len(series) == 0 {
		return nil, ErrMissingData
	}

	out := make(RainfallSeries, len(series))
	for i, p := range series {
		r := p.Rainfall
		weighted := r
		if i >= 2 {
			weighted = round0(series[i-2].Rainfall*0.2 + series[i-1].Rainfall*0.3 + r*0.5)
		}

		fi := float64(i)
		out[i] = RainfallPoint{
			Month:            p.Month,
			Rainfall:         r,
			WeightedAvg:      weighted,
			HistoricalAvg:    round0(r * (1 + 0.1*math.Sin(fi))),
			ExpectedNextYear: round0(r * (0.92 + gen.between(0, 0.16))),
			ClimateImpact:    round0(math.Cos(fi*0.7) * 0.4 * fi),
		}
	}
	return out, nil
}

// SyntheticRainfall scales the monsoon pattern by per-month noise drawn from gen.
func SyntheticRainfall(gen *Generator) RainfallSeries {
	out := make(RainfallSeries, len(monsoonPattern))
	for i, base := range monsoonPattern {
		fi := float64(i)
		rainfall := round0(base * gen.between(0.85, 1.15))

		swing := 1.1
		if i%2 == 0 {
			swing = 0.9
		}

		out[i] = RainfallPoint{
			Month:            Months[i],
			Rainfall:         rainfall,
			WeightedAvg:      round0(rainfall * 0.9),
			HistoricalAvg:    round0(base * (1 + 0.15*math.Sin(fi))),
			ExpectedNextYear: round0(rainfall * (0.95 + gen.between(0, 0.2))),
			ClimateImpact:    round1(base * swing * 0.05),
		}
	}
	return out
}
