package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRisk(t *testing.T) {
	t.Run("midpoint region", func(t *testing.T) {
		p := ScoreRisk(RegionMetrics{CurrentLevel: 10, ExtractionRate: 50, AnnualRainfall: 750})

		require.Len(t, p, 5)
		assert.Equal(t, []RiskAxis{AxisDepletion, AxisQuality, AxisRainfallDependent, AxisSustainability, AxisRechargePotential},
			[]RiskAxis{p[0].Axis, p[1].Axis, p[2].Axis, p[3].Axis, p[4].Axis})
		for _, s := range p {
			assert.InDelta(t, 50.0, s.Score, 1e-9, s.Axis)
		}
	})

	t.Run("inputs are clamped", func(t *testing.T) {
		p := ScoreRisk(RegionMetrics{CurrentLevel: -3, ExtractionRate: 150, AnnualRainfall: 3000})

		want := map[RiskAxis]float64{
			AxisDepletion:         100,
			AxisQuality:           0,
			AxisRainfallDependent: 0,
			AxisSustainability:    30,
			AxisRechargePotential: 100,
		}
		for axis, score := range want {
			got, ok := p.Score(axis)
			require.True(t, ok)
			assert.InDelta(t, score, got, 1e-9, axis)
		}
	})

	t.Run("absent metrics score at the midpoint", func(t *testing.T) {
		for _, s := range ScoreRisk(RegionMetrics{}) {
			assert.InDelta(t, 50.0, s.Score, 1e-9, s.Axis)
		}

		p := ScoreRisk(RegionMetrics{CurrentLevel: 10})
		want := map[RiskAxis]float64{
			AxisDepletion:         50,
			AxisQuality:           50,
			AxisRainfallDependent: 50,
			AxisSustainability:    50,
			AxisRechargePotential: 50,
		}
		for axis, score := range want {
			got, ok := p.Score(axis)
			require.True(t, ok)
			assert.InDelta(t, score, got, 1e-9, axis)
		}

		p = ScoreRisk(RegionMetrics{ExtractionRate: 90})
		got, _ := p.Score(AxisSustainability)
		assert.InDelta(t, 100-(0.9*70+0.5*30), got, 1e-9)
	})

	t.Run("scores stay in range", func(t *testing.T) {
		for _, m := range []RegionMetrics{
			{},
			{CurrentLevel: 45, ExtractionRate: 300},
			{AnnualRainfall: 100000},
		} {
			for _, s := range ScoreRisk(m) {
				assert.GreaterOrEqual(t, s.Score, 0.0)
				assert.LessOrEqual(t, s.Score, 100.0)
			}
		}
	})
}

func TestRiskProfile_ScoreMissingAxis(t *testing.T) {
	_, ok := RiskProfile{}.Score(AxisDepletion)
	assert.False(t, ok)
}
