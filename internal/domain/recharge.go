package domain

import "math"

// Reference catchment used to turn a quality factor into a recharge volume.
const (
	referenceRainfallM    = 1.5
	referenceCatchmentM2  = 100 * 1_000_000
	baseRechargeCoeff     = 0.20
	cubicMetersPerMCM     = 1_000_000
	optimalPH             = 7.5
	optimalTemperatureC   = 25.0
	conductivityNormalize = 5000.0
)

// EstimateRechargePotential derives recharge from predicted water quality.
// Each parameter contributes a factor that peaks at its optimum; the weighted
// quality factor scales the recharge of a 100 km² reference catchment.
func EstimateRechargePotential(q WaterQuality) Recharge {
	phFactor := 1 - math.Abs(optimalPH-q.PH.Mid())/optimalPH
	condFactor := 1 / (1 + q.Conductivity.Mid()/conductivityNormalize)
	tempFactor := 1 - math.Abs(optimalTemperatureC-q.Temperature.Mid())/optimalTemperatureC

	quality := phFactor*0.4 + condFactor*0.4 + tempFactor*0.2

	maxVolume := referenceRainfallM * referenceCatchmentM2 * baseRechargeCoeff / cubicMetersPerMCM
	return Recharge{
		Volume:     maxVolume * quality,
		Percentage: quality * 100,
	}
}
