package domain

import "context"

// Range is a predicted min/max interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 { return (r.Min + r.Max) / 2 }

// WaterQuality holds the predicted groundwater quality parameters.
type WaterQuality struct {
	Temperature  Range `json:"temperature"`            // °C
	PH           Range `json:"pH"`
	Conductivity Range `json:"conductivity,omitempty"` // µmhos/cm
}

// Recharge is the estimated recharge volume (MCM) and its share of the
// theoretical maximum (percent).
type Recharge struct {
	Volume     float64 `json:"volume"`
	Percentage float64 `json:"percentage"`
}

// Plots carries base64-encoded PNG charts rendered by the prediction service.
type Plots struct {
	Plot2D string `json:"plot_2d"`
	Plot3D string `json:"plot_3d"`
}

// Prediction is the prediction service's answer for one region.
type Prediction struct {
	Region   string       `json:"region"`
	Quality  WaterQuality `json:"quality"`
	Recharge Recharge     `json:"recharge"`
	Plots    Plots        `json:"plots"`
}

// Predictor fetches externally computed predictions for a region.
type Predictor interface {
	// Predict returns the prediction for region. Failures are reported as
	// *ExternalServiceError.
	Predict(ctx context.Context, region string) (Prediction, error)
}
