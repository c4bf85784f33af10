// Package domain holds the groundwater analytics engine: classification,
// trend decomposition, rainfall analysis, scenario projection, risk scoring
// and water balance. Everything here is pure and safe for concurrent use,
// except [Generator], which callers create per analysis.
//
// # Units
//
// Volumes (recharge, extraction, natural discharge, extractable resources)
// are million cubic meters (MCM). Some datasets report hectare-meters; call
// [RegionMetrics.Normalized] to convert (1 ham = 0.01 MCM). Water level is
// depth below ground in meters, so a larger value means a deeper water table.
// Rainfall is millimeters.
//
// # Classification
//
// The extraction ratio is groundwater extraction over annual extractable
// resources. Thresholds:
//
//	ratio > 1.0   Over-Exploited
//	ratio > 0.9   Critical
//	ratio > 0.7   Semi-Critical
//	otherwise     Saline if rainfall < 700 mm, else Safe
//
// An explicit category supplied with the region data wins over the computed
// rule, but a region with neither extraction nor extractable resources is
// always No-Data. Rainfall never downgrades one of the ratio categories.
//
// # Fallback series
//
// When a region has no observed level or rainfall series, plausible ones are
// synthesized from a [Generator]. The same seed yields the same series, so
// fallback output is reproducible. The synthetic level series ends at the
// current year from the package clock (see [SetClock]).
//
// # Projection
//
// [Project] extends the trend six years from its last point under four
// scenarios. The yearly rate combines the historical slope with extraction,
// rainfall and recharge pressures (see [ProjectionFactor]). Levels are
// floored at 1 m. The business-as-usual band grows 5% of the level per
// year and never narrows.
package domain
