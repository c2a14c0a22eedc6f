// Package domain models crop-loss estimation at a geographic point.
//
// # Estimation Tiers
//
// A request (latitude, longitude, crop type, field area) is answered by the
// first tier that succeeds, in fixed precedence order:
//
//	satellite    before/after NDVI from an external imagery provider
//	offline_csv  nearest village record from a historical dataset
//	simulation   deterministic synthetic estimate seeded by location
//
// Tier order never depends on estimated quality. The simulation tier cannot
// fail, so the chain always produces a [CropLossEstimate]. DataSource records
// which tier answered.
//
// # NDVI
//
// NDVI = (NIR - RED) / (NIR + RED), in [-1, 1] and expected in [0, 1] for
// cropland. Loss is derived from the relative decline between a "before"
// window (60-90 days back) and a "current" window (last 30 days):
//
//	loss = max(0, (before - current) / before * 100)   when before > 0
//
// The offline tier has a single NDVI observation and compares it against a
// healthy threshold of 0.6 instead.
//
// # Derived Fields
//
// LossPercentage is always clamped into [0, 100] before it is stored.
// AffectedArea = FieldArea * loss / 100 and EstimatedValue = AffectedArea *
// per-hectare crop value (INR); both are derived in [NewEstimate] and are never
// supplied directly. Unknown crop types use the rice value.
//
// # Damage Causes
//
// The vocabulary is fixed: Healthy, Minor Stress, Moderate Stress, Severe
// Stress, Severe Drought, Pest/Disease, Weather Damage, Unknown. Each tier maps
// its own signal onto this vocabulary.
//
// # Eligibility
//
// PMFBY (the crop-insurance scheme) compensates when assessed loss reaches a
// crop-specific minimum: rice, wheat and maize 20%, cotton 25%, sugarcane 30%,
// anything else 20%. The threshold is inclusive.
package domain
