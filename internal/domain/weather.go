package domain

import "math/rand"

// Weather holds the covariates used by the explanation model.
type Weather struct {
	RainfallMM   float64 `json:"rainfall"`
	TemperatureC float64 `json:"temperature"`
	HumidityPct  float64 `json:"humidity"`
	WindSpeedKmh float64 `json:"wind_speed"`
}

// SimulatedWeather returns deterministic plausible weather for a location,
// seeded by int64((lat+lon)*1000).
func SimulatedWeather(lat, lon float64) Weather {
	r := rand.New(rand.NewSource(int64((lat + lon) * 1000))) //nolint:gosec // deterministic simulation, not security
	return Weather{
		RainfallMM:   Uniform(r, 0, 25),
		TemperatureC: Uniform(r, 25, 40),
		HumidityPct:  Uniform(r, 40, 80),
		WindSpeedKmh: Uniform(r, 8, 18),
	}
}

// Uniform draws a float in [lo, hi) from r.
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}
