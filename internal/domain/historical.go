package domain

import (
	"context"
	"time"
)

// HistoricalRecord is one row of the offline agricultural dataset.
type HistoricalRecord struct {
	Village      string    `json:"village" db:"village"`
	CropVariety  string    `json:"crop_variety" db:"crop_variety"`
	Date         time.Time `json:"date" db:"observed_on"`
	NDVI         float64   `json:"ndvi_value" db:"ndvi_value"`
	TempMaxC     float64   `json:"temperature_max_c" db:"temperature_max_c"`
	TempMinC     float64   `json:"temperature_min_c" db:"temperature_min_c"`
	RainfallMM   float64   `json:"rainfall_mm" db:"rainfall_mm"`
	HumidityPct  float64   `json:"humidity_percent" db:"humidity_percent"`
	WindSpeedKmh float64   `json:"wind_speed_kmh" db:"wind_speed_kmh"`
}

// HistoricalColumns lists the dataset columns in file order.
var HistoricalColumns = []string{
	"Village",
	"Crop_Variety",
	"Date",
	"NDVI_Value",
	"Temperature_Max_C",
	"Temperature_Min_C",
	"Rainfall_mm",
	"Humidity_Percent",
	"Wind_Speed_kmh",
}

// HistoricalDateLayout is the date format used by the dataset.
const HistoricalDateLayout = "2006-01-02"

// HistoricalSource loads the full offline dataset.
type HistoricalSource interface {
	Records(ctx context.Context) ([]HistoricalRecord, error)
}

// villageCoordinates is the fixed village lookup of the Ranga Reddy dataset.
// It is not derived from the dataset itself.
var villageCoordinates = map[string]Geo{
	"Chevella":     {Lat: 17.2, Lon: 78.1},
	"Manchal":      {Lat: 17.1, Lon: 78.2},
	"Shankarpalle": {Lat: 17.3, Lon: 78.0},
}

// VillageCoordinate looks up a village; ok is false for villages not in the table.
func VillageCoordinate(village string) (Geo, bool) {
	g, ok := villageCoordinates[village]
	return g, ok
}

// KnownVillages returns the villages present in the coordinate table.
func KnownVillages() []string {
	return []string{"Chevella", "Manchal", "Shankarpalle"}
}
