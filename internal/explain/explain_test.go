package explain_test

import (
	"io"
	"log/slog"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// calmVector has optimal weather, so only the NDVI decline drives the rule.
func calmVector() domain.FeatureVector {
	return domain.FeatureVector{
		NDVIBefore:      0.7,
		NDVICurrent:     0.5,
		Rainfall:        15,
		Temperature:     30,
		Humidity:        60,
		WindSpeed:       10,
		DaysSinceSowing: 60,
	}
}

func ptr(v float64) *float64 { return &v }
