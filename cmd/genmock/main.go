// Command genmock writes a synthetic historical dataset for the villages of
// the coordinate table. Rows are reproducible for a given seed, so the output
// can back fixtures and local runs of the offline tier.
//
// Usage:
//
//	go run ./cmd/genmock -out data/historical.csv -start 2024-01-01 -days 365
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/adapter/dataset"
	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// varieties lists the crops grown in the generated villages.
var varieties = []string{"Rice", "Wheat", "Cotton", "Maize", "Sugarcane"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the historical CSV")
	start := flag.String("start", "2024-01-01", "first observation date (YYYY-MM-DD)")
	days := flag.Int("days", 365, "number of daily observations per village and crop")
	step := flag.Int("step", 3, "days between observations")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	from, err := time.Parse(domain.HistoricalDateLayout, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *days <= 0 || *step <= 0 {
		return fmt.Errorf("-days and -step must be positive")
	}

	records := generate(rand.New(rand.NewSource(*seed)), from, *days, *step) //nolint:gosec // fixture data
	if err := write(*out, records); err != nil {
		return err
	}
	log.Printf("wrote %d records for %d villages to %s", len(records), len(domain.KnownVillages()), *out)
	printStats(records)
	return nil
}

// generate produces one row per village, crop and observation day. NDVI
// follows a seasonal curve with occasional stress dips so that every damage
// cause of the offline tier is represented.
func generate(r *rand.Rand, from time.Time, days, step int) []domain.HistoricalRecord {
	var records []domain.HistoricalRecord //nolint:prealloc // size depends on flags
	for _, village := range domain.KnownVillages() {
		for _, crop := range varieties {
			for d := 0; d < days; d += step {
				date := from.AddDate(0, 0, d)
				season := math.Sin(2 * math.Pi * float64(date.YearDay()) / 365)
				ndvi := 0.55 + 0.2*season + r.NormFloat64()*0.05
				rain := math.Max(0, 8+10*season+r.NormFloat64()*6)
				if r.Float64() < 0.1 {
					ndvi -= 0.25
					rain = r.Float64() * 3
				}
				tmax := 33 - 4*season + r.NormFloat64()*1.5
				records = append(records, domain.HistoricalRecord{
					Village:      village,
					CropVariety:  crop,
					Date:         date,
					NDVI:         round(domain.Clamp(ndvi, 0.05, 0.95), 3),
					TempMaxC:     round(tmax, 1),
					TempMinC:     round(tmax-9-r.Float64()*3, 1),
					RainfallMM:   round(rain, 1),
					HumidityPct:  round(domain.Clamp(55+20*season+r.NormFloat64()*8, 15, 98), 1),
					WindSpeedKmh: round(8+r.Float64()*12, 1),
				})
			}
		}
	}
	return records
}

func write(path string, records []domain.HistoricalRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func printStats(records []domain.HistoricalRecord) {
	stressed := 0
	for i := range records {
		if records[i].NDVI < 0.4 {
			stressed++
		}
	}
	fmt.Println("\n=== Stats ===")
	fmt.Printf("Total: %d\n", len(records))
	fmt.Printf("NDVI < 0.4: %d\n", stressed)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
