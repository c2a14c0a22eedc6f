// Command validate checks a historical dataset before the offline tier reads
// it: required columns, parseable values, physical ranges, and villages that
// are missing from the coordinate table (those rows match at (0, 0)).
//
// Usage:
//
//	go run ./cmd/validate -csv data/historical.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/crop-loss-service/internal/adapter/dataset"
	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the historical dataset CSV")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*csvPath))
}

func run(path string) int {
	fmt.Println("=== Historical Dataset Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	records, err := dataset.ReadCSV(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: schema: %v\n", err)
		return 1
	}

	phases := validate(records)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	fmt.Printf("\nRecords: %d\n", len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(records []domain.HistoricalRecord) []*phase {
	return []*phase{
		validateRanges(records),
		validateVillages(records),
		validateCoverage(records),
	}
}

// ── Phase 1: Ranges ──

func validateRanges(records []domain.HistoricalRecord) *phase {
	p := &phase{name: "Phase 1: Value Ranges"}
	today := domain.Now().UTC()

	for i := range records {
		r := &records[i]
		line := i + 2
		if r.NDVI < -1 || r.NDVI > 1 {
			p.errorf("line %d: NDVI_Value %g outside [-1, 1]", line, r.NDVI)
		}
		if r.HumidityPct < 0 || r.HumidityPct > 100 {
			p.errorf("line %d: Humidity_Percent %g outside [0, 100]", line, r.HumidityPct)
		}
		if r.RainfallMM < 0 {
			p.errorf("line %d: Rainfall_mm %g is negative", line, r.RainfallMM)
		}
		if r.WindSpeedKmh < 0 {
			p.errorf("line %d: Wind_Speed_kmh %g is negative", line, r.WindSpeedKmh)
		}
		if r.TempMinC > r.TempMaxC {
			p.errorf("line %d: Temperature_Min_C %g above Temperature_Max_C %g", line, r.TempMinC, r.TempMaxC)
		}
		if r.Date.After(today) {
			p.errorf("line %d: Date %s is in the future", line, r.Date.Format(domain.HistoricalDateLayout))
		}
	}
	return p
}

// ── Phase 2: Villages ──

func validateVillages(records []domain.HistoricalRecord) *phase {
	p := &phase{name: "Phase 2: Village Coordinates"}

	unknown := map[string]int{}
	for i := range records {
		if _, ok := domain.VillageCoordinate(records[i].Village); !ok {
			unknown[records[i].Village]++
		}
	}
	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.errorf("village %q (%d rows) has no coordinates and would match at (0, 0)", name, unknown[name])
	}
	return p
}

// ── Phase 3: Coverage ──

func validateCoverage(records []domain.HistoricalRecord) *phase {
	p := &phase{name: "Phase 3: Coverage and Duplicates"}

	perVillage := map[string]int{}
	seen := map[string]int{}
	for i := range records {
		r := &records[i]
		perVillage[r.Village]++
		key := r.Village + "|" + r.CropVariety + "|" + r.Date.Format(domain.HistoricalDateLayout)
		if first, dup := seen[key]; dup {
			p.errorf("line %d duplicates line %d (%s, %s, %s)", i+2, first,
				r.Village, r.CropVariety, r.Date.Format(domain.HistoricalDateLayout))
			continue
		}
		seen[key] = i + 2
	}
	for _, v := range domain.KnownVillages() {
		if perVillage[v] == 0 {
			p.errorf("village %q has no rows", v)
		}
	}
	return p
}
