package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// CSVSource reads the historical dataset from a CSV file. The file is read
// wholesale on every call, so edits are picked up without a restart.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Records implements domain.HistoricalSource.
func (s *CSVSource) Records(_ context.Context) ([]domain.HistoricalRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open historical dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// CheckReadiness reports whether the dataset file is readable.
func (s *CSVSource) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("historical dataset: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("historical dataset %s is a directory", s.path)
	}
	return nil
}

// ReadCSV parses a historical dataset. Columns are addressed by header name,
// so extra columns and any column order are accepted.
func ReadCSV(r io.Reader) ([]domain.HistoricalRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("historical dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.HistoricalRecord //nolint:prealloc // size depends on file contents
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV writes records with the standard header.
func WriteCSV(w io.Writer, records []domain.HistoricalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.HistoricalColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{
			rec.Village,
			rec.CropVariety,
			rec.Date.Format(domain.HistoricalDateLayout),
			formatFloat(rec.NDVI),
			formatFloat(rec.TempMaxC),
			formatFloat(rec.TempMinC),
			formatFloat(rec.RainfallMM),
			formatFloat(rec.HumidityPct),
			formatFloat(rec.WindSpeedKmh),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range domain.HistoricalColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("historical dataset is missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (domain.HistoricalRecord, error) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(domain.HistoricalDateLayout, field("Date"))
	if err != nil {
		return domain.HistoricalRecord{}, fmt.Errorf("invalid Date %q: %w", field("Date"), err)
	}

	rec := domain.HistoricalRecord{
		Village:     field("Village"),
		CropVariety: field("Crop_Variety"),
		Date:        date,
	}
	numeric := []struct {
		col string
		dst *float64
	}{
		{"NDVI_Value", &rec.NDVI},
		{"Temperature_Max_C", &rec.TempMaxC},
		{"Temperature_Min_C", &rec.TempMinC},
		{"Rainfall_mm", &rec.RainfallMM},
		{"Humidity_Percent", &rec.HumidityPct},
		{"Wind_Speed_kmh", &rec.WindSpeedKmh},
	}
	for _, n := range numeric {
		v, err := strconv.ParseFloat(field(n.col), 64)
		if err != nil {
			return domain.HistoricalRecord{}, fmt.Errorf("invalid %s %q", n.col, field(n.col))
		}
		*n.dst = v
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
