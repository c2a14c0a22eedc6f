package dataset

import (
	"context"
	"fmt"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const selectRecords = `
	SELECT village, crop_variety, observed_on, ndvi_value,
	       temperature_max_c, temperature_min_c, rainfall_mm,
	       humidity_percent, wind_speed_kmh
	FROM historical_records
	ORDER BY id`

const insertRecord = `
	INSERT INTO historical_records (
		village, crop_variety, observed_on, ndvi_value,
		temperature_max_c, temperature_min_c, rainfall_mm,
		humidity_percent, wind_speed_kmh
	) VALUES (
		:village, :crop_variety, :observed_on, :ndvi_value,
		:temperature_max_c, :temperature_min_c, :rainfall_mm,
		:humidity_percent, :wind_speed_kmh
	)`

// schemas holds the historical_records DDL per driver.
var schemas = map[string]string{
	"sqlite3": `
	CREATE TABLE IF NOT EXISTS historical_records (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		village           TEXT NOT NULL,
		crop_variety      TEXT NOT NULL,
		observed_on       TIMESTAMP NOT NULL,
		ndvi_value        REAL NOT NULL,
		temperature_max_c REAL NOT NULL,
		temperature_min_c REAL NOT NULL,
		rainfall_mm       REAL NOT NULL,
		humidity_percent  REAL NOT NULL,
		wind_speed_kmh    REAL NOT NULL
	)`,
	"postgres": `
	CREATE TABLE IF NOT EXISTS historical_records (
		id                BIGSERIAL PRIMARY KEY,
		village           TEXT NOT NULL,
		crop_variety      TEXT NOT NULL,
		observed_on       DATE NOT NULL,
		ndvi_value        DOUBLE PRECISION NOT NULL,
		temperature_max_c DOUBLE PRECISION NOT NULL,
		temperature_min_c DOUBLE PRECISION NOT NULL,
		rainfall_mm       DOUBLE PRECISION NOT NULL,
		humidity_percent  DOUBLE PRECISION NOT NULL,
		wind_speed_kmh    DOUBLE PRECISION NOT NULL
	)`,
}

// SQLStore serves the historical dataset from a sqlite3 or postgres table.
// Rows come back in insertion order.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL connects to the database and verifies it with a ping.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported dataset driver %q", driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s dataset: %w", driver, err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// EnsureSchema creates the historical_records table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemas[s.driver]); err != nil {
		return fmt.Errorf("create historical_records: %w", err)
	}
	return nil
}

// Insert appends records in one transaction.
func (s *SQLStore) Insert(ctx context.Context, records []domain.HistoricalRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i := range records {
		if _, err := tx.NamedExecContext(ctx, insertRecord, &records[i]); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// Records implements domain.HistoricalSource.
func (s *SQLStore) Records(ctx context.Context) ([]domain.HistoricalRecord, error) {
	var records []domain.HistoricalRecord
	if err := s.db.SelectContext(ctx, &records, selectRecords); err != nil {
		return nil, fmt.Errorf("load historical records: %w", err)
	}
	for i := range records {
		records[i].Date = records[i].Date.UTC()
	}
	return records, nil
}

// CheckReadiness pings the database.
func (s *SQLStore) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
