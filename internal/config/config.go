package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Dataset drivers accepted by DATASET_DRIVER.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Satellite tier.
	ImageryEnabled      bool
	ImageryAPIURL       string
	ImageryAPIKey       string
	ImageryTimeout      time.Duration
	ImageryCacheSize    int
	ImageryMaxCloudPct  float64
	ImageryBufferMPerHa float64

	// Offline tier.
	DatasetDriver         string
	DatasetPath           string
	DatasetDSN            string
	OfflineWindowDays     int
	OfflineUnknownVillage string

	SimulationSeedScale float64
	ModelPath           string

	// Audit publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaEstimateTopic string
	AuditBatchSize     int
	AuditFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	imageryTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("IMAGERY_TIMEOUT", "20s"))
	if err != nil || imageryTimeout <= 0 {
		return nil, errors.New("invalid IMAGERY_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	maxCloud, err := parsePositiveFloat("IMAGERY_MAX_CLOUD_PCT", "20")
	if err != nil {
		return nil, err
	}
	bufferPerHa, err := parsePositiveFloat("IMAGERY_BUFFER_M_PER_HA", "50")
	if err != nil {
		return nil, err
	}
	seedScale, err := parsePositiveFloat("SIMULATION_SEED_SCALE", "1000")
	if err != nil {
		return nil, err
	}

	windowDays, err := strconv.Atoi(sharedcfg.EnvOrDefault("OFFLINE_WINDOW_DAYS", "7"))
	if err != nil || windowDays < 1 || windowDays > 366 {
		return nil, errors.New("invalid OFFLINE_WINDOW_DAYS: must be 1-366")
	}

	apiKey := os.Getenv("IMAGERY_API_KEY")
	imageryEnabled := apiKey != ""
	if v := os.Getenv("IMAGERY_ENABLED"); v != "" {
		imageryEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ImageryEnabled:      imageryEnabled,
		ImageryAPIURL:       sharedcfg.EnvOrDefault("IMAGERY_API_URL", "https://imagery.example.invalid/v1"),
		ImageryAPIKey:       apiKey,
		ImageryTimeout:      imageryTimeout,
		ImageryCacheSize:    parseCacheSize(),
		ImageryMaxCloudPct:  maxCloud,
		ImageryBufferMPerHa: bufferPerHa,

		DatasetDriver:         sharedcfg.EnvOrDefault("DATASET_DRIVER", DriverCSV),
		DatasetPath:           sharedcfg.EnvOrDefault("DATASET_PATH", "data/historical.csv"),
		DatasetDSN:            os.Getenv("DATASET_DSN"),
		OfflineWindowDays:     windowDays,
		OfflineUnknownVillage: sharedcfg.EnvOrDefault("OFFLINE_UNKNOWN_VILLAGE", "origin"),

		SimulationSeedScale: seedScale,
		ModelPath:           os.Getenv("MODEL_PATH"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEstimateTopic: sharedcfg.EnvOrDefault("KAFKA_ESTIMATE_TOPIC", "crop-loss-estimates"),
		AuditBatchSize:     batchSize,
		AuditFlushInterval: flushInterval,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ImageryEnabled && c.ImageryAPIKey == "" {
		return errors.New("IMAGERY_ENABLED is true but IMAGERY_API_KEY is not set")
	}
	switch c.DatasetDriver {
	case DriverCSV:
		if c.DatasetPath == "" {
			return errors.New("DATASET_PATH is required for the csv driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.DatasetDSN == "" {
			return fmt.Errorf("DATASET_DSN is required for the %s driver", c.DatasetDriver)
		}
	default:
		return fmt.Errorf("invalid DATASET_DRIVER %q: must be csv, sqlite3 or postgres", c.DatasetDriver)
	}
	if c.OfflineUnknownVillage != "origin" && c.OfflineUnknownVillage != "skip" {
		return fmt.Errorf("invalid OFFLINE_UNKNOWN_VILLAGE %q: must be origin or skip", c.OfflineUnknownVillage)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaEstimateTopic == "" {
			return errors.New("KAFKA_ESTIMATE_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func parsePositiveFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}

func parseCacheSize() int {
	if s := os.Getenv("IMAGERY_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 512
}
