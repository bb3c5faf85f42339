package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const (
	defaultTigerwebURL = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/PUMA_TAD_TAZ_UGA_ZCTA/MapServer/7/query"
	maxBatchSize       = 200
)

// Config holds all settings, populated from environment variables.
type Config struct {
	LedgerPath       string
	AvailabilityPath string
	GeometryPath     string
	LedgerStrict     bool

	TigerwebURL      string
	TigerwebZIPField string
	TigerwebTimeout  time.Duration
	BatchSize        int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// UI variant and report settings.
	BrandFilter     bool
	ExportEnabled   bool
	ReportCacheSize int

	// Kafka publisher configuration. Only the publish command needs brokers.
	KafkaBrokers           []string
	KafkaAvailabilityTopic string
}

// LoadDotEnv loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	tigerwebTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("TIGERWEB_TIMEOUT", "30s"))
	if err != nil || tigerwebTimeout <= 0 {
		return nil, errors.New("invalid TIGERWEB_TIMEOUT")
	}

	batchSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("BOUNDARY_BATCH_SIZE", "25"))
	if err != nil || batchSize < 1 || batchSize > maxBatchSize {
		return nil, fmt.Errorf("invalid BOUNDARY_BATCH_SIZE: must be between 1 and %d", maxBatchSize)
	}

	reportCacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("REPORT_CACHE_SIZE", "16"))
	if err != nil || reportCacheSize < 1 {
		return nil, errors.New("invalid REPORT_CACHE_SIZE: must be a positive integer")
	}

	strict, err := parseBool("LEDGER_STRICT", false)
	if err != nil {
		return nil, err
	}
	brandFilter, err := parseBool("UI_BRAND_FILTER", false)
	if err != nil {
		return nil, err
	}
	exportEnabled, err := parseBool("UI_EXPORT_ENABLED", true)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		LedgerPath:       sharedcfg.EnvOrDefault("LEDGER_PATH", "exporter/refined.txt"),
		AvailabilityPath: sharedcfg.EnvOrDefault("AVAILABILITY_PATH", "data/availability.json"),
		GeometryPath:     sharedcfg.EnvOrDefault("GEOMETRY_PATH", "data/columbus-zips.geojson"),
		LedgerStrict:     strict,

		TigerwebURL:      sharedcfg.EnvOrDefault("TIGERWEB_URL", defaultTigerwebURL),
		TigerwebZIPField: sharedcfg.EnvOrDefault("TIGERWEB_ZIP_FIELD", "ZCTA5"),
		TigerwebTimeout:  tigerwebTimeout,
		BatchSize:        batchSize,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BrandFilter:     brandFilter,
		ExportEnabled:   exportEnabled,
		ReportCacheSize: reportCacheSize,

		KafkaBrokers:           brokers,
		KafkaAvailabilityTopic: sharedcfg.EnvOrDefault("KAFKA_AVAILABILITY_TOPIC", "zip-availability"),
	}

	if cfg.LedgerPath == "" {
		return nil, errors.New("LEDGER_PATH is required")
	}
	if cfg.TigerwebZIPField == "" {
		return nil, errors.New("TIGERWEB_ZIP_FIELD is required")
	}

	return cfg, nil
}

// ValidatePublish checks the settings the Kafka publisher needs.
func (c *Config) ValidatePublish() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaAvailabilityTopic == "" {
		return errors.New("KAFKA_AVAILABILITY_TOPIC is required")
	}
	return nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}
