package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"evalboard/internal/errors"
)

// Data source modes
const (
	SourceFile      = "file"
	SourceSQL       = "sql"
	SourceSynthetic = "synthetic"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Server   ServerConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// SheetMapping binds a workbook sheet to the category its rows belong to
type SheetMapping struct {
	Sheet    string
	Category string
}

// DataConfig holds data loading settings
type DataConfig struct {
	Source         string
	EvaluationFile string
	Sheets         []SheetMapping
	HeaderRow      int
	SubjectColumn  string
	CategoryColumn string
	InjuryFile     string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// CacheConfig holds time-to-live settings for the table and memoized results
type CacheConfig struct {
	TableTTL     time.Duration
	StatsTTL     time.Duration
	ChartsTTL    time.Duration
	SelectionTTL time.Duration
	InjuryTTL    time.Duration
}

// MetricsConfig points at an optional metric catalog override
type MetricsConfig struct {
	File string
}

// DefaultSheets is the club workbook layout
const DefaultSheets = "2005-06 (4ta)=4ta,RESERVA=Reserva"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dataConfig, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data = *dataConfig

	config.Database = *loadDatabaseConfig()
	config.Server = *loadServerConfig()
	config.Cache = *loadCacheConfig()
	config.Metrics = MetricsConfig{File: getEnvOrDefault("METRICS_FILE", "")}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() (*DataConfig, error) {
	sheets, err := ParseSheets(getEnvOrDefault("EVALUATION_SHEETS", DefaultSheets))
	if err != nil {
		return nil, err
	}

	return &DataConfig{
		Source:         strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceFile)),
		EvaluationFile: getEnvOrDefault("EVALUATION_FILE", "data/evaluaciones.xlsx"),
		Sheets:         sheets,
		HeaderRow:      getEnvIntOrDefault("HEADER_ROW", 2),
		SubjectColumn:  getEnvOrDefault("SUBJECT_COLUMN", "Deportista"),
		CategoryColumn: getEnvOrDefault("CATEGORY_COLUMN", "categoria"),
		InjuryFile:     getEnvOrDefault("INJURY_FILE", "data/lesiones_clean.csv"),
	}, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    getEnvOrDefault("DATABASE_URL", ""),
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		APIPort: getEnvOrDefault("API_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		TableTTL:     getEnvDurationOrDefault("CACHE_TTL_TABLE", time.Hour),
		StatsTTL:     getEnvDurationOrDefault("CACHE_TTL_STATS", 15*time.Minute),
		ChartsTTL:    getEnvDurationOrDefault("CACHE_TTL_CHARTS", 30*time.Minute),
		SelectionTTL: getEnvDurationOrDefault("CACHE_TTL_SELECTION", 5*time.Minute),
		InjuryTTL:    getEnvDurationOrDefault("CACHE_TTL_INJURIES", 30*time.Minute),
	}
}

// ParseSheets parses "sheet=category" pairs separated by commas. A bare
// sheet name uses itself as category.
func ParseSheets(spec string) ([]SheetMapping, error) {
	var out []SheetMapping
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sheet, category, found := strings.Cut(part, "=")
		sheet = strings.TrimSpace(sheet)
		category = strings.TrimSpace(category)
		if !found {
			category = sheet
		}
		if sheet == "" || category == "" {
			return nil, errors.ConfigInvalid("invalid sheet mapping: " + part)
		}
		out = append(out, SheetMapping{Sheet: sheet, Category: category})
	}
	if len(out) == 0 {
		return nil, errors.ConfigInvalid("EVALUATION_SHEETS lists no sheets")
	}
	return out, nil
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.EvaluationFile == "" {
			return errors.ConfigInvalid("EVALUATION_FILE is required for the file data source")
		}
	case SourceSQL:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the sql data source")
		}
	case SourceSynthetic:
	default:
		return errors.ConfigInvalid("unknown DATA_SOURCE: " + config.Data.Source)
	}

	if config.Data.HeaderRow < 1 {
		return errors.ConfigInvalid("HEADER_ROW must be 1 or greater")
	}
	if config.Data.SubjectColumn == "" {
		return errors.ConfigInvalid("SUBJECT_COLUMN is required")
	}

	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("unsupported DATABASE_DRIVER: " + config.Database.Driver)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// plain integers are seconds, matching the dashboard's TTL settings
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
