package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings of the tracker.
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	Env string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string

	// Filesystem
	DataDir      string // downloaded data-drop files and the derived caches
	OutputDir    string // published charts and tables
	PipelineFile string // optional YAML with pipeline settings

	// Pipeline
	Workers    int // 0 = one less than the number of CPUs
	JobTimeout time.Duration
	Rebuild    bool

	// Rendering
	GnuplotPath string // empty = write scripts and data only

	// Remote data drop
	Drive DriveConfig

	// Redis (shared request limiter)
	Redis RedisConfig

	// Preview server and scheduler
	Port            string
	RefreshSchedule string
}

// DriveConfig holds the remote folder API settings
type DriveConfig struct {
	BaseURL           string
	APIKey            string
	ReadmeFolderID    string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DefaultReadmeFolderID is the public folder that carries the data-drop readme.
const DefaultReadmeFolderID = "1ZPPcVU4M7T-dtRyUceb0pMAd8ickYf8o"

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DataDir:      getEnv("DATA_DIR", "data"),
		OutputDir:    getEnv("OUTPUT_DIR", "tracker"),
		PipelineFile: getEnv("TRACKER_CONFIG", ""),

		Workers:    getEnvAsInt("WORKERS", 0),
		JobTimeout: getEnvAsDuration("JOB_TIMEOUT", "10m"),
		Rebuild:    getEnvAsBool("REBUILD", false),

		GnuplotPath: getEnv("GNUPLOT_PATH", ""),

		Drive: DriveConfig{
			BaseURL:           getEnv("DRIVE_BASE_URL", "https://www.googleapis.com/drive/v3"),
			APIKey:            getEnv("DRIVE_API_KEY", ""),
			ReadmeFolderID:    getEnv("DRIVE_README_FOLDER_ID", DefaultReadmeFolderID),
			RequestsPerSecond: getEnvAsFloat("DRIVE_REQUESTS_PER_SECOND", 5),
			Timeout:           getEnvAsDuration("DRIVE_TIMEOUT", "2m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Port:            getEnv("PORT", "8089"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 17 * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}

	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0, got %d", c.Workers)
	}

	if c.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive, got %s", c.JobTimeout)
	}

	if c.Drive.RequestsPerSecond <= 0 {
		return fmt.Errorf("DRIVE_REQUESTS_PER_SECOND must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from the working directory or next to the binary
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
