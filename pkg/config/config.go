package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string

	Forecast  ForecastConfig
	Paths     PathsConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Scheduler SchedulerConfig

	// Monitoring
	MetricsEnabled bool
}

// ForecastConfig holds model defaults
type ForecastConfig struct {
	Horizon              int
	TestSize             int
	Order                [3]int // p, d, q
	SeasonalOrder        [4]int // P, D, Q, m
	EnforceStationarity  bool
	EnforceInvertibility bool
	MinTrainLength       int
	MaxIter              int
	Alpha                float64
	SearchWorkers        int // 0 = runtime.NumCPU()
}

// PathsConfig holds file locations
type PathsConfig struct {
	RawCSV      string
	CleanedCSV  string
	ForecastCSV string
	GridCSV     string
	ModelsDir   string
	SearchYAML  string
}

// StoreConfig selects the model store backend
type StoreConfig struct {
	Backend     string // file, memory, s3, redis
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	RedisPrefix string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port          string
	RateLimit     float64 // requests per second per client
	RateBurst     int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ShutdownGrace time.Duration
}

// SchedulerConfig holds retraining job configuration
type SchedulerConfig struct {
	RetrainCron string // 6-field cron (with seconds)
	MaxRetries  int
	RetryDelay  time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		Forecast: ForecastConfig{
			Horizon:              getEnvAsInt("FORECAST_HORIZON", 12),
			TestSize:             getEnvAsInt("FORECAST_TEST_SIZE", 12),
			EnforceStationarity:  getEnvAsBool("FORECAST_ENFORCE_STATIONARITY", false),
			EnforceInvertibility: getEnvAsBool("FORECAST_ENFORCE_INVERTIBILITY", false),
			MinTrainLength:       getEnvAsInt("FORECAST_MIN_TRAIN_LENGTH", 24),
			MaxIter:              getEnvAsInt("FORECAST_MAX_ITER", 50),
			Alpha:                getEnvAsFloat("FORECAST_ALPHA", 0.05),
			SearchWorkers:        getEnvAsInt("SEARCH_WORKERS", 0),
		},

		Paths: PathsConfig{
			RawCSV:      getEnv("RAW_CSV", "data/raw/sales.csv"),
			CleanedCSV:  getEnv("CLEANED_CSV", "data/processed/cleaned_sales.csv"),
			ForecastCSV: getEnv("FORECAST_CSV", "output/forecast.csv"),
			GridCSV:     getEnv("GRID_CSV", "output/grid_search.csv"),
			ModelsDir:   getEnv("MODELS_DIR", "models"),
			SearchYAML:  getEnv("SEARCH_CONFIG", "config/search/default.yaml"),
		},

		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", "file")),
			S3Bucket:    getEnv("STORE_S3_BUCKET", ""),
			S3Prefix:    getEnv("STORE_S3_PREFIX", "models"),
			S3Region:    getEnv("STORE_S3_REGION", "us-east-1"),
			RedisPrefix: getEnv("STORE_REDIS_PREFIX", "salescast:model"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "10m"),
		},

		Server: ServerConfig{
			Port:          getEnv("PORT", "8089"),
			RateLimit:     getEnvAsFloat("API_RATE_LIMIT", 5),
			RateBurst:     getEnvAsInt("API_RATE_BURST", 10),
			ReadTimeout:   getEnvAsDuration("API_READ_TIMEOUT", "15s"),
			WriteTimeout:  getEnvAsDuration("API_WRITE_TIMEOUT", "60s"),
			ShutdownGrace: getEnvAsDuration("API_SHUTDOWN_GRACE", "10s"),
		},

		Scheduler: SchedulerConfig{
			RetrainCron: getEnv("RETRAIN_CRON", "0 0 3 1 * *"),
			MaxRetries:  getEnvAsInt("RETRAIN_MAX_RETRIES", 0),
			RetryDelay:  getEnvAsDuration("RETRAIN_RETRY_DELAY", "1m"),
		},

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	var err error
	if cfg.Forecast.Order, err = getEnvAsInts3("FORECAST_ORDER", [3]int{1, 1, 1}); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Forecast.SeasonalOrder, err = getEnvAsInts4("FORECAST_SEASONAL_ORDER", [4]int{1, 1, 1, 12}); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	f := c.Forecast
	if f.Horizon <= 0 {
		return fmt.Errorf("FORECAST_HORIZON must be positive, got %d", f.Horizon)
	}
	if f.TestSize <= 0 {
		return fmt.Errorf("FORECAST_TEST_SIZE must be positive, got %d", f.TestSize)
	}
	if f.MinTrainLength < 1 {
		return fmt.Errorf("FORECAST_MIN_TRAIN_LENGTH must be at least 1, got %d", f.MinTrainLength)
	}
	if f.MaxIter <= 0 {
		return fmt.Errorf("FORECAST_MAX_ITER must be positive, got %d", f.MaxIter)
	}
	if f.Alpha <= 0 || f.Alpha >= 1 {
		return fmt.Errorf("FORECAST_ALPHA must be in (0, 1), got %v", f.Alpha)
	}
	for _, v := range f.Order {
		if v < 0 {
			return fmt.Errorf("FORECAST_ORDER must be non-negative, got %v", f.Order)
		}
	}
	for _, v := range f.SeasonalOrder[:3] {
		if v < 0 {
			return fmt.Errorf("FORECAST_SEASONAL_ORDER must be non-negative, got %v", f.SeasonalOrder)
		}
	}
	if f.SeasonalOrder[3] < 2 {
		return fmt.Errorf("FORECAST_SEASONAL_ORDER period must be at least 2, got %d", f.SeasonalOrder[3])
	}

	switch c.Store.Backend {
	case "file", "memory", "redis":
	case "s3":
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("STORE_S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: file, memory, s3, redis")
	}
	if c.Store.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("REDIS_ENABLED must be true for the redis backend")
	}

	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// LoadFile loads the env file at path (when set) before the default
// discovery. Variables already in the environment win.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsIntList parses "1,1,1" into exactly n ints.
func getEnvAsIntList(key string, n int) ([]int, bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, false, nil
	}

	parts := strings.Split(valueStr, ",")
	if len(parts) != n {
		return nil, true, fmt.Errorf("%s must have %d comma-separated integers, got %q", key, n, valueStr)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", key, err)
		}
		out[i] = v
	}
	return out, true, nil
}

func getEnvAsInts3(key string, defaultValue [3]int) ([3]int, error) {
	vals, ok, err := getEnvAsIntList(key, 3)
	if err != nil || !ok {
		return defaultValue, err
	}
	return [3]int{vals[0], vals[1], vals[2]}, nil
}

func getEnvAsInts4(key string, defaultValue [4]int) ([4]int, error) {
	vals, ok, err := getEnvAsIntList(key, 4)
	if err != nil || !ok {
		return defaultValue, err
	}
	return [4]int{vals[0], vals[1], vals[2], vals[3]}, nil
}
