package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// BackendConfig holds the hosted relational backend settings.
// The public URL and anon key decide whether the live backend is usable at all;
// the service key is privileged and must never reach a caller.
type BackendConfig struct {
	URL                string
	AnonKey            string
	ServiceKey         string `json:"-"`
	TimeoutMs          int
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// Timeout is the bound applied to every live backend call.
func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RedisConfig holds the optional shared cache/counter settings.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	ProductCacheTTL int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// RateLimitConfig configures the per-caller fixed window.
type RateLimitConfig struct {
	Requests  int
	WindowSec int
}

// DashboardConfig configures the aggregation defaults.
type DashboardConfig struct {
	LowStockThreshold int
	RevenueStatuses   []string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage was configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port      string
	Timezone  string
	Backend   BackendConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Dashboard DashboardConfig
	MinIO     MinIOConfig
}

// Location resolves Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TZ", "UTC"),
		Backend: BackendConfig{
			URL:                getEnv("BACKEND_URL", ""),
			AnonKey:            getEnv("BACKEND_ANON_KEY", ""),
			ServiceKey:         getEnv("BACKEND_SERVICE_KEY", ""),
			TimeoutMs:          getEnvInt("BACKEND_TIMEOUT_MS", 5000),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", ""),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvInt("REDIS_DB", 0),
			ProductCacheTTL: getEnvInt("PRODUCT_CACHE_TTL_SEC", 300),
		},
		RateLimit: RateLimitConfig{
			Requests:  getEnvInt("RATE_LIMIT_REQUESTS", 100),
			WindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		},
		Dashboard: DashboardConfig{
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
			RevenueStatuses:   getEnvList("REVENUE_STATUSES", []string{"delivered"}),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
