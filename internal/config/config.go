package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"holidaze/internal/cache"
	"holidaze/internal/database"
	"holidaze/internal/external"
	"holidaze/internal/messaging"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	MetricsEnabled bool
	CORSOrigin     string

	// Session handling
	SessionStore  string // memory | valkey | postgres
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool
	SessionPurge  time.Duration

	// Directory paging
	DirectoryPageSize int
	HomePageSize      int
	IndexRefresh      time.Duration

	NATSEnabled   bool
	SearchEnabled bool

	Database      database.Config
	Valkey        cache.Config
	NATS          messaging.Config
	Holidaze      external.HolidazeConfig
	Elasticsearch ElasticsearchConfig
}

// ElasticsearchConfig содержит конфигурацию для подключения к Elasticsearch
type ElasticsearchConfig struct {
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		CORSOrigin:     os.Getenv("CORS_ORIGIN"),

		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", "memory")),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionCookie: getEnv("SESSION_COOKIE", "holidaze_session"),
		CookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
		SessionPurge:  time.Duration(getEnvInt("SESSION_PURGE_MIN", 60)) * time.Minute,

		DirectoryPageSize: getEnvInt("DIRECTORY_PAGE_SIZE", 100),
		HomePageSize:      getEnvInt("HOME_PAGE_SIZE", 12),
		IndexRefresh:      time.Duration(getEnvInt("INDEX_REFRESH_SEC", 300)) * time.Second,

		NATSEnabled:   getEnvBool("NATS_ENABLED", false),
		SearchEnabled: getEnvBool("ELASTICSEARCH_ENABLED", false),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "holidaze"),
			Password:           getEnv("DB_PASSWORD", "holidaze"),
			DBName:             getEnv("DB_NAME", "holidaze"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Valkey: cache.Config{
			Addr:      getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:  os.Getenv("VALKEY_PASSWORD"),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_SESSION_PREFIX", "holidaze:session:"),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "holidaze"),
			ClientID:  getEnv("NATS_CLIENT_ID", "holidaze-api"),
		},

		Holidaze: external.HolidazeConfig{
			BaseURL: getEnv("NOROFF_API_URL", "https://v2.api.noroff.dev"),
			APIKey:  os.Getenv("NOROFF_API_KEY"),
			Timeout: time.Duration(getEnvInt("NOROFF_TIMEOUT_SEC", 0)) * time.Second,
		},

		Elasticsearch: ElasticsearchConfig{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Index:      getEnv("ELASTICSEARCH_INDEX", "venues"),
			Username:   os.Getenv("ELASTICSEARCH_USERNAME"),
			Password:   os.Getenv("ELASTICSEARCH_PASSWORD"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
			Timeout:    getEnvDuration("ELASTICSEARCH_TIMEOUT", 10*time.Second),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration reads a Go duration such as "2s" or "500ms"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
