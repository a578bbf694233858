package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	NodeID      int64
	PromptWatch bool
	PromptFile  string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Provider     ProviderConfig
	HistoryCache HistoryCacheConfig
}

// ProviderConfig points at the hosted completion model used for translation.
type ProviderConfig struct {
	Type           string
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

type HistoryCacheConfig struct {
	Backend       string
	TTLSeconds    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	HistoryCacheNone   = "none"
	HistoryCacheMemory = "memory"
	HistoryCacheRedis  = "redis"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "anubad"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		NodeID:            getenvInt64("SNOWFLAKE_NODE", 1),
		PromptWatch:       getenvBool("PROMPT_WATCH", true),
		PromptFile:        strings.TrimSpace(getenv("PROMPT_FILE", "")),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "postgres")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "anubad"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "anubad.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		Provider: ProviderConfig{
			Type:           normalizeProvider(getenv("PROVIDER_TYPE", ProviderOpenAI)),
			BaseURL:        strings.TrimSpace(getenv("PROVIDER_BASE_URL", os.Getenv("AI_INTEGRATIONS_OPENAI_BASE_URL"))),
			APIKey:         strings.TrimSpace(getenv("PROVIDER_API_KEY", os.Getenv("AI_INTEGRATIONS_OPENAI_API_KEY"))),
			Model:          strings.TrimSpace(getenv("PROVIDER_MODEL", "")),
			TimeoutSeconds: getenvInt("PROVIDER_TIMEOUT_SECONDS", 60),
		},
		HistoryCache: HistoryCacheConfig{
			Backend:       normalizeHistoryCache(getenv("HISTORY_CACHE", HistoryCacheNone)),
			TTLSeconds:    getenvInt("HISTORY_CACHE_TTL_SECONDS", 30),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
		},
	}

	return cfg
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeHistoryCache(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case HistoryCacheMemory, HistoryCacheRedis:
		return value
	default:
		return HistoryCacheNone
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
