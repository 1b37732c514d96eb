package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"source-intel-be/pkg/synthesis"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Synthesis SynthesisConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
}

type DatabaseConfig struct {
	Connection string
}

// SynthesisConfig lists every recognized engine option with its default.
type SynthesisConfig struct {
	DefaultTargetQuality    float64 // DEFAULT_TARGET_QUALITY, 0.75
	MaxSourcesPerQuery      int     // MAX_SOURCES_PER_QUERY, 5
	SessionTTLSeconds       int     // SESSION_TTL_SECONDS, 1800
	ContextCacheTTLSeconds  int     // CONTEXT_CACHE_TTL_SECONDS, 300
	PopularityWeight        float64 // POPULARITY_WEIGHT, 0.4 (quality gets the complement)
	AuthenticityBonusWeight float64 // AUTHENTICITY_BONUS_WEIGHT, 0.1
	SelectionDecay          float64 // SELECTION_DECAY, 0.8
	TrendEpsilon            float64 // TREND_EPSILON, 0.05
	SourceCatalogPath       string  // SOURCE_CATALOG_PATH, empty uses the built-in catalog
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			SessionStore:       getEnv("SESSION_STORE", SessionStoreMemory),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Synthesis: SynthesisConfig{
			DefaultTargetQuality:    getEnvAsFloat("DEFAULT_TARGET_QUALITY", 0.75),
			MaxSourcesPerQuery:      getEnvAsInt("MAX_SOURCES_PER_QUERY", 5),
			SessionTTLSeconds:       getEnvAsInt("SESSION_TTL_SECONDS", 1800),
			ContextCacheTTLSeconds:  getEnvAsInt("CONTEXT_CACHE_TTL_SECONDS", 300),
			PopularityWeight:        getEnvAsFloat("POPULARITY_WEIGHT", 0.4),
			AuthenticityBonusWeight: getEnvAsFloat("AUTHENTICITY_BONUS_WEIGHT", 0.1),
			SelectionDecay:          getEnvAsFloat("SELECTION_DECAY", synthesis.DefaultDecay),
			TrendEpsilon:            getEnvAsFloat("TREND_EPSILON", synthesis.DefaultTrendEpsilon),
			SourceCatalogPath:       getEnv("SOURCE_CATALOG_PATH", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Options converts the environment values into engine options.
// An invalid combination falls back to the defaults so a typo cannot stop the service.
func (s SynthesisConfig) Options() synthesis.Options {
	opts := synthesis.DefaultOptions()
	opts.DefaultTargetQuality = s.DefaultTargetQuality
	opts.MaxSourcesPerQuery = s.MaxSourcesPerQuery
	opts.SessionTTL = time.Duration(s.SessionTTLSeconds) * time.Second
	opts.ContextCacheTTL = time.Duration(s.ContextCacheTTLSeconds) * time.Second
	opts.Weights.PopularityWeight = s.PopularityWeight
	opts.Weights.AuthenticityBonus = s.AuthenticityBonusWeight
	opts.SelectionDecay = s.SelectionDecay
	opts.TrendEpsilon = s.TrendEpsilon

	if err := opts.Validate(); err != nil {
		log.Printf("[WARN] Invalid synthesis configuration (%v), using defaults", err)
		return synthesis.DefaultOptions()
	}
	return opts
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
