package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	JWTIssuer          string
	MigrationsPath     string
	CORSAllowedOrigins []string
	RateLimit          string // ulule limiter format, e.g. "100-M"

	// Redis backs Idempotency-Key replay. Empty disables it.
	RedisURL       string
	IdempotencyTTL time.Duration

	CommitteeQuorum       int
	GuarantorResponseDays int
	MetricsEnabled        bool
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("MIGRATIONS_PATH", "") // empty uses the migrations embedded in the binary
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("COMMITTEE_QUORUM", 3)
	v.SetDefault("GUARANTOR_RESPONSE_DAYS", 7)
	v.SetDefault("METRICS_ENABLED", true)

	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		DatabaseURL:           v.GetString("PGSQL_URL"),
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		RateLimit:             v.GetString("RATE_LIMIT"),
		RedisURL:              v.GetString("REDIS_URL"),
		CommitteeQuorum:       v.GetInt("COMMITTEE_QUORUM"),
		GuarantorResponseDays: v.GetInt("GUARANTOR_RESPONSE_DAYS"),
		MetricsEnabled:        v.GetBool("METRICS_ENABLED"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	ttlStr := v.GetString("IDEMPOTENCY_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
		log.Printf("Warning: Invalid value for IDEMPOTENCY_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.IdempotencyTTL = ttl

	if cfg.CommitteeQuorum <= 0 {
		log.Printf("Warning: COMMITTEE_QUORUM must be positive, got %d. Defaulting to 3.\n", cfg.CommitteeQuorum)
		cfg.CommitteeQuorum = 3
	}
	if cfg.GuarantorResponseDays <= 0 {
		log.Printf("Warning: GUARANTOR_RESPONSE_DAYS must be positive, got %d. Defaulting to 7.\n", cfg.GuarantorResponseDays)
		cfg.GuarantorResponseDays = 7
	}

	return cfg
}
