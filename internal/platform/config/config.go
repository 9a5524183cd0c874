// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs to start.
type Config struct {
	Addr          string
	PostgresURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	JWTIssuer     string
	LogLevel      string
	// PremiumCacheTTL bounds staleness of cached premium-name lookups.
	PremiumCacheTTL time.Duration
}

// RedisConfig configures the optional Redis cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv reads configuration from DOMREG_* environment variables. Unset
// values fall back to development defaults; an empty PostgresURL selects the
// in-memory stores.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("DOMREG_ADDR", ":8080"),
		PostgresURL:     os.Getenv("DOMREG_POSTGRES_URL"),
		AuditTopic:      envOr("DOMREG_AUDIT_TOPIC", "domreg.audit"),
		JWTSigningKey:   envOr("DOMREG_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("DOMREG_JWT_ISSUER", "domreg"),
		LogLevel:        envOr("DOMREG_LOG_LEVEL", "info"),
		PremiumCacheTTL: 5 * time.Minute,
		Redis: RedisConfig{
			URL:          os.Getenv("DOMREG_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
	if brokers := os.Getenv("DOMREG_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
