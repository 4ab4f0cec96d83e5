package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// Liveness verification collaborators.
	LivenessBaseURL      string
	LivenessRegion       string
	LivenessConfirmGrace time.Duration
	LivenessWaitTimeout  time.Duration

	// Document verification (simulated upload latency).
	DocumentUploadDelay time.Duration

	// Settlement delay between a submitted transfer and its completed status.
	SettlementDelay time.Duration

	// DemoPIN is the PIN the seeded demo accounts accept.
	DemoPIN string

	Redis       RedisConfig
	DatabaseURL string
}

// RedisConfig holds connection settings for the optional Redis-backed
// verification-state store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VAULTPAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	baseURL := os.Getenv("LIVENESS_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://dev-fraud-api.datamellonai.com"
	}

	region := os.Getenv("LIVENESS_REGION")
	if region == "" {
		region = "eu-west-1"
	}

	demoPIN := os.Getenv("DEMO_PIN")
	if demoPIN == "" {
		demoPIN = "1234"
	}

	return Server{
		Addr:                 addr,
		JWTSigningKey:        jwtSigningKey,
		LivenessBaseURL:      baseURL,
		LivenessRegion:       region,
		LivenessConfirmGrace: envDuration("LIVENESS_CONFIRM_GRACE", 5*time.Second),
		LivenessWaitTimeout:  envDuration("LIVENESS_WAIT_TIMEOUT", 2*time.Minute),
		DocumentUploadDelay:  envDuration("DOCUMENT_UPLOAD_DELAY", 2*time.Second),
		SettlementDelay:      envDuration("SETTLEMENT_DELAY", 2*time.Second),
		DemoPIN:              demoPIN,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
