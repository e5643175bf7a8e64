package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	Environment string

	// SessionTTL bounds how long an interrupted quiz session stays
	// resumable.
	SessionTTL time.Duration

	Scoring ScoringConfig
	Events  EventConfig
}

// ScoringConfig carries the free-text grading calibration. See the scoring
// engine for the semantics of each knob.
type ScoringConfig struct {
	MinKeywordLength      int
	MatchThreshold        float64
	PassPercentage        float64
	DistinctionPercentage float64
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		Scoring: ScoringConfig{
			MinKeywordLength:      getEnvInt("SCORING_MIN_KEYWORD_LENGTH", 3),
			MatchThreshold:        getEnvFloat("SCORING_MATCH_THRESHOLD", 0.3),
			PassPercentage:        getEnvFloat("SCORING_PASS_PERCENTAGE", 70),
			DistinctionPercentage: getEnvFloat("SCORING_DISTINCTION_PERCENTAGE", 80),
		},
		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", false),
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			EventsTopic:  getEnv("EVENTS_TOPIC", "assessment-events"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
