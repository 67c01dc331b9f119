// Package config reads the configuration of the backend and the alert
// worker from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Alert deduplication stores
const (
	AlertDedupDatabase = "database"
	AlertDedupMemory   = "memory"
)

type Config struct {
	// HTTP
	APIURL           *url.URL
	GinMode          string
	CORSAllowOrigins []string
	EnablePprof      bool

	// Logging
	LogFormat string

	// Database
	DBPath string

	// Error reporting
	SentryDSN string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Web push
	VAPIDSubject    string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushRetryMax    int

	// AI categorization
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Budget alerts
	AlertDedup    string
	AlertDedupTTL time.Duration

	CurrencySymbol string

	// Alert worker
	WorkerMetricsAddr string

	problems    []string
	apiProblems []string
}

// LoadDotenv loads a .env file from the working directory if it exists.
// Variables that are already set are not overwritten.
func LoadDotenv() {
	_ = godotenv.Load()
}

// Load reads the configuration from the environment. Invalid values are
// reported by Validate.
func Load() *Config {
	cfg := &Config{
		GinMode:          getEnv("GIN_MODE", "release"),
		CORSAllowOrigins: strings.Fields(os.Getenv("CORS_ALLOW_ORIGINS")),
		EnablePprof:      os.Getenv("ENABLE_PPROF") == "true",
		LogFormat:        os.Getenv("LOG_FORMAT"),
		DBPath:           getEnv("DB_PATH", "data/duo.db"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "duo"),
		AMQPQueue:        getEnv("AMQP_QUEUE", "household_activity"),
		VAPIDSubject:     os.Getenv("VAPID_SUBJECT"),
		VAPIDPublicKey:   os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:  os.Getenv("VAPID_PRIVATE_KEY"),
		AIAPIKey:         os.Getenv("AI_API_KEY"),
		AIBaseURL:        os.Getenv("AI_BASE_URL"),
		AIModel:          getEnv("AI_MODEL", "gpt-4o-mini"),
		AlertDedup:       getEnv("ALERT_DEDUP", AlertDedupDatabase),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "$"),

		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
	}

	cfg.PushRetryMax = cfg.getEnvInt("PUSH_RETRY_MAX", 3)
	cfg.AlertDedupTTL = cfg.getEnvDuration("ALERT_DEDUP_TTL", 840*time.Hour)

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		cfg.apiProblems = append(cfg.apiProblems, "environment variable API_URL must be set")
	} else {
		u, err := url.Parse(apiURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			cfg.apiProblems = append(cfg.apiProblems, fmt.Sprintf("environment variable API_URL must be a valid URL, got %q", apiURL))
		} else {
			cfg.APIURL = u
		}
	}

	return cfg
}

// Validate returns all problems with the configuration of the API server
// in one error.
func (c *Config) Validate() error {
	return report(append(append([]string{}, c.apiProblems...), c.validate()...))
}

// ValidateWorker returns all problems with the configuration of the alert
// worker in one error. The worker needs a broker but no API URL.
func (c *Config) ValidateWorker() error {
	problems := c.validate()
	if c.AMQPURL == "" {
		problems = append(problems, "environment variable AMQP_URL must be set for the alert worker")
	}

	if c.WorkerMetricsAddr == "" {
		problems = append(problems, "WORKER_METRICS_ADDR must not be empty")
	}

	return report(problems)
}

func report(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func (c *Config) validate() []string {
	problems := append([]string{}, c.problems...)

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid GIN_MODE %q: must be one of debug, release, test", c.GinMode))
	}

	switch c.AlertDedup {
	case AlertDedupDatabase, AlertDedupMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid ALERT_DEDUP %q: must be %s or %s", c.AlertDedup, AlertDedupDatabase, AlertDedupMemory))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme %q: must be amqp or amqps", u.Scheme))
		}

		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE must not be empty when AMQP_URL is set")
		}

		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP_QUEUE must not be empty when AMQP_URL is set")
		}
	}

	vapid := []string{c.VAPIDSubject, c.VAPIDPublicKey, c.VAPIDPrivateKey}
	set := 0
	for _, v := range vapid {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(vapid) {
		problems = append(problems, "VAPID_SUBJECT, VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}

	if c.PushRetryMax < 0 || c.PushRetryMax > 10 {
		problems = append(problems, fmt.Sprintf("invalid PUSH_RETRY_MAX %d: must be between 0 and 10", c.PushRetryMax))
	}

	if c.AlertDedupTTL < time.Hour {
		problems = append(problems, fmt.Sprintf("invalid ALERT_DEDUP_TTL %v: must be at least one hour", c.AlertDedupTTL))
	}

	return problems
}

// PushEnabled reports whether web push is configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPrivateKey != ""
}

// AMQPEnabled reports whether events are published to a broker.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// AIEnabled reports whether the AI categorizer is configured.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s %q: must be a number", key, value))
		return defaultValue
	}
	return i
}

func (c *Config) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s %q: must be a duration like 720h", key, value))
		return defaultValue
	}
	return d
}
