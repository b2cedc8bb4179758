// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`

	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	// Duel thresholds.
	MinInitialVotes    int     `mapstructure:"MIN_INITIAL_VOTES"`
	MaxInitialVotes    int     `mapstructure:"MAX_INITIAL_VOTES"`
	FlagRatioThreshold float64 `mapstructure:"FLAG_RATIO_THRESHOLD"`
	MinFlagsRatio      float64 `mapstructure:"MIN_FLAGS_RATIO"`
	NetScoreRatio      float64 `mapstructure:"NET_SCORE_RATIO"`

	// Scheduler delays, in hours.
	DuelTimeoutInitialHours  float64 `mapstructure:"DUEL_TIMEOUT_INITIAL_HOURS"`
	DuelTimeoutPostponeHours float64 `mapstructure:"DUEL_TIMEOUT_POSTPONE_HOURS"`
	DuelTimeoutRetryHours    float64 `mapstructure:"DUEL_TIMEOUT_RETRY_HOURS"`
	VotingWindowHours        float64 `mapstructure:"VOTING_WINDOW_HOURS"`

	// Badge thresholds.
	InsightfulThreshold        int `mapstructure:"INSIGHTFUL_THRESHOLD"`
	SerialVoterThreshold       int `mapstructure:"SERIAL_VOTER_THRESHOLD"`
	ConsistentDebaterThreshold int `mapstructure:"CONSISTENT_DEBATER_THRESHOLD"`
}

// DuelRules bundles the arbitration and timeout constants the lifecycle
// service operates with.
type DuelRules struct {
	MinInitialVotes    int
	MaxInitialVotes    int
	FlagRatioThreshold float64
	MinFlagsRatio      float64
	NetScoreRatio      float64
	TimeoutInitial     time.Duration
	TimeoutPostpone    time.Duration
	TimeoutRetry       time.Duration
	VotingWindow       time.Duration
}

// DuelRules derives the duration-typed rule set from the raw hour values.
func (c *Config) DuelRules() DuelRules {
	return DuelRules{
		MinInitialVotes:    c.MinInitialVotes,
		MaxInitialVotes:    c.MaxInitialVotes,
		FlagRatioThreshold: c.FlagRatioThreshold,
		MinFlagsRatio:      c.MinFlagsRatio,
		NetScoreRatio:      c.NetScoreRatio,
		TimeoutInitial:     hours(c.DuelTimeoutInitialHours),
		TimeoutPostpone:    hours(c.DuelTimeoutPostponeHours),
		TimeoutRetry:       hours(c.DuelTimeoutRetryHours),
		VotingWindow:       hours(c.VotingWindowHours),
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		_ = viper.MergeInConfig()
	}

	// Set default values for development
	viper.SetDefault("PORT", "8361")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "humbleop")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	viper.SetDefault("MIN_INITIAL_VOTES", 50)
	viper.SetDefault("MAX_INITIAL_VOTES", 500)
	viper.SetDefault("FLAG_RATIO_THRESHOLD", 0.60)
	viper.SetDefault("MIN_FLAGS_RATIO", 0.05)
	viper.SetDefault("NET_SCORE_RATIO", 0.40)

	viper.SetDefault("DUEL_TIMEOUT_INITIAL_HOURS", 2.0)
	viper.SetDefault("DUEL_TIMEOUT_POSTPONE_HOURS", 6.0)
	viper.SetDefault("DUEL_TIMEOUT_RETRY_HOURS", 2.0)
	viper.SetDefault("VOTING_WINDOW_HOURS", 24.0)

	viper.SetDefault("INSIGHTFUL_THRESHOLD", 20)
	viper.SetDefault("SERIAL_VOTER_THRESHOLD", 10)
	viper.SetDefault("CONSISTENT_DEBATER_THRESHOLD", 10)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.MinInitialVotes <= 0 || c.MaxInitialVotes < c.MinInitialVotes {
		return errors.New("MIN_INITIAL_VOTES must be positive and not exceed MAX_INITIAL_VOTES")
	}
	if c.DuelTimeoutInitialHours <= 0 || c.DuelTimeoutPostponeHours <= 0 || c.DuelTimeoutRetryHours <= 0 {
		return errors.New("duel timeout hours must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
	} else {
		// Development/Test warnings
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
