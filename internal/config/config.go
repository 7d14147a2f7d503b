package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Timesheet TimesheetConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// JWTConfig holds the verification secret for incoming tokens. Token
// issuance lives in the identity service; this backend only verifies.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds the event consumer configuration
type KafkaConfig struct {
	Brokers       []string
	PunchTopic    string
	ProposalTopic string
	GroupID       string
}

// TimesheetConfig holds the scheduling knobs of the timesheet core
type TimesheetConfig struct {
	FinalizeCutoffHour int           // local hour after which yesterday is finalized
	AggregateInterval  time.Duration // monthly dirty-flag sweep interval
	SnapshotInterval   time.Duration // snapshot refresh queue drain interval
	SlipSweepInterval  time.Duration // payroll slip recomputation sweep interval
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "aura-timesheet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Kafka = KafkaConfig{
		Brokers:       getEnvSlice("KAFKA_BROKERS"),
		PunchTopic:    getEnv("KAFKA_PUNCH_TOPIC", "attendance.punch-events"),
		ProposalTopic: getEnv("KAFKA_PROPOSAL_TOPIC", "attendance.proposal-approved"),
		GroupID:       getEnv("KAFKA_GROUP_ID", "timesheet-core"),
	}

	cutoffHour, err := strconv.Atoi(getEnv("FINALIZE_CUTOFF_HOUR", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid FINALIZE_CUTOFF_HOUR: %w", err)
	}

	aggregateInterval, err := time.ParseDuration(getEnv("AGGREGATE_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_INTERVAL: %w", err)
	}

	snapshotInterval, err := time.ParseDuration(getEnv("SNAPSHOT_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL: %w", err)
	}

	slipSweepInterval, err := time.ParseDuration(getEnv("SLIP_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLIP_SWEEP_INTERVAL: %w", err)
	}

	config.Timesheet = TimesheetConfig{
		FinalizeCutoffHour: cutoffHour,
		AggregateInterval:  aggregateInterval,
		SnapshotInterval:   snapshotInterval,
		SlipSweepInterval:  slipSweepInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Timesheet.FinalizeCutoffHour < 0 || c.Timesheet.FinalizeCutoffHour > 23 {
		return fmt.Errorf("FINALIZE_CUTOFF_HOUR must be between 0 and 23")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{"localhost:9092"}
	}
	return strings.Split(value, ",")
}
