package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Plaid      PlaidConfig
	Encryption EncryptionConfig
	Scheduler  SchedulerConfig
	RabbitMQ   RabbitMQConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
	Log        LogConfig
	CLI        CLIConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type PlaidConfig struct {
	ClientID     string
	Secret       string
	Env          string
	BaseURL      string
	Concurrency  int
	CountryCodes []string
	Timeout      time.Duration
}

type EncryptionConfig struct {
	Key string
}

type SchedulerConfig struct {
	Enabled      bool
	SyncCron     string
	BalanceCron  string
	Days         int
	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type RedisConfig struct {
	URL     string
	LockTTL time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

type LogConfig struct {
	Env   string
	Level string
}

type CLIConfig struct {
	DefaultUserID int64
	DefaultDays   int
}

var plaidBaseURLs = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "finsync")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "finsync")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("PLAID_ENV", "sandbox")
	v.SetDefault("PLAID_BASE_URL", "")
	v.SetDefault("PLAID_CONCURRENCY", 3)
	v.SetDefault("PLAID_COUNTRY_CODES", "US")
	v.SetDefault("PLAID_TIMEOUT", "60s")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_SYNC_CRON", "0 5,14,20 * * *")
	v.SetDefault("SCHEDULER_BALANCE_CRON", "30 23 * * *")
	v.SetDefault("SCHEDULER_DAYS", 30)
	v.SetDefault("SCHEDULER_WORKERS", 3)
	v.SetDefault("SCHEDULER_JOB_DELAY", "1s")
	v.SetDefault("SCHEDULER_QUEUE_SIZE", 100)
	v.SetDefault("SCHEDULER_RUN_ON_STARTUP", false)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "finsync.events")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_LOCK_TTL", "10m")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "finsync-api")
	v.SetDefault("OTEL_ENVIRONMENT", "development")
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "localhost:4317")
	v.SetDefault("METRICS_PORT", "9090")

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("CLI_DEFAULT_USER_ID", 1)
	v.SetDefault("CLI_DEFAULT_DAYS", 30)
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. Values already set in the process
// environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	jobDelay, err := time.ParseDuration(v.GetString("SCHEDULER_JOB_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	plaidTimeout, err := time.ParseDuration(v.GetString("PLAID_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAID_TIMEOUT: %w", err)
	}
	lockTTL, err := time.ParseDuration(v.GetString("REDIS_LOCK_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	dbPort, err := intValue(v, "DB_PORT")
	if err != nil {
		return nil, err
	}
	concurrency, err := intValue(v, "PLAID_CONCURRENCY")
	if err != nil {
		return nil, err
	}
	workers, err := intValue(v, "SCHEDULER_WORKERS")
	if err != nil {
		return nil, err
	}
	queueSize, err := intValue(v, "SCHEDULER_QUEUE_SIZE")
	if err != nil {
		return nil, err
	}
	schedulerDays, err := intValue(v, "SCHEDULER_DAYS")
	if err != nil {
		return nil, err
	}
	defaultUser, err := intValue(v, "CLI_DEFAULT_USER_ID")
	if err != nil {
		return nil, err
	}
	defaultDays, err := intValue(v, "CLI_DEFAULT_DAYS")
	if err != nil {
		return nil, err
	}

	plaidEnv := strings.ToLower(v.GetString("PLAID_ENV"))
	baseURL := v.GetString("PLAID_BASE_URL")
	if baseURL == "" {
		var ok bool
		baseURL, ok = plaidBaseURLs[plaidEnv]
		if !ok {
			return nil, fmt.Errorf("invalid PLAID_ENV %q (want sandbox, development or production)", plaidEnv)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Host:           v.GetString("HOST"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        dbPort,
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Plaid: PlaidConfig{
			ClientID:     v.GetString("PLAID_CLIENT_ID"),
			Secret:       v.GetString("PLAID_SECRET"),
			Env:          plaidEnv,
			BaseURL:      baseURL,
			Concurrency:  concurrency,
			CountryCodes: splitList(v.GetString("PLAID_COUNTRY_CODES")),
			Timeout:      plaidTimeout,
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("SCHEDULER_ENABLED"),
			SyncCron:     v.GetString("SCHEDULER_SYNC_CRON"),
			BalanceCron:  v.GetString("SCHEDULER_BALANCE_CRON"),
			Days:         schedulerDays,
			WorkerCount:  workers,
			JobDelay:     jobDelay,
			QueueSize:    queueSize,
			RunOnStartup: v.GetBool("SCHEDULER_RUN_ON_STARTUP"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Redis: RedisConfig{
			URL:     v.GetString("REDIS_URL"),
			LockTTL: lockTTL,
		},
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("OTEL_ENABLED"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			Environment:  v.GetString("OTEL_ENVIRONMENT"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
			MetricsPort:  v.GetString("METRICS_PORT"),
		},
		Log: LogConfig{
			Env:   v.GetString("APP_ENV"),
			Level: v.GetString("LOG_LEVEL"),
		},
		CLI: CLIConfig{
			DefaultUserID: int64(defaultUser),
			DefaultDays:   defaultDays,
		},
	}

	// Validate required fields
	if cfg.Plaid.ClientID == "" {
		return nil, fmt.Errorf("PLAID_CLIENT_ID is required")
	}
	if cfg.Plaid.Secret == "" {
		return nil, fmt.Errorf("PLAID_SECRET is required")
	}
	if cfg.Encryption.Key == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(cfg.Encryption.Key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes")
	}
	if cfg.Scheduler.Enabled && cfg.Scheduler.WorkerCount < 1 {
		return nil, fmt.Errorf("SCHEDULER_WORKERS must be at least 1 when SCHEDULER_ENABLED=true")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// intValue reads key as an int, rejecting values viper cannot convert instead
// of silently returning 0.
func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || fmt.Sprint(n) != raw {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
