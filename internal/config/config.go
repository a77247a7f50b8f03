package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Processor ProcessorConfig
	Payment   PaymentConfig
	Cart      CartConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Ledger    LedgerConfig
	Tracing   TracingConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type ProcessorConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PaymentConfig struct {
	PollInterval    time.Duration
	MaxPollAttempts int
}

type CartConfig struct {
	Backend    string
	Key        string
	SQLitePath string
}

const (
	CartBackendSQLite = "sqlite"
	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LedgerConfig struct {
	Enabled          bool
	MaxRetryAttempts int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. When configFile is not
// empty its keys (same names as the environment variables) are read first
// and the environment still wins.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"SERVER_SHUTDOWN_TIMEOUT", "PROCESSOR_TIMEOUT", "PAYMENT_POLL_INTERVAL", "DB_CONN_MAX_LIFETIME"} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durations["SERVER_SHUTDOWN_TIMEOUT"],
		},
		Processor: ProcessorConfig{
			BaseURL: strings.TrimRight(v.GetString("PROCESSOR_BASE_URL"), "/"),
			Timeout: durations["PROCESSOR_TIMEOUT"],
		},
		Payment: PaymentConfig{
			PollInterval:    durations["PAYMENT_POLL_INTERVAL"],
			MaxPollAttempts: v.GetInt("PAYMENT_POLL_MAX_ATTEMPTS"),
		},
		Cart: CartConfig{
			Backend:    strings.ToLower(v.GetString("CART_BACKEND")),
			Key:        v.GetString("CART_KEY"),
			SQLitePath: v.GetString("CART_SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
		},
		Ledger: LedgerConfig{
			Enabled:          v.GetBool("LEDGER_ENABLED"),
			MaxRetryAttempts: v.GetInt("LEDGER_MAX_RETRY_ATTEMPTS"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("PROCESSOR_BASE_URL", "http://localhost:8000")
	v.SetDefault("PROCESSOR_TIMEOUT", "30s")
	v.SetDefault("PAYMENT_POLL_INTERVAL", "5s")
	v.SetDefault("PAYMENT_POLL_MAX_ATTEMPTS", 120)
	v.SetDefault("CART_BACKEND", CartBackendSQLite)
	v.SetDefault("CART_KEY", "cart")
	v.SetDefault("CART_SQLITE_PATH", "./data/storefront.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "storefront")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LEDGER_ENABLED", false)
	v.SetDefault("LEDGER_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SERVICE_NAME", "storefront")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func (c *Config) validate() error {
	switch c.Cart.Backend {
	case CartBackendSQLite, CartBackendRedis, CartBackendMemory:
	default:
		return fmt.Errorf("unknown CART_BACKEND %q", c.Cart.Backend)
	}
	if c.Cart.Key == "" {
		return fmt.Errorf("CART_KEY must not be empty")
	}
	if c.Payment.PollInterval <= 0 {
		return fmt.Errorf("PAYMENT_POLL_INTERVAL must be positive")
	}
	if c.Payment.MaxPollAttempts < 0 {
		return fmt.Errorf("PAYMENT_POLL_MAX_ATTEMPTS must not be negative")
	}
	if c.Processor.BaseURL == "" {
		return fmt.Errorf("PROCESSOR_BASE_URL must not be empty")
	}
	if c.Ledger.MaxRetryAttempts < 1 {
		c.Ledger.MaxRetryAttempts = 1
	}
	return nil
}
