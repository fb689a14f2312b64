package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jekabolt/shop-metrics/internal/analytics/sheets"
	"github.com/jekabolt/shop-metrics/internal/analytics/sheetsync"
	httpapi "github.com/jekabolt/shop-metrics/internal/api/http"
	"github.com/jekabolt/shop-metrics/internal/store"
	"github.com/jekabolt/shop-metrics/internal/store/bunt"
	"github.com/jekabolt/shop-metrics/log"
	"github.com/spf13/viper"
)

const (
	StoreDriverBunt  = "bunt"
	StoreDriverMySQL = "mysql"
)

type StoreConfig struct {
	// Driver selects the repository: "bunt" (default) or "mysql".
	Driver string `mapstructure:"driver"`
}

// MetricsConfig controls how calendar days are computed.
type MetricsConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type DemoConfig struct {
	// Seed fills an empty store with sample shops and records on startup.
	Seed bool `mapstructure:"seed"`
}

// Config represents the global configuration for the service.
type Config struct {
	Store     StoreConfig      `mapstructure:"store"`
	DB        store.Config     `mapstructure:"mysql"`
	Bunt      bunt.Config      `mapstructure:"bunt"`
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Sheets    sheets.Config    `mapstructure:"sheets"`
	SheetSync sheetsync.Config `mapstructure:"sheet_sync"`
	Demo      DemoConfig       `mapstructure:"demo"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g., MYSQL__DSN for mysql.dsn
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/shop-metrics")
		v.AddConfigPath("/etc/shop-metrics")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	config.Store.Driver = strings.ToLower(strings.TrimSpace(config.Store.Driver))
	switch config.Store.Driver {
	case StoreDriverBunt, StoreDriverMySQL:
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}
	if config.Store.Driver == StoreDriverMySQL && config.DB.DSN == "" {
		config.DB.DSN = dsnFromEnv()
	}
	if config.Sheets.Timezone == "" {
		config.Sheets.Timezone = config.Metrics.Timezone
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", StoreDriverBunt)
	v.SetDefault("bunt.path", ":memory:")
	v.SetDefault("mysql.automigrate", true)
	v.SetDefault("mysql.max_open_connections", 10)
	v.SetDefault("mysql.max_idle_connections", 5)
	v.SetDefault("logger.level", 0)
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.rate_limit", 100)
	v.SetDefault("http.rate_window", "1m")
	v.SetDefault("http.request_timeout", "60s")
	v.SetDefault("metrics.timezone", "UTC")
	v.SetDefault("sheets.default_sheet_name", "Sales Data")
	v.SetDefault("sheets.timeout", "15s")
	v.SetDefault("sheets.breaker_max_failures", 5)
	v.SetDefault("sheets.breaker_cooldown", "30s")
	v.SetDefault("sheet_sync.worker_interval", "1h")
	v.SetDefault("sheet_sync.lookback_days", 30)
	v.SetDefault("sheet_sync.concurrency", 4)
}

// dsnFromEnv builds a MySQL DSN from MYSQL_HOST / MYSQL_USER / ... when no DSN is set.
func dsnFromEnv() string {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return ""
	}
	port := os.Getenv("MYSQL_PORT")
	if port == "" {
		port = "3306"
	}
	user, password, database := os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASSWORD"), os.Getenv("MYSQL_DATABASE")
	if user == "" || database == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		user, password, host, port, database)
}

// bindEnvVars binds environment variables to config keys
// This allows using both nested keys (MYSQL__DSN) and flat keys (MYSQL_DSN)
func bindEnvVars(v *viper.Viper) {
	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("bunt.path", "BUNT_PATH")

	// MySQL
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	v.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	v.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	v.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.rate_limit", "HTTP_RATE_LIMIT")
	v.BindEnv("http.rate_window", "HTTP_RATE_WINDOW")
	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")

	// Metrics
	v.BindEnv("metrics.timezone", "METRICS_TIMEZONE")

	// Google Sheets
	v.BindEnv("sheets.enabled", "SHEETS_ENABLED")
	v.BindEnv("sheets.api_key", "SHEETS_API_KEY", "GOOGLE_SHEETS_API_KEY")
	v.BindEnv("sheets.credentials_json", "SHEETS_CREDENTIALS_JSON")
	v.BindEnv("sheets.default_sheet_name", "SHEETS_DEFAULT_SHEET_NAME")
	v.BindEnv("sheets.sample_fallback", "SHEETS_SAMPLE_FALLBACK")
	v.BindEnv("sheets.timeout", "SHEETS_TIMEOUT")
	v.BindEnv("sheets.breaker_max_failures", "SHEETS_BREAKER_MAX_FAILURES")
	v.BindEnv("sheets.breaker_cooldown", "SHEETS_BREAKER_COOLDOWN")

	// Sheet sync worker
	v.BindEnv("sheet_sync.enabled", "SHEET_SYNC_ENABLED")
	v.BindEnv("sheet_sync.worker_interval", "SHEET_SYNC_WORKER_INTERVAL")
	v.BindEnv("sheet_sync.lookback_days", "SHEET_SYNC_LOOKBACK_DAYS")
	v.BindEnv("sheet_sync.concurrency", "SHEET_SYNC_CONCURRENCY")

	// Demo
	v.BindEnv("demo.seed", "DEMO_SEED")
}
