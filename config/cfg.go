package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	httpapi "github.com/peakmargin/margin-manager/internal/api/http"
	"github.com/peakmargin/margin-manager/internal/ingest"
	"github.com/peakmargin/margin-manager/internal/margin"
	"github.com/peakmargin/margin-manager/internal/store"
	"github.com/peakmargin/margin-manager/internal/syncjob"
	"github.com/peakmargin/margin-manager/internal/tenant"
	"github.com/peakmargin/margin-manager/log"
)

// Config represents the global configuration for the service.
type Config struct {
	DB      store.Config    `mapstructure:"mysql"`
	Logger  log.Config      `mapstructure:"logger"`
	HTTP    httpapi.Config  `mapstructure:"http"`
	Ingest  ingest.Config   `mapstructure:"ingest"`
	Margin  margin.Config   `mapstructure:"margin"`
	Sync    syncjob.Config  `mapstructure:"sync"`
	Tenants []tenant.Config `mapstructure:"tenants"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g., MYSQL__DSN for mysql.dsn
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			// config file is optional, env vars can carry everything
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/margin-manager")
		viper.AddConfigPath("/etc/margin-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	return &config, nil
}

// bindEnvVars binds flat environment variable names to nested config keys.
func bindEnvVars() {
	// MySQL
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")

	// Ingest
	viper.BindEnv("ingest.usd_rate", "INGEST_USD_RATE")
	viper.BindEnv("ingest.placeholder_skus", "INGEST_PLACEHOLDER_SKUS")

	// Margin
	viper.BindEnv("margin.default_unit_cost", "MARGIN_DEFAULT_UNIT_COST")
	viper.BindEnv("margin.ship_unit_discount", "MARGIN_SHIP_UNIT_DISCOUNT")

	// Sync worker
	viper.BindEnv("sync.worker_interval", "SYNC_WORKER_INTERVAL")
	viper.BindEnv("sync.lookback", "SYNC_LOOKBACK")
}
