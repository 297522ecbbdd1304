// Package config loads orderload settings from flags, environment, a config file and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marshallshelly/pebble-orders/pkg/migration"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

// EnvPrefix prefixes every environment variable, e.g. ORDERLOAD_DATABASE_URL.
const EnvPrefix = "ORDERLOAD"

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data"`
	Log      LogConfig      `mapstructure:"log"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Lock     LockConfig     `mapstructure:"lock"`
}

// DatabaseConfig locates the PostgreSQL server. URL wins over the individual parts.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DataConfig locates the input files.
type DataConfig struct {
	Root    string `mapstructure:"root"`
	Pattern string `mapstructure:"pattern"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IngestConfig configures the run driver.
type IngestConfig struct {
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

// LockConfig configures the single-writer advisory lock.
type LockConfig struct {
	ID int64 `mapstructure:"id"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"db":                "database.url",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"root":              "data.root",
	"pattern":           "data.pattern",
	"continue-on-error": "ingest.continue_on_error",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("data.root", "./data")
	v.SetDefault("data.pattern", "*.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ingest.continue_on_error", false)
	v.SetDefault("lock.id", migration.DefaultLockID)
}

// Load builds the configuration. Precedence: changed flags, then ORDERLOAD_* environment
// (a .env file in the working directory is loaded first), then the config file, then defaults.
// An empty path looks for orderload.yaml in the working directory and tolerates its absence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("orderload")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// DatabaseURL returns the configured URL, or a connection string built from the parts.
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return c.Runtime().ConnectionString()
}

// Runtime converts the database section into a runtime.Config.
func (c *Config) Runtime() *runtime.Config {
	return &runtime.Config{
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Database:       c.Database.Name,
		User:           c.Database.User,
		Password:       c.Database.Password,
		SSLMode:        c.Database.SSLMode,
		ConnectTimeout: c.Database.ConnectTimeout,
	}
}
