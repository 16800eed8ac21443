// Package config loads the service configuration from the environment and an
// optional svarozhits.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the
// environment, e.g. SVAROZHITS_PORT.
const EnvPrefix = "SVAROZHITS"

// Defaults.
const (
	DefaultPort        = 8008
	DefaultDatabaseURL = "sqlite://database.db?mode=rwc"
	DefaultLogLevel    = "info"
)

// Config holds all application configuration.
type Config struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	DatabaseURL     string        `mapstructure:"database_url" validate:"required"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Addr returns the listen address for the configured port on all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load reads configuration from svarozhits.yaml in the working directory, if
// present, and from SVAROZHITS_* environment variables, which take precedence.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("svarozhits")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile is like Load but reads the given yaml file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("shutdown_timeout", time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
