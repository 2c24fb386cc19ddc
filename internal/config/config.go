// Package config loads the settings of the command line tools with viper.
// Precedence: environment (DOCPAGER_*) > config file > defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alp4ka/docpager"
	"github.com/Alp4ka/docpager/internal/logger"
	"github.com/Alp4ka/docpager/mongostore"
)

const EnvPrefix = "DOCPAGER"

type Config struct {
	Mongo      mongostore.Config `mapstructure:"mongo"`
	Pagination docpager.Limits   `mapstructure:"pagination"`
	Log        logger.Config     `mapstructure:"log"`
}

// DefaultConfig returns the configuration used for keys set nowhere else.
func DefaultConfig() Config {
	return Config{
		Mongo: mongostore.Config{
			ServerSelectionTimeout: mongostore.DefaultServerSelectionTimeout,
			OperationTimeout:       mongostore.DefaultOperationTimeout,
			CommandLog:             mongostore.DefaultCommandLogConfig(),
		},
		Pagination: docpager.DefaultLimits(),
		Log:        logger.DefaultConfig(),
	}
}

// Load reads configFile, if any, and the environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return LoadFrom(v)
}

// LoadFrom resolves the configuration from an already populated viper
// instance, e.g. one with bound command line flags.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings required to serve pages.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	if c.Pagination.Default <= 0 || c.Pagination.Max <= 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if c.Pagination.Default > c.Pagination.Max {
		return fmt.Errorf("pagination.default_limit %d exceeds pagination.max_limit %d",
			c.Pagination.Default, c.Pagination.Max)
	}

	return nil
}

// setDefaults registers every key, which also makes AutomaticEnv see them
// during Unmarshal.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("mongo.uri", cfg.Mongo.URI)
	v.SetDefault("mongo.database", cfg.Mongo.Database)
	v.SetDefault("mongo.server_selection_timeout", cfg.Mongo.ServerSelectionTimeout)
	v.SetDefault("mongo.operation_timeout", cfg.Mongo.OperationTimeout)
	v.SetDefault("mongo.should_drop_indexes", cfg.Mongo.ShouldDropIndexes)
	v.SetDefault("mongo.command_log.started", cfg.Mongo.CommandLog.Started)
	v.SetDefault("mongo.command_log.succeeded", cfg.Mongo.CommandLog.Succeeded)
	v.SetDefault("mongo.command_log.failed", cfg.Mongo.CommandLog.Failed)
	v.SetDefault("mongo.command_log.commands", cfg.Mongo.CommandLog.Commands)

	v.SetDefault("pagination.default_limit", cfg.Pagination.Default)
	v.SetDefault("pagination.max_limit", cfg.Pagination.Max)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
