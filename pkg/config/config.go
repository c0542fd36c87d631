package config

// Package config provides a reusable loader for VitaLedger configuration
// files and environment variables. It mirrors the structure of the YAML
// files under cmd/config.

import (
	"fmt"

	"github.com/spf13/viper"

	"vitaledger-network/pkg/utils"
)

// Config represents the unified configuration for a VitaLedger node.
type Config struct {
	Chain struct {
		ID          string `mapstructure:"id" json:"id"`
		GenesisFile string `mapstructure:"genesis_file" json:"genesis_file"`
	} `mapstructure:"chain" json:"chain"`

	Scheduler struct {
		Workers        int `mapstructure:"workers" json:"workers"`
		MaxRounds      int `mapstructure:"max_rounds" json:"max_rounds"`
		MaxRetries     int `mapstructure:"max_retries" json:"max_retries"`
		OwnershipLimit int `mapstructure:"ownership_limit" json:"ownership_limit"`
	} `mapstructure:"scheduler" json:"scheduler"`

	State struct {
		// Backend selects "memory" or "bolt".
		Backend string `mapstructure:"backend" json:"backend"`
		DBPath  string `mapstructure:"db_path" json:"db_path"`
	} `mapstructure:"state" json:"state"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the VITA_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("VITA_ENV", ""))
}
