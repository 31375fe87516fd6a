package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// LoadConfig reads config.toml of home over the defaults and validates the result.
func LoadConfig(home string) (*Config, error) {
	cfg := GetConfig(home)

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, defaultConfigFilePath))
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	cfg.SetRoot(home)
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}

	return cfg, nil
}
