package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrInvalidConfig reports an environment value that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds environment defaults for the command-line tools. Flags given
// on the command line take precedence.
type Config struct {
	Details       bool    `mapstructure:"LAPDRIFT_DETAILS"`
	Columns       bool    `mapstructure:"LAPDRIFT_COLUMNS"`
	LocalTime     bool    `mapstructure:"LAPDRIFT_LOCAL_TIME"`
	TreadmillPace float64 `mapstructure:"LAPDRIFT_TREADMILL_PACE"`
	OutDir        string  `mapstructure:"LAPDRIFT_OUT_DIR"`
	ZoneEdges     string  `mapstructure:"LAPDRIFT_ZONE_EDGES"`
}

// Load reads LAPDRIFT_* environment variables over the built-in defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LAPDRIFT_DETAILS", false)
	v.SetDefault("LAPDRIFT_COLUMNS", false)
	v.SetDefault("LAPDRIFT_LOCAL_TIME", true)
	v.SetDefault("LAPDRIFT_TREADMILL_PACE", 12.0)
	v.SetDefault("LAPDRIFT_OUT_DIR", "")
	v.SetDefault("LAPDRIFT_ZONE_EDGES", "0,100,123,136,146,154,300")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// pace 0 means treadmill mode off, so a bare -treadmill needs a real default
	if !(cfg.TreadmillPace > 0) {
		return Config{}, fmt.Errorf("%w: LAPDRIFT_TREADMILL_PACE must be positive, got %v", ErrInvalidConfig, cfg.TreadmillPace)
	}
	return cfg, nil
}
