package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Group   GroupConfig   `mapstructure:"group"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Devices DevicesConfig `mapstructure:"devices"`
}

type GroupConfig struct {
	// Definition is the name of the definition file (without
	// extension) resolved against the device search paths.
	Definition string `mapstructure:"definition"`

	// PollInterval is the duration between input polling cycles.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// RoutineInterval is how often pending routines are swept. It
	// should be much smaller than PollInterval: scheduled times are
	// not aligned to polling boundaries.
	RoutineInterval time.Duration `mapstructure:"routine_interval"`

	// DataRoot is the directory device logs persist under.
	DataRoot string `mapstructure:"data_root"`

	// LogPrefix leads every generated log filename.
	LogPrefix string `mapstructure:"log_prefix"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type DevicesConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("group.definition", "devices")
	viper.SetDefault("group.poll_interval", "1s")
	viper.SetDefault("group.routine_interval", "1ms")
	viper.SetDefault("group.data_root", "data")
	viper.SetDefault("group.log_prefix", "events")
	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.path", "data/archive.db")
	viper.SetDefault("devices.search_paths", []string{"configs/devices"})

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OSC")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
