package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/bulga138/tekst/buffer"
)

// Config holds user preferences.
type Config struct {
	// Buffer selects the storage strategy: lines, contiguous or rope.
	Buffer        string `mapstructure:"buffer"`
	Debug         bool   `mapstructure:"debug"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
}

const (
	appName    = "tekst"
	configName = "config"
	configType = "toml"
	envPrefix  = "TEKST"
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Buffer:        string(buffer.KindLines),
		Debug:         false,
		LogFile:       "",
		LogMaxSizeMB:  10,
		ShowStatusBar: true,
	}
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appName, configName+"."+configType), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("buffer", d.Buffer)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("show_status_bar", d.ShowStatusBar)
	return v
}

// Load reads the config file at path, or at DefaultPath when path is empty,
// and applies TEKST_* environment overrides. A missing file is not an error
// unless path was given explicitly.
func Load(path string) (Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if !missing || explicit {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if _, err := buffer.ParseKind(c.Buffer); err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	if c.LogMaxSizeMB < 0 {
		return fmt.Errorf("log_max_size_mb must be >= 0, got %d", c.LogMaxSizeMB)
	}
	return nil
}

// Save writes cfg as TOML to path, or to DefaultPath when path is empty.
func Save(cfg Config, path string) (string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("buffer", cfg.Buffer)
	v.Set("debug", cfg.Debug)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	v.Set("show_status_bar", cfg.ShowStatusBar)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}
