// Package config holds engine configuration and its file loader.
package config

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Worker pool controls.
	WorkerCount int `mapstructure:"worker_count"` // default: runtime.NumCPU(), capped

	// Icon generation.
	IconSizes []int `mapstructure:"icon_sizes"`

	// Default encode options applied when a job does not override.
	DefaultFormat  string `mapstructure:"default_format"`
	DefaultQuality int    `mapstructure:"default_quality"` // 1-100; default 80

	// EnableAVIF registers the AVIF codec.  The pure-Go encoder is
	// noticeably slower than the native formats, so it can be turned off.
	EnableAVIF bool `mapstructure:"enable_avif"`

	// Default resize applied to conversions when the job carries none.
	Resize ResizeConfig `mapstructure:"resize"`

	// Output file permissions; default 0644.
	OutputPermissions uint32 `mapstructure:"output_permissions"`

	// Logging.
	LogLevel string `mapstructure:"log_level"` // "debug", "info", "warn", "error"
}

// ResizeConfig is an optional default resize for conversion jobs.  Zero width
// and height means no resize.
type ResizeConfig struct {
	Width           int  `mapstructure:"width"`
	Height          int  `mapstructure:"height"`
	KeepAspectRatio bool `mapstructure:"keep_aspect_ratio"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		WorkerCount:       0, // resolved at runtime to NumCPU
		IconSizes:         []int{16, 72, 96, 128, 144, 152, 192, 384, 512},
		DefaultFormat:     "webp",
		DefaultQuality:    80,
		EnableAVIF:        true,
		OutputPermissions: 0o644,
		LogLevel:          "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.WorkerCount < 0 {
		return errors.New("config: WorkerCount must not be negative")
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	for _, s := range c.IconSizes {
		if s <= 0 {
			return errors.New("config: IconSizes entries must be positive")
		}
	}
	if c.Resize.Width < 0 || c.Resize.Height < 0 {
		return errors.New("config: Resize dimensions must not be negative")
	}
	return nil
}

// Load reads a configuration file and merges it over the defaults.  A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
