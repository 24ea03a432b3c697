package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type env struct {
	Host               string        `mapstructure:"HOST"`
	Port               uint          `mapstructure:"PORT"`
	HTTPPort           uint          `mapstructure:"HTTP_PORT"`
	ShowAxes           bool          `mapstructure:"SHOW_AXES"`
	ShowRings          bool          `mapstructure:"SHOW_RINGS"`
	DBUrl              string        `mapstructure:"DB_URL"`
	FrameCacheSize     int           `mapstructure:"FRAME_CACHE_SIZE"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	SampleFrames       int           `mapstructure:"SAMPLE_FRAMES"`
	SamplePoints       int           `mapstructure:"SAMPLE_POINTS"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"HOST":                 "0.0.0.0",
	"PORT":                 8765,
	"HTTP_PORT":            8000,
	"SHOW_AXES":            true,
	"SHOW_RINGS":           true,
	"DB_URL":               "",
	"FRAME_CACHE_SIZE":     64,
	"SESSION_IDLE_TIMEOUT": "0s",
	"SAMPLE_FRAMES":        30,
	"SAMPLE_POINTS":        1000,
	"LOG_LEVEL":            "info",
}

// flag name -> config key
var flagKeys = map[string]string{
	"host":       "HOST",
	"port":       "PORT",
	"http-port":  "HTTP_PORT",
	"show-axes":  "SHOW_AXES",
	"show-rings": "SHOW_RINGS",
	"db":         "DB_URL",
	"frames":     "SAMPLE_FRAMES",
	"points":     "SAMPLE_POINTS",
	"log-level":  "LOG_LEVEL",
}

type Config struct {
	env *env
}

var cfgInstance *Config

// NewConfig loads ./.env and the environment once and panics on failure.
func NewConfig() *Config {
	if cfgInstance != nil {
		return cfgInstance
	}
	cfg, err := Load(".env", nil)
	if err != nil {
		panic(fmt.Sprintf("error loading config: %s", err))
	}
	cfgInstance = cfg
	return cfgInstance
}

// Load reads envFile (a missing file is fine), then the process environment,
// then any flags that were explicitly set.
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var e env
	if err := v.Unmarshal(&e); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if e.SampleFrames < 1 {
		return nil, fmt.Errorf("SAMPLE_FRAMES must be at least 1, got %d", e.SampleFrames)
	}
	if e.SamplePoints < 0 {
		return nil, fmt.Errorf("SAMPLE_POINTS must not be negative, got %d", e.SamplePoints)
	}
	return &Config{&e}, nil
}

func (c *Config) Host() string {
	return c.env.Host
}

func (c *Config) Port() uint {
	return c.env.Port
}

func (c *Config) HTTPPort() uint {
	return c.env.HTTPPort
}

func (c *Config) ShowAxes() bool {
	return c.env.ShowAxes
}

func (c *Config) ShowRings() bool {
	return c.env.ShowRings
}

func (c *Config) DBUrl() string {
	return c.env.DBUrl
}

func (c *Config) FrameCacheSize() int {
	return c.env.FrameCacheSize
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return c.env.SessionIdleTimeout
}

func (c *Config) SampleFrames() int {
	return c.env.SampleFrames
}

func (c *Config) SamplePoints() int {
	return c.env.SamplePoints
}

// LogLevel parses LOG_LEVEL, falling back to info for unknown values.
func (c *Config) LogLevel() zerolog.Level {
	switch strings.ToLower(c.env.LogLevel) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
