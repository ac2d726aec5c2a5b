package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// KeyTimeOutRest is the POST timeout in minutes (Parameters.TimeOutRest).
	KeyTimeOutRest = "parameters.timeoutrest"

	defaultEnvFile = "configs/.env"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName                 string        `mapstructure:"app_name"`
	Env                     string        `mapstructure:"app_env"`
	LogLevel                string        `mapstructure:"log_level"`
	ServicesFile            string        `mapstructure:"services_file"`
	ConfigFile              string        `mapstructure:"config_file"`
	RequestIDHeader         string        `mapstructure:"request_id_header"`
	EscapeQuery             bool          `mapstructure:"escape_query"`
	TransportTimeoutSeconds int64         `mapstructure:"transport_timeout_seconds"`
	TransportTimeout        time.Duration `mapstructure:"-"`

	// restTimeoutMinutes is the only state shared with the config file watcher.
	restTimeoutMinutes atomic.Int64
}

// Load reads configuration from environment variables, an optional config
// file and the given flag set (which may be nil).
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(defaultEnvFile)

	v := viper.New()

	v.SetDefault("app_name", "samvad-restkit")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("services_file", "./configs/services.yaml")
	v.SetDefault("config_file", "")
	v.SetDefault("request_id_header", "")
	v.SetDefault("escape_query", false)
	v.SetDefault("transport_timeout_seconds", 100)
	v.SetDefault(KeyTimeOutRest, 1)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	path := strings.TrimSpace(v.GetString("config_file"))
	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TransportTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid transport_timeout_seconds (must be positive seconds)")
	}
	cfg.TransportTimeout = time.Duration(cfg.TransportTimeoutSeconds) * time.Second

	minutes, err := restTimeoutMinutes(v)
	if err != nil {
		return nil, err
	}
	cfg.restTimeoutMinutes.Store(minutes)

	if path != "" {
		// An edit that no longer parses keeps the last good value.
		v.OnConfigChange(func(fsnotify.Event) {
			if m, err := restTimeoutMinutes(v); err == nil {
				cfg.restTimeoutMinutes.Store(m)
			}
		})
		v.WatchConfig()
	}
	return &cfg, nil
}

// restTimeoutMinutes reads and validates Parameters.TimeOutRest.
func restTimeoutMinutes(v *viper.Viper) (int64, error) {
	raw := v.Get(KeyTimeOutRest)
	if f, ok := raw.(float64); ok && f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid %s %v (must be whole minutes)", KeyTimeOutRest, raw)
	}
	minutes, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %v (must be whole minutes): %w", KeyTimeOutRest, raw, err)
	}
	if minutes < 0 {
		return 0, fmt.Errorf("invalid %s (must not be negative minutes)", KeyTimeOutRest)
	}
	return minutes, nil
}

// readConfigFile loads path into v.
func readConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %q not found", path)
		}
		return fmt.Errorf("stat config file: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// RestTimeout returns Parameters.TimeOutRest as a duration. Edits to a watched
// config file apply to the next call; it is safe for concurrent use.
func (c *Config) RestTimeout() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.restTimeoutMinutes.Load()) * time.Minute
}
