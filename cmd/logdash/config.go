package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tinytelemetry/logdash/internal/model"
)

const (
	defaultAPIURL          = model.DefaultAPIURL
	defaultRequestTimeout  = model.DefaultRequestTimeout
	defaultListenAddr      = model.DefaultListenAddr
	defaultSettingsBackend = backendFile

	backendFile   = "file"
	backendDuckDB = "duckdb"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	APIURL             string        `mapstructure:"api-url"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	SettingsPath       string        `mapstructure:"settings-path"`
	SettingsBackend    string        `mapstructure:"settings-backend"`
	DBPath             string        `mapstructure:"db-path"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	View               string        `mapstructure:"view"`
	ListenAddr         string        `mapstructure:"listen-addr"`
	LogPath            string        `mapstructure:"log-path"`
	ConfigPath         string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LOGDASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-url", defaultAPIURL)
	v.SetDefault("request-timeout", defaultRequestTimeout)
	v.SetDefault("settings-path", filepath.Join(home, ".config", "logdash", "settings.yml"))
	v.SetDefault("settings-backend", defaultSettingsBackend)
	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "logdash", "logdash.duckdb"))
	v.SetDefault("reverse-scroll-wheel", false)
	v.SetDefault("view", "")
	v.SetDefault("listen-addr", defaultListenAddr)
	v.SetDefault("log-path", filepath.Join(home, ".local", "state", "logdash", "logdash.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "logdash", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return cfg, fmt.Errorf("api-url must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	}
	cfg.SettingsBackend = strings.ToLower(cfg.SettingsBackend)
	if cfg.SettingsBackend != backendFile && cfg.SettingsBackend != backendDuckDB {
		return cfg, fmt.Errorf("invalid settings-backend %q (want %s or %s)", cfg.SettingsBackend, backendFile, backendDuckDB)
	}

	// Expand ~ in paths
	cfg.SettingsPath = expandHome(home, cfg.SettingsPath)
	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.LogPath = expandHome(home, cfg.LogPath)

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
