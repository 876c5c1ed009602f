package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/emersion/go-ews"
)

// Config is the configuration of ews-dump.
type Config struct {
	// Endpoint is the EWS URL, e.g. https://mail.example.org/EWS/Exchange.asmx.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Username string `mapstructure:"username" yaml:"username"`
	// Password is usually provided through the EWS_PASSWORD environment
	// variable.
	Password string `mapstructure:"password" yaml:"-"`
	Version  string `mapstructure:"version" yaml:"version"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

const (
	defaultVersion  = "Exchange2013_SP1"
	defaultLogLevel = "warn"
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "ews-dump", "config.yaml")
}

// loadConfig reads the configuration file at path. A missing file yields the
// default configuration.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EWS")
	v.AutomaticEnv()

	v.SetDefault("endpoint", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("version", defaultVersion)
	v.SetDefault("log_level", defaultLogLevel)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if _, ok := err.(*os.PathError); !ok && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) version() (ews.Version, error) {
	return ews.ParseVersion(cfg.Version)
}

func (cfg *Config) logLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(cfg.LogLevel)
}

func (cfg *Config) newService() (*ews.Service, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured")
	}
	version, err := cfg.version()
	if err != nil {
		return nil, err
	}
	s, err := ews.NewService(nil, cfg.Endpoint, version)
	if err != nil {
		return nil, err
	}
	if cfg.Username != "" {
		s.SetBasicAuth(cfg.Username, cfg.Password)
	}
	return s, nil
}
