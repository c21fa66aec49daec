package main

import (
	"fmt"
	"strings"
	"time"

	"ecoroot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database     repository.Config      `yaml:"database"`
	Redis        repository.RedisConfig `yaml:"redis"`
	Server       ServerConfig           `yaml:"server"`
	Verification VerificationConfig     `yaml:"verification"`
	Session      SessionConfig          `yaml:"session"`

	// CatalogPath overrides the built-in challenge catalog when set.
	CatalogPath string `yaml:"catalogPath"`
	DefaultRole string `yaml:"defaultRole"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type VerificationConfig struct {
	// Variant is "random" for the six-check simulator or "fixed" for the
	// two-phase auto approval.
	Variant           string        `yaml:"variant"`
	MinDelay          time.Duration `yaml:"minDelay"`
	MaxDelay          time.Duration `yaml:"maxDelay"`
	UnderProcessAfter time.Duration `yaml:"underProcessAfter"`
	ApproveAfter      time.Duration `yaml:"approveAfter"`
	PollInterval      time.Duration `yaml:"pollInterval"`
	Seed              uint64        `yaml:"seed"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idleTTL"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

func LoadConfig(file string) (*Config, error) {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(configName)
		viper.AddConfigPath(configPath)
		viper.SetConfigType(configFormat)
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("verification.variant", "random")
	viper.SetDefault("verification.minDelay", "2s")
	viper.SetDefault("verification.maxDelay", "5s")
	viper.SetDefault("verification.underProcessAfter", "2500ms")
	viper.SetDefault("verification.approveAfter", "5s")
	viper.SetDefault("verification.pollInterval", "3s")
	viper.SetDefault("session.idleTTL", "168h")
	viper.SetDefault("session.sweepInterval", "1h")
	viper.SetDefault("defaultRole", "student")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "json")
	viper.SetDefault("database.sslMode", "disable")
	viper.SetDefault("database.maxOpenConns", 10)
	viper.SetDefault("database.maxIdleConns", 5)
	viper.SetDefault("database.connMaxLifetime", "30m")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
