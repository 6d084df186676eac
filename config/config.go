/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads recipestore settings from defaults, an optional YAML file, a .env
// file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	storeerrors "github.com/suparena/recipestore/errors"
)

// Environment variables that override file settings.
const (
	EnvRegion            = "AWS_REGION"
	EnvEndpoint          = "DYNAMODB_ENDPOINT"
	EnvAccessKey         = "AWS_ACCESS_KEY"
	EnvSecretKey         = "AWS_SECRET_KEY"
	EnvTablePrefix       = "TABLE_PREFIX"
	EnvHTTPAddr          = "HTTP_ADDR"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFormat         = "LOG_FORMAT"
	EnvOptimisticLocking = "OPTIMISTIC_LOCKING"
)

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

type Config struct {
	AWS    AWSConfig    `yaml:"aws"`
	Tables TablesConfig `yaml:"tables"`
	Store  StoreConfig  `yaml:"store"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
	// Endpoint points the client at DynamoDB Local or another compatible service.
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type TablesConfig struct {
	Prefix        string        `yaml:"prefix"`
	ReadCapacity  int64         `yaml:"read_capacity"`
	WriteCapacity int64         `yaml:"write_capacity"`
	WaitForActive bool          `yaml:"wait_for_active"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`

	// ProvisionTimeout bounds one provisioning attempt, waits included.
	ProvisionTimeout time.Duration `yaml:"provision_timeout"`
}

type StoreConfig struct {
	OptimisticLocking bool          `yaml:"optimistic_locking"`
	ConsistentReads   bool          `yaml:"consistent_reads"`
	OperationTimeout  time.Duration `yaml:"operation_timeout"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		AWS: AWSConfig{Region: "us-west-2"},
		Tables: TablesConfig{
			ReadCapacity:     5,
			WriteCapacity:    5,
			WaitForActive:    true,
			WaitTimeout:      2 * time.Minute,
			ProvisionTimeout: 5 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty, in which case only defaults and the
// environment apply. The result is validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvRegion, &c.AWS.Region)
	str(EnvEndpoint, &c.AWS.Endpoint)
	str(EnvAccessKey, &c.AWS.AccessKey)
	str(EnvSecretKey, &c.AWS.SecretKey)
	str(EnvTablePrefix, &c.Tables.Prefix)
	str(EnvHTTPAddr, &c.HTTP.Addr)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)

	if v, ok := lookup(EnvOptimisticLocking); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return storeerrors.NewValidationError(EnvOptimisticLocking, err.Error())
		}
		c.Store.OptimisticLocking = b
	}
	return nil
}

// Validate reports the first invalid setting as an *errors.ValidationError.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.AWS.Region) == "":
		return storeerrors.NewValidationError("aws.region", "must not be empty")
	case (c.AWS.AccessKey == "") != (c.AWS.SecretKey == ""):
		return storeerrors.NewValidationError("aws.access_key", "access key and secret key must be set together")
	case c.Tables.ReadCapacity <= 0:
		return storeerrors.NewValidationError("tables.read_capacity", "must be greater than zero")
	case c.Tables.WriteCapacity <= 0:
		return storeerrors.NewValidationError("tables.write_capacity", "must be greater than zero")
	case c.Tables.WaitForActive && c.Tables.WaitTimeout <= 0:
		return storeerrors.NewValidationError("tables.wait_timeout", "must be greater than zero when waiting for tables")
	case c.Tables.ProvisionTimeout <= 0:
		return storeerrors.NewValidationError("tables.provision_timeout", "must be greater than zero")
	case c.Store.OperationTimeout < 0:
		return storeerrors.NewValidationError("store.operation_timeout", "must not be negative")
	case strings.TrimSpace(c.HTTP.Addr) == "":
		return storeerrors.NewValidationError("http.addr", "must not be empty")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return storeerrors.NewValidationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}

// NewLogger builds the process logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, storeerrors.NewValidationError("log.level", fmt.Sprintf("unknown level %q", s))
}
