// Package config loads the pixcode CLI configuration.
//
// Configuration comes from a single YAML file named by the --config flag
// or the PIXCODE_CONFIG environment variable. There is no discovery of
// default locations; without a file the built-in defaults apply.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by Load.
const EnvVar = "PIXCODE_CONFIG"

var (
	ErrConfigNotFound     = errors.New("config: configuration file not found")
	ErrInvalidLogLevel    = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")
	ErrInvalidOutput      = errors.New("config: invalid output format (must be \"text\", \"json\", \"yaml\", or \"cbor\")")
	ErrInvalidConcurrency = errors.New("config: batch concurrency must be positive")
	ErrInvalidQRSize      = errors.New("config: qr size must be between 21 and 4096 pixels")
)

// Config is the pixcode configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Output selects the result format: text, json, yaml or cbor.
	Output string `yaml:"output"`

	// Merchant holds defaults for encode when flags are not given.
	Merchant MerchantConfig `yaml:"merchant"`

	Encode EncodeConfig `yaml:"encode"`
	Decode DecodeConfig `yaml:"decode"`
	Batch  BatchConfig  `yaml:"batch"`
	QR     QRConfig     `yaml:"qr"`
}

// MerchantConfig holds the default receiver.
type MerchantConfig struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	City string `yaml:"city"`
}

// EncodeConfig configures code generation.
type EncodeConfig struct {
	// FoldAccents strips diacritics from names and descriptions.
	FoldAccents bool `yaml:"fold_accents"`
}

// DecodeConfig configures code parsing.
type DecodeConfig struct {
	// StrictChecksum turns checksum mismatches into errors.
	StrictChecksum bool `yaml:"strict_checksum"`
}

// BatchConfig configures multi-code decoding.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// QRConfig configures image rendering.
type QRConfig struct {
	// Size is the PNG edge length in pixels.
	Size int `yaml:"size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Output:   "text",
		Encode:   EncodeConfig{FoldAccents: true},
		Batch:    BatchConfig{Concurrency: 4},
		QR:       QRConfig{Size: 256},
	}
}

// Load reads the file named by PIXCODE_CONFIG, or returns the defaults
// when the variable is unset.
func Load() (Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path on top of the defaults and validates the result.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all values are within acceptable ranges.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Output {
	case "text", "json", "yaml", "cbor":
	default:
		return ErrInvalidOutput
	}
	if c.Batch.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.QR.Size < 21 || c.QR.Size > 4096 {
		return ErrInvalidQRSize
	}
	return nil
}

// ParseLevel maps a log level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}
