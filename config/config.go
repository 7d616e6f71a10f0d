// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/bitfsorg/libroyalty-go/royalty"
)

// EnvPrefix is the prefix of environment variables read by ApplyEnv,
// e.g. ROYALTY_NETWORK or ROYALTY_LEDGER_MAX_RATE.
const EnvPrefix = "royalty"

// Config holds host settings for a royalty ledger.
type Config struct {
	DataDir  string       `yaml:"dataDir"  split_words:"true"`
	Network  string       `yaml:"network"`
	LogLevel string       `yaml:"logLevel" split_words:"true"`
	LogFile  string       `yaml:"logFile"  split_words:"true"`
	Ledger   LedgerConfig `yaml:"ledger"`
}

// LedgerConfig seeds the global parameters of a new ledger database.
// It has no effect on a database that already exists.
type LedgerConfig struct {
	MaxAgreements uint64 `yaml:"maxAgreements" split_words:"true"`
	MinRate       uint64 `yaml:"minRate"       split_words:"true"`
	MaxRate       uint64 `yaml:"maxRate"       split_words:"true"`
	PaymentAsset  string `yaml:"paymentAsset"  split_words:"true"`
}

// DefaultDataDir returns ~/.royalty, or .royalty when the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".royalty"
	}
	return filepath.Join(home, ".royalty")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	p := royalty.DefaultParams()
	return Config{
		DataDir:  DefaultDataDir(),
		Network:  "mainnet",
		LogLevel: "info",
		Ledger: LedgerConfig{
			MaxAgreements: p.MaxAgreements,
			MinRate:       p.MinRate,
			MaxRate:       p.MaxRate,
			PaymentAsset:  p.PaymentAsset,
		},
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "royalty.yaml")
}

// DBPath returns the ledger database path inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// LedgerParams converts the ledger section into initial ledger parameters.
func (c Config) LedgerParams() royalty.Params {
	p := royalty.DefaultParams()
	p.MaxAgreements = c.Ledger.MaxAgreements
	p.MinRate = c.Ledger.MinRate
	p.MaxRate = c.Ledger.MaxRate
	p.PaymentAsset = c.Ledger.PaymentAsset
	return p
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any ROYALTY_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// SaveConfig writes cfg as YAML, creating the parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	header := []byte("# Royalty ledger configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
