// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// validLogLevels maps the accepted log level strings to slog levels.
var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}

	if cfg.Ledger.MaxAgreements == 0 {
		return fmt.Errorf("%w: maxAgreements must be positive", ErrInvalidLedgerParams)
	}
	p := cfg.LedgerParams()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLedgerParams, err)
	}

	return nil
}

// SlogLevel returns the slog level for cfg.LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	if lvl, ok := validLogLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return slog.LevelInfo
}
