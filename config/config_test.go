// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bitfsorg/libroyalty-go/royalty"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"MaxAgreements", cfg.Ledger.MaxAgreements, uint64(1000)},
		{"MinRate", cfg.Ledger.MinRate, uint64(100)},
		{"MaxRate", cfg.Ledger.MaxRate, uint64(2000)},
		{"PaymentAsset", cfg.Ledger.PaymentAsset, royalty.DefaultPaymentAsset},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if !strings.HasSuffix(cfg.DataDir, ".royalty") {
		t.Errorf("DataDir = %q, want suffix %q", cfg.DataDir, ".royalty")
	}
}

func TestDefaultConfigParamsMatchLedgerDefaults(t *testing.T) {
	got := DefaultConfig().LedgerParams()
	want := royalty.DefaultParams()
	if got.MaxAgreements != want.MaxAgreements || got.MinRate != want.MinRate ||
		got.MaxRate != want.MaxRate || got.PaymentAsset != want.PaymentAsset {
		t.Errorf("LedgerParams() = %+v, want %+v", got, want)
	}
	if got.Authority != nil || got.NextID != 0 {
		t.Errorf("LedgerParams() should not carry authority or counter: %+v", got)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "royalty.yaml")

	original := Config{
		DataDir:  "/tmp/test-royalty",
		Network:  "testnet",
		LogLevel: "debug",
		LogFile:  "/tmp/royalty.log",
		Ledger: LedgerConfig{
			MaxAgreements: 50,
			MinRate:       10,
			MaxRate:       5000,
			PaymentAsset:  "SP3.cura",
		},
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("LoadConfig = %+v, want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "royalty.yaml")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

func TestSaveConfig_OutputContainsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "royalty.yaml")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Royalty ledger configuration") {
		t.Error("saved config should start with the configuration header")
	}
}

// ---------------------------------------------------------------------------
// LoadConfig tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/royalty.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "royalty.yaml")
	if err := os.WriteFile(path, []byte("network: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("LoadConfig bad yaml: got %v, want ErrInvalidConfigFile", err)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "royalty.yaml")
	content := `# comment
network: testnet
ledger:
  maxRate: 3000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.Ledger.MaxRate != 3000 {
		t.Errorf("MaxRate = %d, want 3000", cfg.Ledger.MaxRate)
	}
	if cfg.Ledger.MinRate != royalty.DefaultMinRate {
		t.Errorf("MinRate = %d, want default %d", cfg.Ledger.MinRate, royalty.DefaultMinRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := filepath.Join(t.TempDir(), "royalty.yaml")
	if err := os.WriteFile(path, []byte("network: testnet\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// ApplyEnv tests
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv("ROYALTY_NETWORK", "regtest")
	t.Setenv("ROYALTY_LOG_LEVEL", "debug")
	t.Setenv("ROYALTY_LEDGER_MAX_AGREEMENTS", "7")
	t.Setenv("ROYALTY_LEDGER_PAYMENT_ASSET", "SP9.env-token")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want regtest", cfg.Network)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Ledger.MaxAgreements != 7 {
		t.Errorf("MaxAgreements = %d, want 7", cfg.Ledger.MaxAgreements)
	}
	if cfg.Ledger.PaymentAsset != "SP9.env-token" {
		t.Errorf("PaymentAsset = %q, want SP9.env-token", cfg.Ledger.PaymentAsset)
	}
	// Unset variables leave values alone.
	if cfg.Ledger.MaxRate != royalty.DefaultMaxRate {
		t.Errorf("MaxRate = %d, want %d", cfg.Ledger.MaxRate, royalty.DefaultMaxRate)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	t.Setenv("ROYALTY_LEDGER_MIN_RATE", "lots")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("ApplyEnv with non-numeric rate: expected error")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"empty_network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"zero_max_agreements", func(c *Config) { c.Ledger.MaxAgreements = 0 }, ErrInvalidLedgerParams},
		{"min_equals_max", func(c *Config) { c.Ledger.MinRate = 2000 }, ErrInvalidLedgerParams},
		{"max_over_basis_points", func(c *Config) { c.Ledger.MaxRate = 10001 }, ErrInvalidLedgerParams},
		{"empty_payment_asset", func(c *Config) { c.Ledger.PaymentAsset = "" }, ErrInvalidLedgerParams},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfig_RateBoundWrapsLedgerError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ledger.MinRate = 5000
	err := ValidateConfig(cfg)
	if !errors.Is(err, royalty.ErrInvalidRateBound) {
		t.Errorf("ValidateConfig: got %v, want wrapped royalty.ErrInvalidRateBound", err)
	}
}

func TestValidateConfig_MaxRateWrapsLedgerError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ledger.MaxRate = 10001
	err := ValidateConfig(cfg)
	if !errors.Is(err, royalty.ErrInvalidMaxRate) {
		t.Errorf("ValidateConfig: got %v, want wrapped royalty.ErrInvalidMaxRate", err)
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error", "dEbUg"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		cfg := DefaultConfig()
		cfg.LogLevel = tc.level
		if got := cfg.SlogLevel(); got != tc.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.royalty")
	want := filepath.Join("/home/user/.royalty", "royalty.yaml")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestDBPath(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got, want := cfg.DBPath(), filepath.Join("/data", "ledger.db"); got != want {
		t.Errorf("DBPath = %q, want %q", got, want)
	}
}
