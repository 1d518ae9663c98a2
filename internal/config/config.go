// Package config provides the daemon-wide configuration for swapd: safety
// margins, checkpoint retention, watcher polling, and wallet retry policy.
// No hardcoded values for these should exist elsewhere in the codebase.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

// Config holds all daemon configuration.
type Config struct {
	// Storage settings.
	Storage StorageConfig `yaml:"storage"`

	// Safety holds per-ledger-kind safety margins and the Bob fund-deadline.
	Safety SafetyConfig `yaml:"safety"`

	// Watcher holds polling behavior for ledger watchers.
	Watcher WatcherConfig `yaml:"watcher"`

	// Wallet holds retry/backoff policy for wallet action submission.
	Wallet WalletConfig `yaml:"wallet"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	// DataDir is the directory for the checkpoint database and node key.
	DataDir string `yaml:"data_dir"`

	// CheckpointRetention is how long a terminal swap's checkpoint is kept
	// around after completion, for post-mortem inspection, before it
	// becomes eligible for Store.Delete.
	CheckpointRetention time.Duration `yaml:"checkpoint_retention"`
}

// SafetyConfig holds the timing parameters that keep a swap's two legs from
// racing their own timeouts (spec.md §3/§4.4 safety rules).
type SafetyConfig struct {
	// MarginByLedgerKind is the minimum wall-clock gap required between
	// alpha's expiry and beta's expiry, keyed by alpha's LedgerKind, as read
	// by MarginFor. Nothing in this tree copies it into
	// SwapParams.SafetyMargin; an unset SafetyMargin falls back to one hour
	// inside htlcparams and swapfsm instead.
	MarginByLedgerKind map[htlcparams.LedgerKind]time.Duration `yaml:"margin_by_ledger_kind"`

	// SafetyCheckInterval is how often the driver re-evaluates
	// CheckSafety/CheckFundDeadline against the clock.
	SafetyCheckInterval time.Duration `yaml:"safety_check_interval"`

	// BobFundDeadline is how long after StartOfSwap Bob waits for alpha to
	// be funded before aborting and never funding beta, used only when
	// beta's expiry is height-based or relative; a wall-clock beta expiry
	// uses beta.expiry - 2*SafetyMargin instead (spec.md §4.4.2).
	BobFundDeadline time.Duration `yaml:"bob_fund_deadline"`
}

// MarginFor returns the configured safety margin for a given alpha
// LedgerKind, or DefaultSafetyMargin if none is configured.
func (s SafetyConfig) MarginFor(kind htlcparams.LedgerKind) time.Duration {
	if m, ok := s.MarginByLedgerKind[kind]; ok && m > 0 {
		return m
	}
	return DefaultSafetyMargin
}

// WatcherConfig holds ledger-watcher polling behavior.
type WatcherConfig struct {
	// PollInterval is how often a Watcher implementation without its own
	// push mechanism (e.g. block subscription) re-checks chain state.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MinConfirmations is keyed by LedgerKind. It is loaded and saved with
	// the config; neither the driver nor EVMWatcher reads it.
	MinConfirmations map[htlcparams.LedgerKind]uint32 `yaml:"min_confirmations"`
}

// WalletConfig holds wallet-submission retry policy (spec.md §7 error
// taxonomy: retryable vs terminal failures).
type WalletConfig struct {
	// Retries is the number of attempts for a walletaction.Retryable error
	// before the driver gives up and logs for operator attention.
	Retries int `yaml:"retries"`

	// Backoff is the base delay between retries; actual delay grows
	// linearly with attempt number.
	Backoff time.Duration `yaml:"backoff"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// File is the log file path (empty for stderr).
	File string `yaml:"file"`
}

// Defaults a fresh swap uses when nothing more specific is configured.
const (
	DefaultSafetyMargin        = time.Hour
	DefaultSafetyCheckInterval = time.Minute
	DefaultBobFundDeadline     = 30 * time.Minute
	DefaultWatcherPollInterval = 15 * time.Second
	DefaultWalletRetries       = 5
	DefaultWalletBackoff       = 5 * time.Second
	DefaultCheckpointRetention = 7 * 24 * time.Hour
)

// DefaultConfig returns a Config with sensible defaults for every field.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:             "~/.swapd",
			CheckpointRetention: DefaultCheckpointRetention,
		},
		Safety: SafetyConfig{
			MarginByLedgerKind: map[htlcparams.LedgerKind]time.Duration{
				htlcparams.UtxoChain:    DefaultSafetyMargin,
				htlcparams.AccountChain: DefaultSafetyMargin,
				htlcparams.PaymentChannel: 10 * time.Minute,
			},
			SafetyCheckInterval: DefaultSafetyCheckInterval,
			BobFundDeadline:     DefaultBobFundDeadline,
		},
		Watcher: WatcherConfig{
			PollInterval: DefaultWatcherPollInterval,
			MinConfirmations: map[htlcparams.LedgerKind]uint32{
				htlcparams.UtxoChain:    3,
				htlcparams.AccountChain: 12,
			},
		},
		Wallet: WalletConfig{
			Retries: DefaultWalletRetries,
			Backoff: DefaultWalletBackoff,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// Load reads configuration from a YAML file under dataDir, creating one
// with default values if it doesn't yet exist.
func Load(dataDir string) (*Config, error) {
	expandedDir := expandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.DataDir = dataDir

		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("config: create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal config: %w", err)
	}

	header := []byte("# swapd configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the full path to the config file for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
