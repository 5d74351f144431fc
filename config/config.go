// Package config loads kbsync settings from an optional file, KBSYNC_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/hasher"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "KBSYNC"

// Ledger backends.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// Default ledger locations per backend.
const (
	DefaultJSONLedgerPath   = ".uploaded_files.json"
	DefaultBadgerLedgerPath = ".uploaded_files.db"
)

// Keys understood in config files. Nested keys map to environment variables
// with dots replaced by underscores, e.g. ledger.path -> KBSYNC_LEDGER_PATH.
const (
	KeyBaseURL        = "base_url"
	KeyToken          = "token"
	KeyTimeout        = "timeout"
	KeyLedgerPath     = "ledger.path"
	KeyLedgerBackend  = "ledger.backend"
	KeyHashAlgorithm  = "hash.algorithm"
	KeyHashWorkers    = "hash.workers"
	KeyMaxAttempts    = "retry.max_attempts"
	KeyRetryDelay     = "retry.delay"
	KeyAssociateDelay = "associate_delay"
	KeyExtensions     = "extensions"
)

var (
	// ErrUnknownBackend is returned for a ledger backend other than json or badger.
	ErrUnknownBackend = errors.New("unknown ledger backend")

	// ErrInvalidValue is returned when a numeric setting is out of range.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config holds resolved settings.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	LedgerPath     string
	LedgerBackend  string
	HashAlgorithm  hasher.Algorithm
	HashWorkers    int
	MaxAttempts    int
	RetryDelay     time.Duration
	AssociateDelay time.Duration
	Extensions     []string

	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, "http://localhost:3000")
	v.SetDefault(KeyTimeout, 5*time.Minute)
	v.SetDefault(KeyLedgerBackend, BackendJSON)
	v.SetDefault(KeyHashAlgorithm, string(hasher.SHA256))
	v.SetDefault(KeyHashWorkers, 1)
	v.SetDefault(KeyMaxAttempts, 3)
	v.SetDefault(KeyRetryDelay, 2*time.Second)
	v.SetDefault(KeyAssociateDelay, time.Second)
	v.SetDefault(KeyExtensions, core.DefaultExtensions)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path (format inferred from its
// extension) and resolves every setting. An empty path skips the file.
// Overrides, keyed like the file, take precedence over file and environment;
// the CLI passes explicitly set flags here.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}
	return FromViper(v)
}

// FromViper resolves and validates settings from v.
func FromViper(v *viper.Viper) (*Config, error) {
	algorithm, err := hasher.ParseAlgorithm(v.GetString(KeyHashAlgorithm))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:        strings.TrimSpace(v.GetString(KeyBaseURL)),
		Token:          strings.TrimSpace(v.GetString(KeyToken)),
		Timeout:        v.GetDuration(KeyTimeout),
		LedgerPath:     strings.TrimSpace(v.GetString(KeyLedgerPath)),
		LedgerBackend:  strings.ToLower(strings.TrimSpace(v.GetString(KeyLedgerBackend))),
		HashAlgorithm:  algorithm,
		HashWorkers:    v.GetInt(KeyHashWorkers),
		MaxAttempts:    v.GetInt(KeyMaxAttempts),
		RetryDelay:     v.GetDuration(KeyRetryDelay),
		AssociateDelay: v.GetDuration(KeyAssociateDelay),
		Extensions:     SplitList(v.GetStringSlice(KeyExtensions)),
		File:           v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and fills in backend-dependent defaults.
func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case BackendJSON:
		if c.LedgerPath == "" {
			c.LedgerPath = DefaultJSONLedgerPath
		}
	case BackendBadger:
		if c.LedgerPath == "" {
			c.LedgerPath = DefaultBadgerLedgerPath
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.LedgerBackend)
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidValue, KeyMaxAttempts, c.MaxAttempts)
	}
	if c.HashWorkers < 1 {
		c.HashWorkers = 1
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, KeyRetryDelay)
	}
	if c.AssociateDelay < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, KeyAssociateDelay)
	}
	if len(c.Extensions) == 0 {
		c.Extensions = core.DefaultExtensions
	}
	return nil
}

// SplitList flattens comma- or space-separated items into normalized
// extensions, dropping empties and duplicates.
func SplitList(items []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			ext := core.NormalizeExtension(part)
			if ext == "" || seen[ext] {
				continue
			}
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out
}
