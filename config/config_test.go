package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/kbsync/hasher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, BackendJSON, cfg.LedgerBackend)
	assert.Equal(t, DefaultJSONLedgerPath, cfg.LedgerPath)
	assert.Equal(t, hasher.SHA256, cfg.HashAlgorithm)
	assert.Equal(t, 1, cfg.HashWorkers)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, time.Second, cfg.AssociateDelay)
	assert.Equal(t, []string{"pdf", "txt", "html", "csv"}, cfg.Extensions)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://kb.example.com/
token: sk-file
timeout: 30s
ledger:
  backend: badger
hash:
  algorithm: blake2b
  workers: 4
retry:
  max_attempts: 5
  delay: 500ms
associate_delay: 0s
extensions: [PDF, .md]
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://kb.example.com/", cfg.BaseURL)
	assert.Equal(t, "sk-file", cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, BackendBadger, cfg.LedgerBackend)
	assert.Equal(t, DefaultBadgerLedgerPath, cfg.LedgerPath)
	assert.Equal(t, hasher.BLAKE2b, cfg.HashAlgorithm)
	assert.Equal(t, 4, cfg.HashWorkers)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Zero(t, cfg.AssociateDelay)
	assert.Equal(t, []string{"pdf", "md"}, cfg.Extensions)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbsync.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token": "sk-file", "ledger": {"path": "file.json"}}`), 0o644))

	t.Setenv("KBSYNC_TOKEN", "sk-env")
	t.Setenv("KBSYNC_LEDGER_PATH", "env.json")
	t.Setenv("KBSYNC_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("KBSYNC_EXTENSIONS", "txt,html")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Token)
	assert.Equal(t, "env.json", cfg.LedgerPath)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, []string{"txt", "html"}, cfg.Extensions)
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("KBSYNC_TOKEN", "sk-env")

	cfg, err := Load("", map[string]any{
		KeyToken:         "sk-flag",
		KeyLedgerBackend: BackendBadger,
		KeyRetryDelay:    250 * time.Millisecond,
		KeyExtensions:    []string{"txt"},
	})
	require.NoError(t, err)

	assert.Equal(t, "sk-flag", cfg.Token)
	assert.Equal(t, DefaultBadgerLedgerPath, cfg.LedgerPath, "backend default follows the overridden backend")
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, []string{"txt"}, cfg.Extensions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{name: "backend", env: map[string]string{"KBSYNC_LEDGER_BACKEND": "sqlite"}, wantErr: ErrUnknownBackend},
		{name: "attempts", env: map[string]string{"KBSYNC_RETRY_MAX_ATTEMPTS": "0"}, wantErr: ErrInvalidValue},
		{name: "delay", env: map[string]string{"KBSYNC_RETRY_DELAY": "-1s"}, wantErr: ErrInvalidValue},
		{name: "hash", env: map[string]string{"KBSYNC_HASH_ALGORITHM": "md5"}, wantErr: hasher.ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"pdf", "txt"}, SplitList([]string{"PDF, .txt", "pdf"}))
	assert.Equal(t, []string{"md"}, SplitList([]string{"md"}))
	assert.Nil(t, SplitList([]string{" , "}))
}
