package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digest(c byte) core.Fingerprint {
	return core.Fingerprint(strings.Repeat(string(c), 64))
}

func loadedLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	l := New(path)
	n, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	l, path := loadedLedger(t)
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Entries())

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "load must not create the file")
}

func TestRecord_PersistsImmediately(t *testing.T) {
	ctx := context.Background()
	l, path := loadedLedger(t)

	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('a'), Name: "a.pdf"}))
	assert.True(t, l.Contains(digest('a')))

	// A second instance stands in for a process restarted after a crash.
	reopened := New(path)
	n, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	entry, ok := reopened.Get(digest('a'))
	require.True(t, ok)
	assert.Equal(t, "a.pdf", entry.Name)
}

func TestRecord_FileFormat(t *testing.T) {
	ctx := context.Background()
	l, path := loadedLedger(t)

	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('b'), Name: "b.txt"}))
	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('c'), Name: "año.csv"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]string{
		string(digest('b')): "b.txt",
		string(digest('c')): "año.csv",
	}, raw)
	assert.Contains(t, string(data), "\n  \"", "two-space indentation")
	assert.Contains(t, string(data), "año.csv", "names are not escaped")

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary files are cleaned up")
}

func TestRecord_IdempotentNoOverwrite(t *testing.T) {
	ctx := context.Background()
	l, _ := loadedLedger(t)

	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('d'), Name: "first.pdf"}))
	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('d'), Name: "second.pdf"}))

	assert.Equal(t, 1, l.Len())
	entry, ok := l.Get(digest('d'))
	require.True(t, ok)
	assert.Equal(t, "first.pdf", entry.Name)
}

func TestRecord_InvalidEntry(t *testing.T) {
	l, _ := loadedLedger(t)
	err := l.Record(context.Background(), core.LedgerEntry{Fingerprint: digest('e')})
	assert.ErrorIs(t, err, core.ErrInvalidLedgerEntry)
	assert.Zero(t, l.Len())
}

func TestRecord_BeforeLoad(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "ledger.json"))
	err := l.Record(context.Background(), core.LedgerEntry{Fingerprint: digest('f'), Name: "f.pdf"})
	assert.ErrorIs(t, err, storage.ErrNotLoaded)
}

func TestRecord_WriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The parent "directory" is a regular file, so no write can succeed.
	l := New(filepath.Join(blocker, "ledger.json"))
	_, err := l.Load(ctx)
	require.Error(t, err, "reading through a file path fails")

	l.loaded = true
	err = l.Record(ctx, core.LedgerEntry{Fingerprint: digest('a'), Name: "a.pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrLedgerWrite)
	assert.False(t, l.Contains(digest('a')))
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"aaaa": "a.pdf"`},
		{"empty file", ``},
		{"null", `null`},
		{"array", `["a.pdf"]`},
		{"non-string value", `{"aaaa": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := New(path).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, storage.ErrLedgerCorrupt)

			// The corrupt file is left untouched.
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestLoad_ExistingFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	content := "{\n  \"" + string(digest('1')) + "\": \"manual.pdf\",\n  \"" + string(digest('2')) + "\": \"data.csv\"\n}"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := New(path)
	n, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, digest('1'), entries[0].Fingerprint)
	assert.Equal(t, "manual.pdf", entries[0].Name)
	assert.Equal(t, "data.csv", entries[1].Name)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	l, path := loadedLedger(t)
	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('a'), Name: "a.pdf"}))

	require.NoError(t, l.Reset(ctx))
	assert.Zero(t, l.Len())
	assert.False(t, l.Contains(digest('a')))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Reset on an absent file is fine, and the ledger stays usable.
	require.NoError(t, l.Reset(ctx))
	require.NoError(t, l.Record(ctx, core.LedgerEntry{Fingerprint: digest('b'), Name: "b.pdf"}))
	assert.Equal(t, 1, l.Len())
}

func TestClosed(t *testing.T) {
	l, _ := loadedLedger(t)
	require.NoError(t, l.Close())

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = l.Record(context.Background(), core.LedgerEntry{Fingerprint: digest('a'), Name: "a.pdf"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, l.Reset(context.Background()), storage.ErrStorageClosed)
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, New("").Path())
}
