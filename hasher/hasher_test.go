package hasher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/kbsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{input: "", want: SHA256},
		{input: "SHA256", want: SHA256},
		{input: "sha-256", want: SHA256},
		{input: "blake2b", want: BLAKE2b},
		{input: "md5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("crc32")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestFingerprint_KnownSHA256(t *testing.T) {
	h, err := New(SHA256)
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "test.txt", "test")
	fp, err := h.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, core.Fingerprint("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"), fp)
	assert.NoError(t, core.ValidateFingerprint(fp))
}

func TestFingerprint_StableAcrossNames(t *testing.T) {
	for _, algo := range []Algorithm{SHA256, BLAKE2b} {
		t.Run(string(algo), func(t *testing.T) {
			h, err := New(algo)
			require.NoError(t, err)

			dir := t.TempDir()
			a := writeFile(t, dir, "a.pdf", "identical bytes")
			b := writeFile(t, dir, "renamed copy.pdf", "identical bytes")
			c := writeFile(t, dir, "c.pdf", "different bytes")

			ctx := context.Background()
			fa, err := h.Fingerprint(ctx, a)
			require.NoError(t, err)
			fa2, err := h.Fingerprint(ctx, a)
			require.NoError(t, err)
			fb, err := h.Fingerprint(ctx, b)
			require.NoError(t, err)
			fc, err := h.Fingerprint(ctx, c)
			require.NoError(t, err)

			assert.Equal(t, fa, fa2, "same file twice")
			assert.Equal(t, fa, fb, "same content under a different name")
			assert.NotEqual(t, fa, fc, "different content")
			assert.Len(t, string(fa), 64)
		})
	}
}

func TestFingerprint_AlgorithmsDiffer(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.txt", "content")
	sha, err := New(SHA256)
	require.NoError(t, err)
	b2, err := New(BLAKE2b)
	require.NoError(t, err)

	f1, err := sha.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	f2, err := b2.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)
}

func TestFingerprint_LargerThanChunk(t *testing.T) {
	h, err := New(SHA256)
	require.NoError(t, err)

	content := strings.Repeat("x", ChunkSize*3+17)
	path := writeFile(t, t.TempDir(), "big.csv", content)

	fromFile, err := h.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	fromReader, err := h.FingerprintReader(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, fromReader, fromFile)
}

func TestFingerprint_MissingFile(t *testing.T) {
	h, err := New(SHA256)
	require.NoError(t, err)

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	_, err = h.Fingerprint(context.Background(), missing)
	require.Error(t, err)

	var hashErr *HashError
	require.ErrorAs(t, err, &hashErr)
	assert.Equal(t, missing, hashErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFingerprint_ContextCanceled(t *testing.T) {
	h, err := New(SHA256)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.FingerprintReader(ctx, strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestFingerprint_ReadError(t *testing.T) {
	h, err := New(BLAKE2b)
	require.NoError(t, err)

	_, err = h.FingerprintReader(context.Background(), failingReader{})
	assert.EqualError(t, err, "device gone")
}
