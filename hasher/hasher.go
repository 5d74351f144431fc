// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/kbsync/core"
)

// Algorithm names a digest algorithm.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"

	// ChunkSize is the number of bytes read from a file per hash update.
	ChunkSize = 8192
)

// ParseAlgorithm maps a user-supplied name to an Algorithm.
// The empty string selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "blake2b", "blake2b-256":
		return BLAKE2b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Hasher computes file fingerprints.
// A Hasher holds no per-file state and is safe for concurrent use.
type Hasher struct {
	algorithm Algorithm
}

// New creates a Hasher for the given algorithm.
func New(algorithm Algorithm) (*Hasher, error) {
	if _, err := newDigest(algorithm); err != nil {
		return nil, err
	}
	return &Hasher{algorithm: algorithm}, nil
}

// Algorithm returns the digest algorithm in use.
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Fingerprint streams the file at path through the digest.
// Any failure is returned as a *HashError.
func (h *Hasher) Fingerprint(ctx context.Context, path string) (core.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &HashError{Path: path, Err: err}
	}
	defer f.Close()

	fp, err := h.FingerprintReader(ctx, f)
	if err != nil {
		return "", &HashError{Path: path, Err: err}
	}
	return fp, nil
}

// FingerprintReader streams r through the digest in ChunkSize pieces.
// The context is checked between chunks.
func (h *Hasher) FingerprintReader(ctx context.Context, r io.Reader) (core.Fingerprint, error) {
	digest, err := newDigest(h.algorithm)
	if err != nil {
		return "", err
	}

	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}

	return core.Fingerprint(hex.EncodeToString(digest.Sum(nil))), nil
}

func newDigest(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case SHA256:
		return sha256.New(), nil
	case BLAKE2b:
		return blake2b.New(32, nil) // 32 bytes = 256 bits
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
