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

package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/storage"
)

// DefaultPath is the ledger file name used when none is configured.
const DefaultPath = ".uploaded_files.json"

const fileMode = 0o644

// Ledger implements storage.Ledger backed by a JSON file.
type Ledger struct {
	path    string
	entries map[core.Fingerprint]string
	loaded  bool
	closed  bool
	logger  *slog.Logger
	mu      sync.RWMutex
}

var _ storage.Ledger = (*Ledger)(nil)

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a ledger stored at path. Nothing is read until Load.
func New(path string, opts ...Option) *Ledger {
	if path == "" {
		path = DefaultPath
	}
	l := &Ledger{
		path:    path,
		entries: map[core.Fingerprint]string{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "jsonfile-ledger", "path", path)
	return l
}

// Path returns the location of the ledger file.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads the ledger file. A missing file is an empty ledger.
func (l *Ledger) Load(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, storage.ErrStorageClosed
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.entries = map[core.Fingerprint]string{}
			l.loaded = true
			l.logger.Debug("no ledger file, starting empty")
			return 0, nil
		}
		return 0, fmt.Errorf("read ledger %s: %w", l.path, err)
	}

	entries, err := decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", storage.ErrLedgerCorrupt, l.path, err)
	}

	l.entries = entries
	l.loaded = true
	l.logger.Debug("ledger loaded", "entries", len(entries))
	return len(entries), nil
}

// Record adds an entry and rewrites the ledger file before returning.
func (l *Ledger) Record(ctx context.Context, entry core.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return storage.ErrStorageClosed
	}
	if !l.loaded {
		return storage.ErrNotLoaded
	}
	if _, exists := l.entries[entry.Fingerprint]; exists {
		return nil
	}
	if err := core.ValidateLedgerEntry(&entry); err != nil {
		return err
	}

	next := maps.Clone(l.entries)
	next[entry.Fingerprint] = entry.Name

	data, err := encode(next)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrLedgerWrite, err)
	}
	if err := writeFileAtomic(l.path, data, fileMode); err != nil {
		return fmt.Errorf("%w: %s: %w", storage.ErrLedgerWrite, l.path, err)
	}

	l.entries = next
	return nil
}

// Contains reports whether a fingerprint has been recorded.
func (l *Ledger) Contains(fingerprint core.Fingerprint) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[fingerprint]
	return ok
}

// Get returns the entry for a fingerprint.
func (l *Ledger) Get(fingerprint core.Fingerprint) (core.LedgerEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	name, ok := l.entries[fingerprint]
	if !ok {
		return core.LedgerEntry{}, false
	}
	return core.LedgerEntry{Fingerprint: fingerprint, Name: name}, true
}

// Entries returns all entries ordered by fingerprint.
func (l *Ledger) Entries() []core.LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(l.entries))
	out := make([]core.LedgerEntry, 0, len(keys))
	for _, fp := range keys {
		out = append(out, core.LedgerEntry{Fingerprint: fp, Name: l.entries[fp]})
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Reset discards all entries and deletes the ledger file.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return storage.ErrStorageClosed
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove ledger %s: %w", l.path, err)
	}

	l.logger.Info("ledger reset", "discarded", len(l.entries))
	l.entries = map[core.Fingerprint]string{}
	l.loaded = true
	return nil
}

// Close marks the ledger closed. The file is always consistent, so there is nothing to flush.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func decode(data []byte) (map[core.Fingerprint]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON object")
	}

	entries := make(map[core.Fingerprint]string, len(raw))
	for k, v := range raw {
		entries[core.Fingerprint(k)] = v
	}
	return entries, nil
}

func encode(entries map[core.Fingerprint]string) ([]byte, error) {
	raw := make(map[string]string, len(entries))
	for k, v := range entries {
		raw[string(k)] = v
	}

	// Keep non-ASCII file names readable in the file.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
