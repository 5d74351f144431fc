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

package badger

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/storage"
)

// Ledger implements storage.Ledger on top of BadgerDB.
// Entries are kept in an in-memory index for O(1) membership tests; every
// Record commits a synced transaction before the index is updated.
type Ledger struct {
	backend     *Backend
	ownsBackend bool
	index       map[core.Fingerprint]core.LedgerEntry
	loaded      bool
	mu          sync.RWMutex
}

var _ storage.Ledger = (*Ledger)(nil)

// NewLedger creates a ledger on an existing backend. The caller keeps
// ownership of the backend and must close it.
func NewLedger(backend *Backend) *Ledger {
	return &Ledger{
		backend: backend,
		index:   map[core.Fingerprint]core.LedgerEntry{},
	}
}

// OpenLedger opens (or creates) a BadgerDB directory and returns a ledger
// that closes the database on Close.
//
// Returns storage.Ledger interface to enforce abstraction.
func OpenLedger(path string, logger *slog.Logger) (storage.Ledger, error) {
	backend, err := OpenBackend(path, false, WithBackendLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open ledger database %s: %w", path, err)
	}
	l := NewLedger(backend)
	l.ownsBackend = true
	return l, nil
}

// Load reads all ledger entries into the in-memory index.
func (l *Ledger) Load(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	index := map[core.Fingerprint]core.LedgerEntry{}
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ledgerEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var entry *core.LedgerEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalLedgerEntry(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: key %s: %w", storage.ErrLedgerCorrupt, item.Key(), err)
			}
			index[entry.Fingerprint] = *entry
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	l.index = index
	l.loaded = true
	return len(index), nil
}

// Record persists an entry in its own synced transaction.
func (l *Ledger) Record(ctx context.Context, entry core.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if !l.loaded {
		return storage.ErrNotLoaded
	}
	if _, exists := l.index[entry.Fingerprint]; exists {
		return nil
	}
	if err := core.ValidateLedgerEntry(&entry); err != nil {
		return err
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	err := l.backend.WithTransaction(func(tx *badger.Txn) error {
		return tx.Set(makeLedgerKey(entry.Fingerprint), storage.MarshalLedgerEntry(&entry))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrLedgerWrite, err)
	}

	l.index[entry.Fingerprint] = entry
	return nil
}

// Contains reports whether a fingerprint has been recorded.
func (l *Ledger) Contains(fingerprint core.Fingerprint) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[fingerprint]
	return ok
}

// Get returns the entry for a fingerprint.
func (l *Ledger) Get(fingerprint core.Fingerprint) (core.LedgerEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.index[fingerprint]
	return entry, ok
}

// Entries returns all entries ordered by fingerprint.
func (l *Ledger) Entries() []core.LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(l.index))
	out := make([]core.LedgerEntry, 0, len(keys))
	for _, fp := range keys {
		out = append(out, l.index[fp])
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.index)
}

// Reset drops every ledger key from the database.
// The database directory itself stays in place while it is open.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := l.backend.DropPrefix([]byte(ledgerEntryPrefix)); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}

	l.backend.logger.Info("ledger reset", "discarded", len(l.index))
	l.index = map[core.Fingerprint]core.LedgerEntry{}
	l.loaded = true
	return nil
}

// Close closes the underlying database if this ledger opened it.
func (l *Ledger) Close() error {
	if !l.ownsBackend || l.backend.IsClosed() {
		return nil
	}
	return l.backend.Close()
}
