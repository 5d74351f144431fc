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

package storage

import (
	"context"

	"github.com/poiesic/kbsync/core"
)

// Ledger is the durable record of content that has been both uploaded and
// associated with a collection. It maps fingerprints to original file names.
//
// The persisted state is always a subset of the remote state: an entry is
// written only after its file's association succeeded, and Record does not
// return until the entry is durable.
type Ledger interface {
	// Load reads the persisted mapping into memory and returns the number of entries.
	// An absent store yields an empty ledger.
	// A present but unreadable store returns an error wrapping ErrLedgerCorrupt.
	Load(ctx context.Context) (int, error)

	// Record inserts an entry and persists the full ledger before returning.
	// Recording a fingerprint that is already present is a no-op and never
	// overwrites the stored entry.
	// Returns an error wrapping ErrLedgerWrite if the entry could not be persisted;
	// the in-memory mapping is left unchanged in that case.
	Record(ctx context.Context, entry core.LedgerEntry) error

	// Contains reports whether a fingerprint has been recorded.
	Contains(fingerprint core.Fingerprint) bool

	// Get returns the entry for a fingerprint.
	Get(fingerprint core.Fingerprint) (core.LedgerEntry, bool)

	// Entries returns all entries ordered by fingerprint.
	Entries() []core.LedgerEntry

	// Len returns the number of entries.
	Len() int

	// Reset discards every entry and clears the backing store.
	// Only called on explicit user instruction.
	Reset(ctx context.Context) error

	// Close releases resources held by the ledger.
	Close() error
}
