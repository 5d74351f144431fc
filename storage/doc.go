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

// Package storage provides the ledger abstraction for kbsync.
//
// The ledger records which file contents have already been ingested so a
// later run can skip them. This package defines the Ledger interface and the
// errors shared by its implementations:
//
//   - storage/jsonfile: a single human-readable JSON file (the default)
//   - storage/badger: a BadgerDB directory with synchronous writes
//
// # Write Discipline
//
// Every Record call persists the entry before returning. The JSON backend
// rewrites the whole file atomically; the badger backend commits a synced
// transaction. A crash therefore loses at most the file that was in flight.
//
// # Corruption
//
// A missing store is an empty ledger. A store that exists but cannot be read
// is reported as ErrLedgerCorrupt and never discarded automatically, since
// discarding it would cause every file to be uploaded again.
//
// # Usage
//
//	ledger := jsonfile.New(".uploaded_files.json")
//	if _, err := ledger.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer ledger.Close()
//
//	if !ledger.Contains(fp) {
//	    // upload, associate, then:
//	    err = ledger.Record(ctx, core.LedgerEntry{Fingerprint: fp, Name: "a.pdf"})
//	}
//
// # Thread Safety
//
// Implementations are safe for concurrent use, but the ingestion pipeline
// only ever writes from a single goroutine.
package storage
