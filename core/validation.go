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

package core

import (
	"fmt"
	"time"
)

// minFingerprintLength is the shortest digest accepted (128 bits, hex encoded).
const minFingerprintLength = 32

// ValidateFingerprint checks that f is a lower-case hex digest of reasonable length.
func ValidateFingerprint(f Fingerprint) error {
	if len(f) < minFingerprintLength {
		return fmt.Errorf("%w: length %d", ErrInvalidFingerprint, len(f))
	}
	if len(f)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrInvalidFingerprint, len(f))
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidFingerprint, c)
		}
	}
	return nil
}

// ValidateLedgerEntry validates a LedgerEntry according to domain rules.
//
// Validation rules:
//   - Fingerprint must be a valid hex digest
//   - Name must not be empty
//   - RecordedAt must not be in the future
//
// NOT validated (only some backends store them):
//   - FileID
//   - CollectionID
func ValidateLedgerEntry(entry *LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidLedgerEntry)
	}

	if err := ValidateFingerprint(entry.Fingerprint); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLedgerEntry, err)
	}

	if entry.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLedgerEntry, ErrEmptyName)
	}

	if !entry.RecordedAt.IsZero() && entry.RecordedAt.After(time.Now()) {
		return fmt.Errorf("%w: recorded in the future", ErrInvalidLedgerEntry)
	}

	return nil
}
