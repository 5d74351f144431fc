package badger

import (
	"fmt"

	"github.com/poiesic/kbsync/core"
)

// Key prefixes for different data types
const (
	ledgerEntryPrefix = "ledger:"
)

// makeLedgerKey generates a key for a ledger entry by fingerprint.
// Format: ledger:<fingerprint>
func makeLedgerKey(fingerprint core.Fingerprint) []byte {
	return []byte(fmt.Sprintf("%s%s", ledgerEntryPrefix, fingerprint))
}
