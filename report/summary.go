package report

import (
	"fmt"
	"io"
	"time"

	"github.com/poiesic/kbsync/core"
)

// PrintSummary writes the final tri-count summary of a run.
func PrintSummary(w io.Writer, summary *core.RunSummary) {
	if summary == nil {
		summary = &core.RunSummary{}
	}

	fmt.Fprintln(w)
	if summary.Interrupted {
		fmt.Fprintf(w, "Interrupted; %d file(s) not processed. Progress has been saved.\n", summary.Remaining())
	}
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Uploaded: %d\n", summary.Uploaded)
	fmt.Fprintf(w, "  Skipped:  %d\n", summary.Skipped)
	fmt.Fprintf(w, "  Failed:   %d\n", summary.Failed)
	if summary.Elapsed > 0 {
		fmt.Fprintf(w, "  Elapsed:  %s\n", summary.Elapsed.Round(time.Millisecond))
	}
}

// PrintLedger writes one line per ledger entry.
func PrintLedger(w io.Writer, entries []core.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "ledger is empty")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s", e.Fingerprint, e.Name)
		if e.FileID != "" {
			line += "  file=" + e.FileID
		}
		if e.CollectionID != "" {
			line += "  collection=" + e.CollectionID
		}
		if !e.RecordedAt.IsZero() {
			line += "  at=" + e.RecordedAt.Format(time.RFC3339)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
}
