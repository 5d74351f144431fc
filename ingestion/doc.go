// Package ingestion provides pipeline orchestration for uploading a directory
// of documents into a remote knowledge collection.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Scanning a root directory for supported files
//   - Fingerprinting file content and skipping content already in the ledger
//   - Uploading with a bounded, fixed-delay retry
//   - Associating each upload with the collection and recording it
//
// Files are processed one at a time. Fingerprints may be computed ahead of
// the upload loop on a worker pool; uploads, associations and ledger writes
// are strictly sequential. Per-file failures are counted in the returned
// RunSummary and do not stop the run.
package ingestion
