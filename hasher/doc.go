// Package hasher computes content fingerprints used as deduplication keys.
//
// Files are streamed through the digest in fixed-size chunks, so memory use
// does not grow with file size. Two algorithms are available:
//
//   - sha256: the default, compatible with ledgers written by earlier tools
//   - blake2b: BLAKE2b-256
//
// A fingerprint depends only on file content, never on the file name or path.
package hasher
