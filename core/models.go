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
	"path/filepath"
	"strings"
	"time"
)

// Fingerprint is the hex-encoded content digest of a file.
// Identical bytes always produce identical fingerprints for a given algorithm.
type Fingerprint string

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first 12 characters of the fingerprint for log output.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// FileRecord describes a candidate file found during a scan pass.
// It is transient and never persisted directly.
type FileRecord struct {
	Path         string // Absolute path on local disk
	RelativePath string // Path relative to the scan root
	Extension    string // Lower-case extension without the leading dot
	Size         int64
}

// Name returns the base file name.
func (f FileRecord) Name() string {
	return filepath.Base(f.Path)
}

// NewFileRecord builds a FileRecord for path relative to root.
func NewFileRecord(root, path string, size int64) FileRecord {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return FileRecord{
		Path:         path,
		RelativePath: rel,
		Extension:    NormalizeExtension(filepath.Ext(path)),
		Size:         size,
	}
}

// LedgerEntry records a file whose content was both uploaded and associated
// with a collection.
type LedgerEntry struct {
	Fingerprint  Fingerprint
	Name         string    // Original file name
	FileID       string    // Remote file identifier, if known
	CollectionID string    // Collection the file was added to, if known
	RecordedAt   time.Time // When the entry was recorded, if known
}

// RunSummary holds the counters accumulated during one pipeline run.
type RunSummary struct {
	RunID       string
	Total       int // Number of candidate files found by the scan
	Uploaded    int // Files uploaded, associated and recorded
	Skipped     int // Files whose content was already in the ledger
	Failed      int // Files that failed hashing, upload or association
	Interrupted bool
	Elapsed     time.Duration
}

// Processed returns the number of files that reached a terminal state.
func (s *RunSummary) Processed() int {
	return s.Uploaded + s.Skipped + s.Failed
}

// Remaining returns the number of files never reached because the run was interrupted.
func (s *RunSummary) Remaining() int {
	if r := s.Total - s.Processed(); r > 0 {
		return r
	}
	return 0
}

// FileState is the processing state of a single file within a run.
type FileState int

const (
	FileStatePending FileState = iota
	FileStateHashed
	FileStateSkippedDuplicate
	FileStateUploading
	FileStateUploaded
	FileStateAssociating
	FileStateRecorded
	FileStateAssociationFailed
	FileStateUploadFailed
)

var fileStateNames = map[FileState]string{
	FileStatePending:           "pending",
	FileStateHashed:            "hashed",
	FileStateSkippedDuplicate:  "skipped",
	FileStateUploading:         "uploading",
	FileStateUploaded:          "uploaded",
	FileStateAssociating:       "associating",
	FileStateRecorded:          "recorded",
	FileStateAssociationFailed: "association-failed",
	FileStateUploadFailed:      "upload-failed",
}

func (s FileState) String() string {
	if name, ok := fileStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible within a run.
func (s FileState) IsTerminal() bool {
	switch s {
	case FileStateSkippedDuplicate, FileStateRecorded, FileStateAssociationFailed, FileStateUploadFailed:
		return true
	}
	return false
}

// IsFailure reports whether the state counts as a failed file.
func (s FileState) IsFailure() bool {
	return s == FileStateAssociationFailed || s == FileStateUploadFailed
}

// DefaultExtensions is the set of file extensions ingested when none are configured.
var DefaultExtensions = []string{"pdf", "txt", "html", "csv"}

// NormalizeExtension lower-cases ext and strips any leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
