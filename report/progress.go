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

// Package report renders pipeline progress and run summaries for a terminal.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/ingestion"
)

// ProgressTracker prints one line per notable pipeline event.
// It is safe for concurrent use.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	processed int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stdout)
func NewProgressTracker(writer io.Writer) *ProgressTracker {
	return &ProgressTracker{writer: writer}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.total = 0
	p.processed = 0
}

// Observe renders a pipeline event. It has the ingestion.Observer signature.
func (p *ProgressTracker) Observe(e ingestion.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	switch e.Kind {
	case ingestion.EventScanned:
		p.total = e.Total
		fmt.Fprintf(p.writer, "%d files found\n", e.Total)
	case ingestion.EventAttemptFailed:
		fmt.Fprintf(p.writer, "  retrying %s (%d/%d): %v\n", e.File.Name(), e.Attempt, e.MaxAttempts, e.Err)
	case ingestion.EventState:
		p.state(e)
	}
}

// state prints a state transition. Must be called with lock held.
func (p *ProgressTracker) state(e ingestion.Event) {
	name := e.File.Name()
	switch e.State {
	case core.FileStateSkippedDuplicate:
		fmt.Fprintf(p.writer, "%s skip %s (already uploaded)\n", prefix(e), name)
	case core.FileStateUploading:
		if e.Attempt == 1 {
			fmt.Fprintf(p.writer, "%s uploading %s\n", prefix(e), name)
		}
	case core.FileStateRecorded:
		fmt.Fprintf(p.writer, "  added %s\n", name)
	case core.FileStateUploadFailed:
		fmt.Fprintf(p.writer, "%s failed %s: %v\n", prefix(e), name, e.Err)
	case core.FileStateAssociationFailed:
		fmt.Fprintf(p.writer, "  failed to add %s: %v\n", name, e.Err)
	}
	if e.State.IsTerminal() {
		p.processed++
	}
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// Processed returns the number of files that reached a terminal state.
func (p *ProgressTracker) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

func prefix(e ingestion.Event) string {
	return fmt.Sprintf("[%6.2f%%]", e.Percent())
}
