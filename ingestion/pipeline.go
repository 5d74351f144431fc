package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kbsync/core"
	"github.com/poiesic/kbsync/remote"
	"github.com/poiesic/kbsync/scan"
	"github.com/poiesic/kbsync/storage"
)

// Defaults for a Pipeline.
const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultAssociateDelay = 1 * time.Second
)

// Fingerprinter computes content fingerprints. *hasher.Hasher implements it.
// Implementations must be safe for concurrent use when hash workers are enabled.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (core.Fingerprint, error)
}

// Pipeline orchestrates uploading a directory into a knowledge collection.
// A Pipeline runs one file at a time and must not be shared between
// concurrent Run calls.
type Pipeline struct {
	ledger         storage.Ledger
	client         remote.KnowledgeClient
	fingerprinter  Fingerprinter
	hashPool       *ants.Pool
	hashWorkers    int
	maxAttempts    int
	retryDelay     time.Duration
	associateDelay time.Duration
	extensions     []string
	skipHidden     bool
	runID          string
	observer       Observer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxAttempts sets the number of upload attempts per file.
// Default is 3.
func WithMaxAttempts(n int) Option {
	return func(p *Pipeline) error {
		if n <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = n
		return nil
	}
}

// WithRetryDelay sets the fixed wait after a failed upload attempt.
// Default is 2s.
func WithRetryDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			d = 0
		}
		p.retryDelay = d
		return nil
	}
}

// WithAssociateDelay sets the pause between a successful upload and its
// association. Zero disables the pause. Default is 1s.
func WithAssociateDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			d = 0
		}
		p.associateDelay = d
		return nil
	}
}

// WithExtensions sets the accepted file extensions.
// Default is core.DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(p *Pipeline) error {
		if len(exts) > 0 {
			p.extensions = exts
		}
		return nil
	}
}

// WithSkipHidden skips dot-files and dot-directories during the scan.
func WithSkipHidden(skip bool) Option {
	return func(p *Pipeline) error {
		p.skipHidden = skip
		return nil
	}
}

// WithHashWorkers enables fingerprint prefetching on a pool of n workers.
// Values below 2 hash inline. Default is 1.
func WithHashWorkers(n int) Option {
	return func(p *Pipeline) error {
		if p.hashPool != nil {
			p.hashPool.Release()
			p.hashPool = nil
		}
		if n < 2 {
			p.hashWorkers = 1
			return nil
		}

		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.hashPool = pool
		p.hashWorkers = n
		return nil
	}
}

// WithObserver registers a callback for pipeline events.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) error {
		p.observer = observer
		return nil
	}
}

// WithRunID fixes the run identifier attached to logs and the summary.
// By default each Run generates a UUIDv7.
func WithRunID(id string) Option {
	return func(p *Pipeline) error {
		p.runID = id
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	ledger storage.Ledger,
	client remote.KnowledgeClient,
	fingerprinter Fingerprinter,
	opts ...Option,
) (*Pipeline, error) {
	if ledger == nil {
		return nil, ErrLedgerRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}
	if fingerprinter == nil {
		return nil, ErrFingerprinterRequired
	}

	p := &Pipeline{
		ledger:         ledger,
		client:         client,
		fingerprinter:  fingerprinter,
		hashWorkers:    1,
		maxAttempts:    DefaultMaxAttempts,
		retryDelay:     DefaultRetryDelay,
		associateDelay: DefaultAssociateDelay,
		extensions:     core.DefaultExtensions,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.hashPool != nil {
		p.hashPool.Release()
	}
}

// run carries the per-invocation state of Run.
type run struct {
	*Pipeline
	collectionID string
	total        int
	summary      *core.RunSummary
	logger       *slog.Logger
	prefetch     *prefetcher
}

// Run uploads every new supported file under root into the collection.
//
// The returned summary is never nil, including when the context is cancelled
// (Interrupted is then true) or a fatal error is returned. Only an invalid
// root and a failed ledger write are fatal; all other per-file failures are
// counted and the run continues.
func (p *Pipeline) Run(ctx context.Context, root, collectionID string) (*core.RunSummary, error) {
	start := time.Now()
	runID := p.runID
	if runID == "" {
		runID = uuid.Must(uuid.NewV7()).String()
	}

	r := &run{
		Pipeline:     p,
		collectionID: collectionID,
		summary:      &core.RunSummary{RunID: runID},
		logger:       p.logger.With("run_id", runID),
	}
	defer func() {
		r.summary.Elapsed = time.Since(start)
	}()

	if collectionID == "" {
		return r.summary, ErrCollectionRequired
	}

	scanner := scan.NewScanner(
		scan.WithExtensions(p.extensions...),
		scan.WithSkipHidden(p.skipHidden),
		scan.WithLogger(r.logger),
	)
	r.logger.Debug("scanning", "root", root, "extensions", scanner.Extensions(), "skip_hidden", p.skipHidden)
	result, err := scanner.Scan(ctx, root)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			r.summary.Interrupted = true
			return r.summary, nil
		}
		return r.summary, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	files := result.Files
	r.total = len(files)
	r.summary.Total = r.total
	r.logger.Info("scan complete", "root", result.Root, "files", r.total, "unreadable", len(result.Problems))
	r.emit(Event{Kind: EventScanned, Index: -1, Total: r.total})

	if p.hashPool != nil && r.total > 1 {
		r.prefetch = startPrefetch(ctx, p.hashPool, p.fingerprinter, files, 2*p.hashWorkers)
		defer r.prefetch.stop()
	}

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}

		state, err := r.processFile(ctx, i, file)
		switch {
		case state == core.FileStateRecorded:
			r.summary.Uploaded++
		case state == core.FileStateSkippedDuplicate:
			r.summary.Skipped++
		case state.IsFailure():
			r.summary.Failed++
		}

		if err != nil {
			r.logger.Error("run aborted", "file", file.RelativePath, "err", err)
			return r.summary, err
		}
	}

	if ctx.Err() != nil {
		r.summary.Interrupted = true
		r.logger.Warn("run interrupted", "remaining", r.summary.Remaining())
	}
	r.logger.Info("run complete",
		"uploaded", r.summary.Uploaded,
		"skipped", r.summary.Skipped,
		"failed", r.summary.Failed,
	)
	return r.summary, nil
}

// processFile drives one file through its state machine and returns the
// final state. A non-terminal state means the file was abandoned because the
// run was cancelled before it reached the remote service. The error is
// non-nil only for failures that must abort the run.
func (r *run) processFile(ctx context.Context, index int, file core.FileRecord) (core.FileState, error) {
	logger := r.logger.With("file", file.RelativePath)
	r.transition(index, file, core.FileStatePending, nil)

	fingerprint, err := r.fingerprint(ctx, index, file)
	if err != nil {
		if ctx.Err() != nil {
			return core.FileStatePending, nil
		}
		logger.Warn("fingerprint failed", "err", err)
		r.transition(index, file, core.FileStateUploadFailed, err)
		return core.FileStateUploadFailed, nil
	}
	logger = logger.With("fingerprint", fingerprint.Short())
	r.transition(index, file, core.FileStateHashed, nil)

	if r.ledger.Contains(fingerprint) {
		logger.Debug("already uploaded, skipping")
		r.transition(index, file, core.FileStateSkippedDuplicate, nil)
		return core.FileStateSkippedDuplicate, nil
	}

	fileID, attempts, err := r.upload(ctx, index, file, logger)
	if err != nil {
		if attempts == 0 {
			return core.FileStatePending, nil
		}
		logger.Error("upload failed", "attempts", attempts, "err", err)
		r.transition(index, file, core.FileStateUploadFailed, err)
		return core.FileStateUploadFailed, nil
	}
	r.transition(index, file, core.FileStateUploaded, nil)

	// The upload has landed remotely; finish associating and recording it
	// even if the run is being cancelled. Cancellation only cuts the pause.
	_ = sleep(ctx, r.associateDelay)
	work := context.WithoutCancel(ctx)

	r.transition(index, file, core.FileStateAssociating, nil)
	if err := r.client.AssociateFile(work, r.collectionID, fileID); err != nil {
		logger.Error("association failed", "file_id", fileID, "err", err)
		r.transition(index, file, core.FileStateAssociationFailed, err)
		return core.FileStateAssociationFailed, nil
	}

	entry := core.LedgerEntry{
		Fingerprint:  fingerprint,
		Name:         file.Name(),
		FileID:       fileID,
		CollectionID: r.collectionID,
		RecordedAt:   time.Now().UTC(),
	}
	if err := r.ledger.Record(work, entry); err != nil {
		fileErr := &FileError{File: file.RelativePath, State: core.FileStateAssociationFailed, Err: err}
		r.transition(index, file, core.FileStateAssociationFailed, fileErr)
		return core.FileStateAssociationFailed, fileErr
	}

	logger.Info("file added", "file_id", fileID)
	r.transition(index, file, core.FileStateRecorded, nil)
	return core.FileStateRecorded, nil
}

func (r *run) fingerprint(ctx context.Context, index int, file core.FileRecord) (core.Fingerprint, error) {
	if r.prefetch != nil {
		return r.prefetch.next(index)
	}
	return r.fingerprinter.Fingerprint(ctx, file.Path)
}

// upload makes up to maxAttempts single-shot upload calls and returns the
// remote file id and the number of attempts made.
func (r *run) upload(ctx context.Context, index int, file core.FileRecord, logger *slog.Logger) (string, int, error) {
	var (
		fileID   string
		attempts int
	)

	err := RetryFixed(ctx, func(attempt int) error {
		attempts = attempt
		r.emit(Event{
			Kind:        EventState,
			Index:       index,
			Total:       r.total,
			File:        file,
			State:       core.FileStateUploading,
			Attempt:     attempt,
			MaxAttempts: r.maxAttempts,
		})

		id, err := r.client.UploadFile(context.WithoutCancel(ctx), file.Path)
		if err != nil {
			return err
		}
		fileID = id
		return nil
	}, r.maxAttempts, r.retryDelay, func(attempt int, err error) {
		logger.Warn("upload attempt failed", "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)
		r.emit(Event{
			Kind:        EventAttemptFailed,
			Index:       index,
			Total:       r.total,
			File:        file,
			State:       core.FileStateUploading,
			Attempt:     attempt,
			MaxAttempts: r.maxAttempts,
			Err:         err,
		})
	})
	if err != nil {
		return "", attempts, err
	}
	return fileID, attempts, nil
}

func (r *run) transition(index int, file core.FileRecord, state core.FileState, err error) {
	if err != nil && state.IsFailure() {
		var fileErr *FileError
		if !errors.As(err, &fileErr) {
			err = &FileError{File: file.RelativePath, State: state, Err: err}
		}
	}
	r.emit(Event{
		Kind:        EventState,
		Index:       index,
		Total:       r.total,
		File:        file,
		State:       state,
		MaxAttempts: r.maxAttempts,
		Err:         err,
	})
}

func (r *run) emit(e Event) {
	if r.observer != nil {
		r.observer(e)
	}
}
