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

// Package kbsync wires the ledger, fingerprinting and knowledge client
// together for a single ingestion session.
package kbsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/kbsync/hasher"
	"github.com/poiesic/kbsync/ingestion"
	"github.com/poiesic/kbsync/remote"
	"github.com/poiesic/kbsync/remote/openwebui"
	"github.com/poiesic/kbsync/storage"
	"github.com/poiesic/kbsync/storage/badger"
	"github.com/poiesic/kbsync/storage/jsonfile"
)

// Ledger backends accepted by WithLedgerBackend.
const (
	LedgerJSON   = "json"
	LedgerBadger = "badger"
)

var (
	// ErrCollectionNotFound is returned when a given collection id does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionRequired is returned when neither a collection id nor a name is given.
	ErrCollectionRequired = errors.New("collection id or name required")
)

type Session struct {
	ledger       storage.Ledger
	client       remote.KnowledgeClient
	hasher       *hasher.Hasher
	ledgerLoaded int
	logger       *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	remoteConfig *remote.Config
	client       remote.KnowledgeClient
	backend      string
	algorithm    hasher.Algorithm
	logger       *slog.Logger
}

// WithRemoteConfig sets the knowledge service connection settings.
func WithRemoteConfig(cfg *remote.Config) SessionOption {
	return func(o *sessionOptions) {
		o.remoteConfig = cfg
	}
}

// WithClient uses an existing knowledge client instead of building one
// from the remote config.
func WithClient(client remote.KnowledgeClient) SessionOption {
	return func(o *sessionOptions) {
		o.client = client
	}
}

// WithLedgerBackend selects the ledger store: "json" (default) or "badger".
func WithLedgerBackend(backend string) SessionOption {
	return func(o *sessionOptions) {
		o.backend = backend
	}
}

// WithHashAlgorithm selects the fingerprint algorithm. Default is SHA-256.
func WithHashAlgorithm(algorithm hasher.Algorithm) SessionOption {
	return func(o *sessionOptions) {
		o.algorithm = algorithm
	}
}

// WithSessionLogger sets the logger passed to every component.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// NewSession opens and loads the ledger at ledgerPath and prepares the
// hasher and knowledge client.
func NewSession(ledgerPath string, opts ...SessionOption) (*Session, error) {
	options := &sessionOptions{
		remoteConfig: remote.DefaultConfig(),
		backend:      LedgerJSON,
		algorithm:    hasher.SHA256,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	h, err := hasher.New(options.algorithm)
	if err != nil {
		return nil, err
	}

	client := options.client
	if client == nil {
		client, err = openwebui.NewClient(options.remoteConfig, openwebui.WithLogger(options.logger))
		if err != nil {
			return nil, err
		}
	}

	ledger, err := OpenLedger(ledgerPath, options.backend, options.logger)
	if err != nil {
		return nil, err
	}

	loaded, err := ledger.Load(context.Background())
	if err != nil {
		ledger.Close()
		return nil, err
	}

	return &Session{
		ledger:       ledger,
		client:       client,
		hasher:       h,
		ledgerLoaded: loaded,
		logger:       options.logger.With("component", "session"),
	}, nil
}

// OpenLedger opens the ledger store for backend without loading it.
func OpenLedger(path, backend string, logger *slog.Logger) (storage.Ledger, error) {
	switch backend {
	case "", LedgerJSON:
		return jsonfile.New(path, jsonfile.WithLogger(logger)), nil
	case LedgerBadger:
		return badger.OpenLedger(path, logger)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}

func (s *Session) Close() error {
	if err := s.ledger.Close(); err != nil {
		s.logger.Error("error closing ledger", "err", err)
		return err
	}
	return nil
}

func (s *Session) Ledger() storage.Ledger {
	return s.ledger
}

// LoadedEntries returns the number of ledger entries found when the session opened.
func (s *Session) LoadedEntries() int {
	return s.ledgerLoaded
}

// ResolveCollection returns the collection to ingest into. A non-empty id is
// validated against the service; otherwise a collection named name is created.
func (s *Session) ResolveCollection(ctx context.Context, id, name, description string) (string, error) {
	if id != "" {
		ok, err := s.client.ValidateCollection(ctx, id)
		if err != nil {
			return "", fmt.Errorf("validate collection %s: %w", id, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
		}
		return id, nil
	}

	if name == "" {
		return "", ErrCollectionRequired
	}
	created, err := s.client.CreateCollection(ctx, name, description)
	if err != nil {
		return "", fmt.Errorf("create collection %q: %w", name, err)
	}
	s.logger.Info("created collection", "collection_id", created, "name", name)
	return created, nil
}

func (s *Session) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.ledger, s.client, s.hasher, opts...)
}
