package mock

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/poiesic/kbsync/remote"
)

// Client is a test double for remote.KnowledgeClient.
// It allows custom behavior injection via function fields.
type Client struct {
	ValidateCollectionFunc func(ctx context.Context, id string) (bool, error)
	CreateCollectionFunc   func(ctx context.Context, name, description string) (string, error)
	UploadFileFunc         func(ctx context.Context, path string) (string, error)
	AssociateFileFunc      func(ctx context.Context, collectionID, fileID string) error

	mu             sync.Mutex
	validateCalls  int
	createCalls    int
	uploadCalls    int
	associateCalls int
	uploadedPaths  []string
	associations   []Association
	seq            int
}

// Association records a successful AssociateFile call.
type Association struct {
	CollectionID string
	FileID       string
}

var _ remote.KnowledgeClient = (*Client)(nil)

// NewClient creates a mock client with default accepting behavior.
// Note: Returns concrete type to allow test assertions.
func NewClient() *Client {
	return &Client{}
}

func (m *Client) ValidateCollection(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	m.validateCalls++
	fn := m.ValidateCollectionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return id != "", nil
}

func (m *Client) CreateCollection(ctx context.Context, name, description string) (string, error) {
	m.mu.Lock()
	m.createCalls++
	fn := m.CreateCollectionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, name, description)
	}
	return m.nextID("collection"), nil
}

func (m *Client) UploadFile(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.uploadCalls++
	fn := m.UploadFileFunc
	m.mu.Unlock()

	var (
		id  string
		err error
	)
	if fn != nil {
		id, err = fn(ctx, path)
	} else {
		id = m.nextID("file")
	}
	if err == nil {
		m.mu.Lock()
		m.uploadedPaths = append(m.uploadedPaths, filepath.Base(path))
		m.mu.Unlock()
	}
	return id, err
}

func (m *Client) AssociateFile(ctx context.Context, collectionID, fileID string) error {
	m.mu.Lock()
	m.associateCalls++
	fn := m.AssociateFileFunc
	m.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, collectionID, fileID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.associations = append(m.associations, Association{CollectionID: collectionID, FileID: fileID})
	m.mu.Unlock()
	return nil
}

func (m *Client) nextID(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("%s-%d", kind, m.seq)
}

// ValidateCalls returns the number of ValidateCollection calls.
func (m *Client) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// CreateCalls returns the number of CreateCollection calls.
func (m *Client) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// UploadCalls returns the number of UploadFile calls, including failed ones.
func (m *Client) UploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCalls
}

// AssociateCalls returns the number of AssociateFile calls, including failed ones.
func (m *Client) AssociateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.associateCalls
}

// UploadedNames returns base names of successfully uploaded files in call order.
func (m *Client) UploadedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploadedPaths...)
}

// Associations returns successful associations in call order.
func (m *Client) Associations() []Association {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Association(nil), m.associations...)
}

// Reset clears counters, recorded calls and hooks.
func (m *Client) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCollectionFunc = nil
	m.CreateCollectionFunc = nil
	m.UploadFileFunc = nil
	m.AssociateFileFunc = nil
	m.validateCalls = 0
	m.createCalls = 0
	m.uploadCalls = 0
	m.associateCalls = 0
	m.uploadedPaths = nil
	m.associations = nil
	m.seq = 0
}
