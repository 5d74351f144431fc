package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Defaults(t *testing.T) {
	ctx := context.Background()
	m := NewClient()

	ok, err := m.ValidateCollection(ctx, "kb")
	require.NoError(t, err)
	assert.True(t, ok)

	collID, err := m.CreateCollection(ctx, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "collection-1", collID)

	fileID, err := m.UploadFile(ctx, "/tmp/dir/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "file-2", fileID)

	require.NoError(t, m.AssociateFile(ctx, collID, fileID))

	assert.Equal(t, 1, m.ValidateCalls())
	assert.Equal(t, 1, m.CreateCalls())
	assert.Equal(t, 1, m.UploadCalls())
	assert.Equal(t, 1, m.AssociateCalls())
	assert.Equal(t, []string{"a.pdf"}, m.UploadedNames())
	assert.Equal(t, []Association{{CollectionID: collID, FileID: fileID}}, m.Associations())
}

func TestClient_Hooks(t *testing.T) {
	ctx := context.Background()
	m := NewClient()
	boom := errors.New("boom")
	m.UploadFileFunc = func(ctx context.Context, path string) (string, error) {
		return "", boom
	}
	m.AssociateFileFunc = func(ctx context.Context, collectionID, fileID string) error {
		return boom
	}

	_, err := m.UploadFile(ctx, "a.pdf")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.AssociateFile(ctx, "kb", "f"), boom)

	assert.Equal(t, 1, m.UploadCalls())
	assert.Empty(t, m.UploadedNames())
	assert.Empty(t, m.Associations())

	m.Reset()
	assert.Zero(t, m.UploadCalls())
	_, err = m.UploadFile(ctx, "a.pdf")
	assert.NoError(t, err)
}
