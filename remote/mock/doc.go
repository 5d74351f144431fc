// Package mock provides a test double for remote.KnowledgeClient.
//
// Behavior is injected through function fields; calls are counted per
// operation so tests can assert on retry and association counts:
//
//	client := mock.NewClient()
//	client.UploadFileFunc = func(ctx context.Context, path string) (string, error) {
//	    return "", errors.New("boom")
//	}
//	...
//	assert.Equal(t, 3, client.UploadCalls())
//
// # Default Behavior
//
// Without hooks the client accepts every collection id, returns sequential
// ids for created collections and uploaded files, and associates successfully.
package mock
