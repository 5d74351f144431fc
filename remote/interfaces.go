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

package remote

import "context"

// KnowledgeClient talks to a remote knowledge service.
// Implementations must be safe for sequential use from a single goroutine;
// callers never issue concurrent requests.
type KnowledgeClient interface {
	// ValidateCollection reports whether a collection with the given id exists.
	// A definite "not found" is (false, nil); transport failures return an error.
	ValidateCollection(ctx context.Context, id string) (bool, error)

	// CreateCollection creates a collection and returns its id.
	CreateCollection(ctx context.Context, name, description string) (string, error)

	// UploadFile uploads the file at path and returns the remote file id.
	// A single attempt is made; retries are the caller's concern.
	UploadFile(ctx context.Context, path string) (string, error)

	// AssociateFile adds an uploaded file to a collection.
	AssociateFile(ctx context.Context, collectionID, fileID string) error
}
