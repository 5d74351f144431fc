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

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is returned when a successful response carries no id.
	ErrMissingID = errors.New("response missing id")

	// ErrMissingBaseURL is returned by Config.Validate when no base URL is set.
	ErrMissingBaseURL = errors.New("remote config: BaseURL is required")

	// ErrMissingToken is returned by Config.Validate when no token is set.
	ErrMissingToken = errors.New("remote config: Token is required")
)

// maxErrorBody caps how much of a response body is kept on a StatusError.
const maxErrorBody = 512

// StatusError reports a non-2xx response from the knowledge service.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

// NewStatusError builds a StatusError, truncating long bodies.
func NewStatusError(op string, statusCode int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Op: op, StatusCode: statusCode, Body: string(body)}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a StatusError with status 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}
