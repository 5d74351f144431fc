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

package openwebui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/kbsync/remote"
)

const (
	opValidate  = "validate collection"
	opCreate    = "create collection"
	opUpload    = "upload file"
	opAssociate = "associate file"
)

// Client implements remote.KnowledgeClient for Open WebUI.
type Client struct {
	cfg    *remote.Config
	hc     *http.Client
	do     func(*http.Request) (*http.Response, error)
	logger *slog.Logger
}

var _ remote.KnowledgeClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
		c.do = hc.Do
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "openwebui")
	}
}

// newClient is an internal constructor that returns the concrete type.
func newClient(cfg *remote.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("openwebui: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	c := &Client{
		cfg:    cfg,
		hc:     hc,
		do:     hc.Do,
		logger: slog.Default().With("component", "openwebui"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient creates a client for the service described by cfg.
// The config is validated and normalized before use.
//
// Returns remote.KnowledgeClient interface to enforce abstraction.
func NewClient(cfg *remote.Config, opts ...Option) (remote.KnowledgeClient, error) {
	return newClient(cfg, opts...)
}

type createCollectionRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Data          map[string]any `json:"data"`
	AccessControl map[string]any `json:"access_control"`
}

type associateRequest struct {
	FileID string `json:"file_id"`
}

type idResponse struct {
	ID string `json:"id"`
}

// ValidateCollection reports whether the collection exists.
// 404 is a definite "no"; any other non-2xx status is returned as an error.
func (c *Client) ValidateCollection(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/knowledge/"+url.PathEscape(id), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", opValidate, err)
	}
	defer drain(resp.Body)

	if isSuccess(resp.StatusCode) {
		return true, nil
	}
	statusErr := c.statusError(opValidate, resp)
	if statusErr.StatusCode == http.StatusNotFound {
		c.logger.Debug("collection not found", "collection_id", id)
		return false, nil
	}
	return false, statusErr
}

// CreateCollection creates a collection with empty data and access control.
func (c *Client) CreateCollection(ctx context.Context, name, description string) (string, error) {
	payload, err := json.Marshal(createCollectionRequest{
		Name:          name,
		Description:   description,
		Data:          map[string]any{},
		AccessControl: map[string]any{},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", opCreate, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/knowledge/create", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	id, err := c.doForID(req, opCreate)
	if err != nil {
		return "", err
	}
	c.logger.Info("collection created", "collection_id", id, "name", name)
	return id, nil
}

// UploadFile streams the file as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opUpload, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, filepath.Base(path), mimeType(path), f))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/files/", pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	id, err := c.doForID(req, opUpload)
	// Unblocks the writer goroutine if the request ended before reading the body.
	pr.Close()
	if err != nil {
		return "", err
	}
	c.logger.Debug("file uploaded", "file", filepath.Base(path), "file_id", id)
	return id, nil
}

// AssociateFile adds a file to a collection.
func (c *Client) AssociateFile(ctx context.Context, collectionID, fileID string) error {
	payload, err := json.Marshal(associateRequest{FileID: fileID})
	if err != nil {
		return fmt.Errorf("%s: %w", opAssociate, err)
	}

	path := "/api/v1/knowledge/" + url.PathEscape(collectionID) + "/file/add"
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", opAssociate, err)
	}
	defer drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return c.statusError(opAssociate, resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return req, nil
}

// doForID sends req and decodes {"id": ...} from a 2xx response.
func (c *Client) doForID(req *http.Request, op string) (string, error) {
	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return "", c.statusError(op, resp)
	}

	var out idResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", fmt.Errorf("%s: %w", op, remote.ErrMissingID)
	}
	return out.ID, nil
}

func (c *Client) statusError(op string, resp *http.Response) *remote.StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := remote.NewStatusError(op, resp.StatusCode, bytes.TrimSpace(body))
	c.logger.Debug("request failed", "op", op, "status", resp.StatusCode, "body", err.Body)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, name, contentType string, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// mimeType returns text/plain for .txt files and application/octet-stream otherwise.
func mimeType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return "text/plain"
	}
	return "application/octet-stream"
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	body.Close()
}
