// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agiloft

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client executes authenticated requests against the Agiloft REST API.
// It consults the Session for credentials on every call and retries exactly
// once on an authorization failure; all other failures surface to the
// caller without retry.
type Client struct {
	baseURL  string
	session  *Session
	http     *http.Client
	language string
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (and with it the per-call
// timeout).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithLanguage sets the lang query parameter sent with every request.
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		c.language = lang
	}
}

// NewClient creates a transport client for the given base URL and session.
func NewClient(baseURL string, session *Session, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		session:  session,
		http:     &http.Client{Timeout: 30 * time.Second},
		language: "en",
		logger:   slog.Default().With("component", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the decoded backend payload of a transport-successful call.
// An embedded failure flag has already been normalized into an error by the
// time a Response reaches the caller.
type Response struct {
	StatusCode int
	Body       map[string]any
}

// Result returns the result payload, which may be a record, a list, or a
// scalar depending on the operation.
func (r *Response) Result() any {
	return r.Body["result"]
}

// ResultList returns the result payload as a record list.
func (r *Response) ResultList() []Record {
	items, ok := r.Body["result"].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// ResultRecord extracts a single record, tolerating the response shapes the
// backend is known to produce: a result wrapper, the record directly, or a
// one-element list.
func (r *Response) ResultRecord() (Record, error) {
	if result, ok := r.Body["result"]; ok {
		switch v := result.(type) {
		case map[string]any:
			return Record(v), nil
		case []any:
			if len(v) > 0 {
				if m, ok := v[0].(map[string]any); ok {
					return Record(m), nil
				}
			}
		}
	}
	if _, ok := r.Body["id"]; ok {
		return Record(r.Body), nil
	}
	return nil, fmt.Errorf("no record in response")
}

// Execute runs a built request, handling credentials and the single
// authorization-failure retry.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.attempt(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return c.finish(req, resp)
	}
	drain(resp)

	// Reactive path: the credential was believed valid but the backend
	// rejected it (clock skew or server-side revocation). Re-authenticate
	// once and retry once; a second rejection is fatal.
	c.logger.Warn("Authorization failure, re-authenticating", "method", req.Method, "path", req.Path)
	token, err = c.session.ForceRefresh(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err = c.attempt(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		body := readBodyForError(resp)
		return nil, &AuthenticationError{
			Message:    fmt.Sprintf("request rejected after re-authentication: %s", body),
			StatusCode: resp.StatusCode,
		}
	}
	return c.finish(req, resp)
}

// attempt issues the request once. The body is rebuilt per attempt so the
// retry path never reuses a consumed reader.
func (c *Client) attempt(ctx context.Context, req *Request, token string) (*http.Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, vs := range req.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	if query.Get("lang") == "" {
		query.Set("lang", c.language)
	}
	httpReq.URL.RawQuery = query.Encode()

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("Request", "method", req.Method, "url", httpReq.URL.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &TransportTimeoutError{Method: req.Method, URL: fullURL, Err: err}
		}
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: err}
	}
	return resp, nil
}

// finish reads and normalizes a non-401 response.
func (c *Client) finish(req *Request, resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: c.baseURL + req.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        c.baseURL + req.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	decoded := decodePayload(resp.Header.Get("Content-Type"), raw)

	// A 2xx response can still carry an embedded failure flag. Normalize it
	// into the shared taxonomy so callers branch on one error model.
	if success, present := decoded["success"]; present {
		if ok, isBool := success.(bool); isBool && !ok {
			return nil, &BackendError{
				Entity:    req.Entity,
				Operation: req.Operation,
				RecordID:  req.RecordID,
				Message:   stringField(decoded, "message"),
				Details:   issueMessages(decoded),
			}
		}
	}

	return &Response{StatusCode: resp.StatusCode, Body: decoded}, nil
}

// decodePayload parses a JSON body; non-JSON payloads (attachment content)
// are wrapped as base64.
func decodePayload(contentType string, raw []byte) map[string]any {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		return decoded
	}
	_ = contentType
	return map[string]any{
		"file_content_base64": base64.StdEncoding.EncodeToString(raw),
	}
}

func encodeBody(req *Request) (io.Reader, string, error) {
	if req.File != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", req.File.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(req.File.Content); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(encoded), "application/json", nil
	}
	return nil, "", nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// issueMessages collects backend validation messages from the errors list.
func issueMessages(m map[string]any) []string {
	items, ok := m["errors"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			if msg := stringField(v, "message"); msg != "" {
				out = append(out, msg)
			}
		case string:
			out = append(out, v)
		}
	}
	return out
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func readBodyForError(resp *http.Response) string {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return strings.TrimSpace(string(raw))
}
