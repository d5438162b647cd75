package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v1"

// Session is the injected auth dependency. Token returns the current bearer
// token ("" when logged out); HandleUnauthorized is invoked on every 401 and
// must be idempotent, because several in-flight requests can all come back
// 401 after a logout.
type Session interface {
	Token() string
	HandleUnauthorized()
}

// Client issues authenticated requests against the NexDoc backend. It holds
// no retry policy; every failure is surfaced to the caller as one of the
// typed errors in errors.go.
type Client struct {
	baseURL string
	session Session
	http    *http.Client
}

// NewClient builds a client for the backend at baseURL (without the /api/v1
// prefix). A zero timeout defaults to 30 seconds.
func NewClient(baseURL string, sess Session, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + apiPrefix,
		session: sess,
		http:    &http.Client{Timeout: timeout},
	}
}

// Request performs a single HTTP call and returns the raw response body.
// Status handling:
//   - 2xx: body returned
//   - 401: session.HandleUnauthorized fires, ErrUnauthorized returned
//   - other: *APIError carrying the backend's {detail} message
//
// Transport errors (no response at all) come back as *NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warnf("Unauthorized response from %s %s, clearing session", method, path)
		c.session.HandleUnauthorized()
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	return data, nil
}

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	data, err := c.Request(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return nil
}

// PostJSON sends in as a JSON body and decodes the response into out (out
// may be nil when the response body is irrelevant).
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

// PatchJSON sends in as a JSON body via PATCH.
func (c *Client) PatchJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	data, err := c.Request(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return nil
}

// PostForm sends form-encoded values; the login endpoint is the only caller.
func (c *Client) PostForm(ctx context.Context, path string, values url.Values, out interface{}) error {
	data, err := c.Request(ctx, http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return nil
}

// Delete issues a DELETE and discards any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Request(ctx, http.MethodDelete, path, nil, "")
	return err
}

// Download streams the response body for path into w and returns the number
// of bytes written. Used for contract downloads and PDF exports.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	data, err := c.Request(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("error writing downloaded file: %w", err)
	}
	return int64(n), nil
}

// UploadFile sends r as a multipart file under field name "file" and decodes
// the JSON response into out.
func (c *Client) UploadFile(ctx context.Context, path, filename string, r io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("error preparing upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("error buffering upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("error finalizing upload: %w", err)
	}

	data, err := c.Request(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding upload response: %w", err)
	}
	return nil
}

// errorDetail pulls the {"detail": "..."} message out of an error body.
func errorDetail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(data))
}
