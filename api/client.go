package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/electr1fy0/bluenote/notes"
)

const defaultTimeout = 10 * time.Second

// Client talks to the notes REST API. Every call is a single round trip;
// there is no retry and no cache.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ notes.Repository = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient is used by tests to point at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) BaseURL() string { return c.baseURL }

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (c *Client) List(ctx context.Context) ([]notes.Note, error) {
	var out []notes.Note
	if err := c.doJSON(ctx, "list", http.MethodGet, "/note", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []notes.Note{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, title, content string) (notes.Note, error) {
	var n notes.Note
	err := c.doJSON(ctx, "create", http.MethodPost, "/note", noteRequest{Title: title, Content: content}, &n)
	return n, err
}

func (c *Client) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	if strings.TrimSpace(id) == "" {
		return notes.Note{}, &notes.ValidationError{Field: "id", Message: "note id is required"}
	}
	var n notes.Note
	err := c.doJSON(ctx, "update", http.MethodPut, notePath(id), noteRequest{Title: title, Content: content}, &n)
	return n, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &notes.ValidationError{Field: "id", Message: "note id is required"}
	}
	return c.doJSON(ctx, "delete", http.MethodDelete, notePath(id), nil, nil)
}

func notePath(id string) string {
	return "/note/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: notes.ErrNetwork, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: notes.ErrNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: notes.ErrServer, StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

func decodeError(op string, resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = resp.Status
	}
	return &Error{Op: op, Kind: kindOf(resp.StatusCode), StatusCode: resp.StatusCode, Message: msg}
}

func kindOf(status int) error {
	switch status {
	case http.StatusNotFound:
		return notes.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return notes.ErrValidation
	}
	return notes.ErrServer
}

// Error is a failed call. Kind is one of the notes error sentinels and is
// what errors.Is matches against.
type Error struct {
	Op         string
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s note: %s (%d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s note: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// AsError returns the *Error in err's chain, or nil.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
