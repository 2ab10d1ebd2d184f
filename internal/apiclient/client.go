// Package apiclient is the HTTP client for the NutriScan API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrTransport           = errors.New("request failed")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrUnexpectedContent   = errors.New("unexpected response content type")
)

// TokenHeader is the response header carrying the session token.
const TokenHeader = "X-Auth-Token"

// Error is a non-2xx API response.
type Error struct {
	Message string
	Status  int
	// Data is the decoded JSON error body, or nil when the body was not JSON.
	Data any
}

func (e *Error) Error() string {
	return e.Message
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to one API base URL. It performs no retries and sets no
// timeout of its own; the caller's context bounds each call.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one API call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	accept      string
}

func jsonRequest(method, path string, v any) (request, error) {
	req := request{method: method, path: path, accept: "application/json"}
	if v == nil {
		return req, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return req, fmt.Errorf("encode request: %w", err)
	}
	req.body = bytes.NewReader(b)
	req.contentType = "application/json"
	return req, nil
}

// do sends req and decodes a 2xx body into out. out may be nil to discard
// the body, or a *string to receive it as text whatever its content type.
func (c *Client) do(ctx context.Context, req request, out any) (http.Header, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, req.method, req.path, err)
	}

	c.logger.Debug("api request", "method", req.method, "path", req.path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, newError(resp.StatusCode, body)
	}

	if err := decodeBody(resp.Header.Get("Content-Type"), body, out); err != nil {
		return resp.Header, err
	}
	return resp.Header, nil
}

// newError builds an Error. The message is the JSON "message" field, else
// the "error" field, else the raw body, else a generic status line.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: fmt.Sprintf("HTTP Error: %d", status)}

	text := string(body)
	if text == "" {
		return e
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		e.Message = text
		return e
	}
	e.Data = data

	e.Message = text
	if obj, ok := data.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			e.Message = msg
		} else if msg, ok := obj["error"].(string); ok && msg != "" {
			e.Message = msg
		}
	}
	return e
}

func decodeBody(contentType string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(body)
		return nil
	}
	if !isJSON(contentType) {
		if len(body) == 0 {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnexpectedContent, contentType)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Message returns the user-facing text for err: the API message for an
// *Error, otherwise err's own text.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
