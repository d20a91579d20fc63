// Package api is the storefront's access layer to the remote commerce API.
//
// Every call goes through Client.Request, which joins a logical path to the
// base URL, attaches the bearer token when one is held, serializes the body
// and interprets the reply as JSON or, failing that, as plain text.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

// RequestOptions is the options bag of a single request.
// Body may be nil, a string or []byte (sent as is), or any value (sent as JSON).
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Client issues requests against one commerce API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     storage.Scope

	mu    sync.RWMutex
	token string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request; zero keeps the transport defaults
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient returns a client for baseURL (host:port plus the /api prefix).
// tokens is the scope the bearer token is persisted to.
func NewClient(baseURL string, tokens storage.Scope, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token currently held in memory
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken holds token and persists it to the token scope; an empty token clears both
func (c *Client) SetToken(ctx context.Context, token string) error {
	var err error
	if token != "" {
		err = c.tokens.Set(ctx, storage.KeyAuthToken, token)
	} else {
		err = c.tokens.Delete(ctx, storage.KeyAuthToken)
	}
	if err != nil {
		return fmt.Errorf("failed to persist auth token: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// ClearToken drops the held token and removes it from the token scope
func (c *Client) ClearToken(ctx context.Context) error {
	return c.SetToken(ctx, "")
}

// StoredToken reads the persisted token without holding it
func (c *Client) StoredToken(ctx context.Context) (string, bool, error) {
	return c.tokens.Get(ctx, storage.KeyAuthToken)
}

// URL joins path to the base URL, percent-encoding literal spaces only
func (c *Client) URL(path string) string {
	return c.baseURL + strings.ReplaceAll(path, " ", "%20")
}

// Request performs one HTTP exchange and interprets the reply.
// Only the network call suspends; an issued request always runs to completion.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (Result, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.URL(path)

	res, err := c.do(ctx, method, url, opts)
	if err != nil {
		log.Printf("API request failed: %s %s: %v", method, url, err)
		return Result{}, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, url string, opts RequestOptions) (Result, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return Result{}, &Error{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Result{}, &Error{Message: fmt.Sprintf("invalid request: %v", err), Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, networkError(err)
	}

	return interpret(resp.StatusCode, statusText(resp), raw)
}

// interpret applies the dual-format policy to a complete response
func interpret(status int, text string, raw []byte) (Result, error) {
	body := string(raw)
	ok := isSuccess(status)

	if body == "" {
		if !ok {
			return Result{}, statusError(status, text, "")
		}
		return StructuredResult(json.RawMessage("null")), nil
	}

	if !json.Valid(raw) {
		if !ok {
			return Result{}, statusError(status, text, body)
		}
		return TextResult(body), nil
	}

	if !ok {
		return Result{}, statusError(status, text, messageField(raw))
	}
	return StructuredResult(json.RawMessage(raw)), nil
}

// messageField extracts a non-empty string "message" from a JSON object
func messageField(raw []byte) string {
	var obj struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	switch m := obj.Message.(type) {
	case string:
		return m
	case float64:
		if m == 0 {
			return ""
		}
		return strconv.FormatFloat(m, 'f', -1, 64)
	case bool:
		if m {
			return "true"
		}
	}
	// null, objects and arrays fall back to the status line
	return ""
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// statusText returns the reason phrase the server sent, or the standard one
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != resp.Status && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
