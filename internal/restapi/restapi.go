// Package restapi defines the HTTP transport interface for server operations
// to enable testing and mocking.
//
// Every endpoint method in the public packages translates to exactly one call
// on the API interface; request bodies and response parsing stay in the
// caller so the transport remains a thin, replaceable layer.
package restapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// AuthHeader is the header carrying the session token on authenticated calls.
const AuthHeader = "X-Vantage-Auth"

// Response is a fully-buffered server response.
type Response struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Header holds the response headers
	Header http.Header

	// Body is the complete response body
	Body []byte
}

// Stream is a server response whose body is consumed incrementally.
// The caller owns Body and must close it.
type Stream struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Header holds the response headers
	Header http.Header

	// Body is the response body stream
	Body io.ReadCloser
}

// API defines the transport operations used by this module.
// This interface allows for mocking in tests and potential future implementations.
type API interface {
	// Get performs a GET request and buffers the response
	Get(ctx context.Context, rawURL string, query url.Values) (*Response, error)

	// GetStream performs a GET request and returns the body as a stream
	GetStream(ctx context.Context, rawURL string, query url.Values) (*Stream, error)

	// Post performs a POST request with the given body and content type
	Post(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*Response, error)

	// Put performs a PUT request with the given body and content type
	Put(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*Response, error)

	// Delete performs a DELETE request
	Delete(ctx context.Context, rawURL string, query url.Values) (*Response, error)

	// SetAuthToken sets the session token sent on subsequent requests.
	// An empty token clears the session.
	SetAuthToken(token string)
}

// HTTPAPI implements API over a standard *http.Client.
type HTTPAPI struct {
	client    *http.Client
	userAgent string

	// mu protects token; sessions may be renewed while calls are in flight
	mu    sync.RWMutex
	token string
}

// Verify that HTTPAPI implements the transport interface
var _ API = (*HTTPAPI)(nil)

// NewHTTP creates a transport over the given HTTP client.
// A nil client falls back to http.DefaultClient.
func NewHTTP(client *http.Client, userAgent string) *HTTPAPI {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAPI{
		client:    client,
		userAgent: userAgent,
	}
}

// SetAuthToken sets the session token sent on subsequent requests.
func (a *HTTPAPI) SetAuthToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

// Get implements API.Get.
func (a *HTTPAPI) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	resp, err := a.do(ctx, http.MethodGet, rawURL, query, nil, "")
	if err != nil {
		return nil, err
	}
	return buffer(resp)
}

// GetStream implements API.GetStream.
func (a *HTTPAPI) GetStream(ctx context.Context, rawURL string, query url.Values) (*Stream, error) {
	resp, err := a.do(ctx, http.MethodGet, rawURL, query, nil, "")
	if err != nil {
		return nil, err
	}
	return &Stream{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// Post implements API.Post.
func (a *HTTPAPI) Post(
	ctx context.Context,
	rawURL string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*Response, error) {
	resp, err := a.do(ctx, http.MethodPost, rawURL, query, body, contentType)
	if err != nil {
		return nil, err
	}
	return buffer(resp)
}

// Put implements API.Put.
func (a *HTTPAPI) Put(
	ctx context.Context,
	rawURL string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*Response, error) {
	resp, err := a.do(ctx, http.MethodPut, rawURL, query, body, contentType)
	if err != nil {
		return nil, err
	}
	return buffer(resp)
}

// Delete implements API.Delete.
func (a *HTTPAPI) Delete(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	resp, err := a.do(ctx, http.MethodDelete, rawURL, query, nil, "")
	if err != nil {
		return nil, err
	}
	return buffer(resp)
}

// do builds and executes a single HTTP request.
func (a *HTTPAPI) do(
	ctx context.Context,
	method, rawURL string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	u := rawURL
	if len(query) > 0 {
		u = rawURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("restapi: build %s %s: %w", method, rawURL, err)
	}

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()

	if token != "" {
		req.Header.Set(AuthHeader, token)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restapi: %s %s: %w", method, rawURL, err)
	}
	return resp, nil
}

// buffer reads the full response body and closes it.
func buffer(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("restapi: read response body: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
