// Package testutil provides test utilities and mocks for client operations.
// This package is internal and should only be used for testing within this module.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/vantage-bi/vantage-go/internal/restapi"
)

// MockAPI is a mock implementation of the restapi.API interface for testing.
// It allows customization of each transport operation through function fields
// and records the session token handed to SetAuthToken.
type MockAPI struct {
	GetFunc       func(ctx context.Context, rawURL string, query url.Values) (*restapi.Response, error)
	GetStreamFunc func(ctx context.Context, rawURL string, query url.Values) (*restapi.Stream, error)
	PostFunc      func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error)
	PutFunc       func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error)
	DeleteFunc    func(ctx context.Context, rawURL string, query url.Values) (*restapi.Response, error)

	// Token is the last value passed to SetAuthToken
	Token string
}

// Verify that the mock implements the transport interface
var _ restapi.API = (*MockAPI)(nil)

// OKResponse builds a buffered 200 response with the given XML body.
func OKResponse(body string) *restapi.Response {
	return &restapi.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(body),
	}
}

// StatusResponse builds a buffered response with the given status and body.
func StatusResponse(statusCode int, body string) *restapi.Response {
	return &restapi.Response{
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       []byte(body),
	}
}

// StreamResponse builds a streaming 200 response with the given body and
// Content-Disposition filename.
func StreamResponse(body []byte, filename string) *restapi.Stream {
	header := http.Header{}
	if filename != "" {
		header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	return &restapi.Stream{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

// Get mocks the transport GET operation.
func (m *MockAPI) Get(ctx context.Context, rawURL string, query url.Values) (*restapi.Response, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, rawURL, query)
	}
	return OKResponse(EmptyResponse()), nil
}

// GetStream mocks the transport streaming GET operation.
func (m *MockAPI) GetStream(ctx context.Context, rawURL string, query url.Values) (*restapi.Stream, error) {
	if m.GetStreamFunc != nil {
		return m.GetStreamFunc(ctx, rawURL, query)
	}
	return StreamResponse(nil, ""), nil
}

// Post mocks the transport POST operation.
func (m *MockAPI) Post(
	ctx context.Context,
	rawURL string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*restapi.Response, error) {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, rawURL, query, body, contentType)
	}
	return OKResponse(EmptyResponse()), nil
}

// Put mocks the transport PUT operation.
func (m *MockAPI) Put(
	ctx context.Context,
	rawURL string,
	query url.Values,
	body io.Reader,
	contentType string,
) (*restapi.Response, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, rawURL, query, body, contentType)
	}
	return OKResponse(EmptyResponse()), nil
}

// Delete mocks the transport DELETE operation.
func (m *MockAPI) Delete(ctx context.Context, rawURL string, query url.Values) (*restapi.Response, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, rawURL, query)
	}
	return &restapi.Response{StatusCode: http.StatusNoContent, Header: http.Header{}}, nil
}

// SetAuthToken records the session token.
func (m *MockAPI) SetAuthToken(token string) {
	m.Token = token
}
