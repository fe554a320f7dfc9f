package vantage

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/internal/restapi"
	"github.com/vantage-bi/vantage-go/internal/validation"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

const (
	// DefaultAPIVersion is the REST API version used when none is configured.
	DefaultAPIVersion = "3.6"

	// DefaultChunkSize is the chunk size for chunked uploads (5MB).
	DefaultChunkSize = 5 * 1024 * 1024

	// FilesizeLimit is the size at or above which a publish switches from a
	// single request to a chunked upload session (64MB).
	FilesizeLimit = 64 * 1024 * 1024

	// DefaultConcurrency is the concurrency limit for batch operations.
	DefaultConcurrency = 5

	// DefaultTimeout is the timeout applied to the default HTTP client.
	DefaultTimeout = 5 * time.Minute

	defaultUserAgent = "vantage-go"
)

// Client is the entry point for talking to a Vantage Server. It holds the
// server address, API version, and the session established by SignIn, and
// hands out endpoint services scoped to the signed-in site.
//
// A Client is safe for concurrent use once signed in.
type Client struct {
	api         restapi.API
	serverURL   string
	apiVersion  string
	fs          fs.Filesystem
	logger      *slog.Logger
	chunkSize   int64
	concurrency int

	// mu protects the session fields below
	mu     sync.RWMutex
	token  string
	siteID string
}

// New creates a Client for the server at serverURL.
// The URL must be absolute http or https; a trailing slash is ignored.
//
// Example:
//
//	client, err := vantage.New("https://vantage.example.com",
//	    vantage.WithAPIVersion("3.6"),
//	    vantage.WithTimeout(2*time.Minute),
//	)
func New(serverURL string, opts ...vantagetypes.Option) (*Client, error) {
	if err := validation.ValidateServerURL(serverURL); err != nil {
		return nil, err
	}

	cfg := vantagetypes.ClientConfig{
		APIVersion:  DefaultAPIVersion,
		UserAgent:   defaultUserAgent,
		Timeout:     DefaultTimeout,
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidateChunkSize(cfg.ChunkSize); err != nil {
		return nil, err
	}
	if cfg.Concurrency < 1 {
		return nil, errors.NewError("new", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("concurrency must be at least 1, got %d", cfg.Concurrency))
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		api:         restapi.NewHTTP(httpClient, cfg.UserAgent),
		serverURL:   strings.TrimRight(serverURL, "/"),
		apiVersion:  cfg.APIVersion,
		fs:          filesystem,
		logger:      logger,
		chunkSize:   cfg.ChunkSize,
		concurrency: cfg.Concurrency,
	}, nil
}

// NewWithAPI creates a Client over a custom transport implementation.
// This is primarily useful for testing with mocks.
func NewWithAPI(api restapi.API, opts ...vantagetypes.Option) *Client {
	cfg := vantagetypes.ClientConfig{
		APIVersion:  DefaultAPIVersion,
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		api:         api,
		serverURL:   "http://localhost",
		apiVersion:  cfg.APIVersion,
		fs:          filesystem,
		logger:      logger,
		chunkSize:   cfg.ChunkSize,
		concurrency: cfg.Concurrency,
	}
}

// Datasources returns the service for datasource operations.
func (c *Client) Datasources() *DatasourcesService {
	return &DatasourcesService{client: c}
}

// FileUploads returns the service for chunked file upload sessions.
func (c *Client) FileUploads() *FileUploadsService {
	return &FileUploadsService{client: c}
}

// UseSession resumes an existing session without signing in again.
// The token and site ID must come from a previous sign-in.
func (c *Client) UseSession(token, siteID string) {
	c.mu.Lock()
	c.token = token
	c.siteID = siteID
	c.mu.Unlock()
	c.api.SetAuthToken(token)
}

// SignedIn reports whether the client holds a session token.
func (c *Client) SignedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// SiteID returns the identifier of the signed-in site, or the empty string
// if no session is established.
func (c *Client) SiteID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.siteID
}

// AuthToken returns the current session token, or the empty string if no
// session is established. The token can resume the session later through
// UseSession.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiURL builds a server-scoped API URL (not bound to a site).
func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.serverURL, c.apiVersion, path)
}

// siteURL builds a site-scoped API URL for the signed-in site.
func (c *Client) siteURL(path string) (string, error) {
	c.mu.RLock()
	siteID := c.siteID
	token := c.token
	c.mu.RUnlock()

	if token == "" {
		return "", errors.ErrNotSignedIn
	}
	return fmt.Sprintf("%s/api/%s/sites/%s/%s", c.serverURL, c.apiVersion, siteID, path), nil
}
