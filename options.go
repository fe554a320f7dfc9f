package vantage

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/vantage-bi/vantage-go/vantagetypes"
)

// Client options

// WithAPIVersion sets the REST API version used in request URLs.
func WithAPIVersion(version string) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.APIVersion = version
	}
}

// WithTimeout sets the timeout for the default HTTP client.
// It has no effect when WithHTTPClient is also given.
func WithTimeout(timeout time.Duration) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client for all requests.
func WithHTTPClient(client *http.Client) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header sent on all requests.
func WithUserAgent(userAgent string) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithFilesystem sets a custom filesystem for file operations.
// This enables in-memory filesystems for testing or custom storage backends.
//
// Example:
//
//	client, err := vantage.New(serverURL, vantage.WithFilesystem(billy.NewInMemoryFS()))
func WithFilesystem(filesystem fs.Filesystem) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithChunkSize sets the default chunk size for chunked uploads.
func WithChunkSize(size int64) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.ChunkSize = size
	}
}

// WithConcurrency sets the concurrency limit for batch operations.
func WithConcurrency(n int) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.Concurrency = n
	}
}

// WithLogger sets a structured logger for operation logging.
// Without one the client is silent.
func WithLogger(logger *slog.Logger) vantagetypes.Option {
	return func(c *vantagetypes.ClientConfig) {
		c.Logger = logger
	}
}

// List options

// WithPageSize sets the number of items per page for list operations.
func WithPageSize(size int) vantagetypes.ListOption {
	return func(c *vantagetypes.ListOptionConfig) {
		c.PageSize = size
	}
}

// WithPageNumber sets the 1-based page to fetch for list operations.
func WithPageNumber(number int) vantagetypes.ListOption {
	return func(c *vantagetypes.ListOptionConfig) {
		c.PageNumber = number
	}
}

// WithFilter restricts a list operation to items matching a field predicate.
// Multiple filters combine with AND.
//
// Example:
//
//	items, _, err := client.Datasources().List(ctx,
//	    vantage.WithFilter("type", "eq", "postgres"),
//	)
func WithFilter(field, operator, value string) vantagetypes.ListOption {
	return func(c *vantagetypes.ListOptionConfig) {
		c.Filters = append(c.Filters, vantagetypes.Filter{
			Field:    field,
			Operator: operator,
			Value:    value,
		})
	}
}

// WithSort orders a list operation by a field.
func WithSort(field string, descending bool) vantagetypes.ListOption {
	return func(c *vantagetypes.ListOptionConfig) {
		c.Sorts = append(c.Sorts, vantagetypes.Sort{
			Field:      field,
			Descending: descending,
		})
	}
}

// Download options

// WithDownloadProgress sets a progress tracker for a download.
func WithDownloadProgress(tracker vantagetypes.ProgressTracker) vantagetypes.DownloadOption {
	return func(c *vantagetypes.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// Publish options

// WithPublishProgress sets a progress tracker for a publish.
func WithPublishProgress(tracker vantagetypes.ProgressTracker) vantagetypes.PublishOption {
	return func(c *vantagetypes.PublishOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithPublishChunkSize overrides the client chunk size for one publish.
func WithPublishChunkSize(size int64) vantagetypes.PublishOption {
	return func(c *vantagetypes.PublishOptionConfig) {
		c.ChunkSize = size
	}
}
