// Package vantagetypes provides shared type definitions for the Vantage client module.
package vantagetypes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// PublishMode controls how the server treats a publish when an item with the
// same name already exists.
type PublishMode string

// Publish modes accepted by the server.
const (
	// PublishModeCreateNew fails the publish if the datasource already exists
	PublishModeCreateNew PublishMode = "CreateNew"

	// PublishModeOverwrite replaces an existing datasource
	PublishModeOverwrite PublishMode = "Overwrite"

	// PublishModeAppend appends the published data to an existing extract
	PublishModeAppend PublishMode = "Append"
)

// Datasource represents a published datasource on the server.
type Datasource struct {
	// ID is the server-assigned identifier
	ID string

	// Name is the display name
	Name string

	// ContentURL is the URL-safe name used in server links
	ContentURL string

	// Type is the datasource type reported by the server (e.g., "postgres")
	Type string

	// Description is the free-form description
	Description string

	// CreatedAt is when the datasource was first published
	CreatedAt time.Time

	// UpdatedAt is when the datasource was last modified
	UpdatedAt time.Time

	// ProjectID is the identifier of the containing project
	ProjectID string

	// ProjectName is the display name of the containing project
	ProjectName string

	// OwnerID is the identifier of the owning user
	OwnerID string

	// Tags are the labels attached to the datasource
	Tags []string

	// Certified reports whether the datasource is marked as certified
	Certified bool

	// CertificationNote explains the certification status
	CertificationNote string
}

// Connection represents a connection embedded in a datasource.
type Connection struct {
	// ID is the server-assigned identifier
	ID string

	// Type is the connection type (e.g., "postgres", "sqlserver")
	Type string

	// ServerAddress is the host the connection points at
	ServerAddress string

	// ServerPort is the port the connection points at
	ServerPort string

	// UserName is the database user name
	UserName string

	// EmbedPassword reports whether credentials are embedded
	EmbedPassword bool
}

// Pagination describes the page window of a list response.
type Pagination struct {
	// PageNumber is the 1-based page index
	PageNumber int

	// PageSize is the number of items per page
	PageSize int

	// TotalAvailable is the total number of matching items on the server
	TotalAvailable int
}

// UploadSession identifies an in-progress chunked file upload on the server.
type UploadSession struct {
	// ID is the upload session identifier to reference in subsequent calls
	ID string

	// FileSize is the number of bytes the server has received so far
	FileSize int64
}

// Filter restricts a list operation to items matching a field predicate.
// It is rendered as "field:operator:value" in the request query.
type Filter struct {
	Field    string
	Operator string
	Value    string
}

// Sort orders a list operation by a field.
type Sort struct {
	Field      string
	Descending bool
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads and downloads.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// DownloadResult contains the result of a download operation.
type DownloadResult struct {
	// ID is the datasource identifier that was downloaded
	ID string

	// Filename is the file name reported by the server
	Filename string

	// Size is the number of bytes written
	Size int64

	// Duration is how long the download took
	Duration time.Duration
}

// DeleteResult contains the result of a batch delete operation.
type DeleteResult struct {
	// Deleted contains the identifiers that were successfully deleted
	Deleted []string

	// Errors contains per-item failures
	Errors []DeleteError

	// Duration is how long the operation took
	Duration time.Duration
}

// DeleteError represents a single failed deletion within a batch.
type DeleteError struct {
	// ID is the datasource identifier that failed to delete
	ID string

	// Message is the failure description
	Message string
}

// Configuration types for functional options

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	APIVersion  string
	UserAgent   string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Filesystem  fs.Filesystem // Filesystem abstraction for file operations
	ChunkSize   int64
	Concurrency int
	Logger      *slog.Logger
}

// ListOptionConfig holds configuration for list operations via functional options.
type ListOptionConfig struct {
	PageSize   int
	PageNumber int
	Filters    []Filter
	Sorts      []Sort
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	ProgressTracker ProgressTracker
}

// PublishOptionConfig holds configuration for publish operations via functional options.
type PublishOptionConfig struct {
	ProgressTracker ProgressTracker
	ChunkSize       int64
}

// UploadConfig holds configuration for chunked upload sessions.
type UploadConfig struct {
	ChunkSize       int64
	ProgressTracker ProgressTracker
}

// Option is a functional option for configuring the client.
type (
	Option func(*ClientConfig)
	// ListOption is a functional option for configuring list operations.
	ListOption func(*ListOptionConfig)
	// DownloadOption is a functional option for configuring download operations.
	DownloadOption func(*DownloadOptionConfig)
	// PublishOption is a functional option for configuring publish operations.
	PublishOption func(*PublishOptionConfig)
)
