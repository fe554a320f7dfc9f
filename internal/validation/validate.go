// Package validation provides centralized input validation logic.
// All user inputs are checked client-side before any HTTP call is made, so
// obviously bad requests never reach the server.
package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

// AllowedFileExtensions are the datasource file formats accepted for publish.
var AllowedFileExtensions = []string{"vds", "vdsx", "vde"}

// MinChunkSize is the smallest chunk the upload endpoint accepts.
const MinChunkSize = 64 * 1024

// MaxChunkSize is the largest chunk the upload endpoint accepts.
const MaxChunkSize = 64 * 1024 * 1024

// ValidateServerURL validates that a server URL is absolute http(s) with a host.
func ValidateServerURL(raw string) error {
	if raw == "" {
		return errors.NewError("validateServerURL", errors.ErrInvalidInput).
			WithMessage("server URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.NewError("validateServerURL", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("server URL is not parseable: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewError("validateServerURL", errors.ErrInvalidInput).
			WithMessage("server URL must use http or https")
	}
	if u.Host == "" {
		return errors.NewError("validateServerURL", errors.ErrInvalidInput).
			WithMessage("server URL is missing a host")
	}
	return nil
}

// ValidateID validates a server item identifier.
// Identifiers are opaque but never empty and never contain whitespace,
// control characters, or path separators.
func ValidateID(id string) error {
	if id == "" {
		return errors.NewError("validateID", errors.ErrInvalidInput).
			WithMessage("datasource ID is empty")
	}

	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' || r == '\\' {
			return errors.NewError("validateID", errors.ErrInvalidInput).
				WithID(id).
				WithMessage("datasource ID contains invalid characters")
		}
	}
	return nil
}

// ValidatePublishMode validates that a publish mode is one the server accepts.
func ValidatePublishMode(mode vantagetypes.PublishMode) error {
	switch mode {
	case vantagetypes.PublishModeCreateNew,
		vantagetypes.PublishModeOverwrite,
		vantagetypes.PublishModeAppend:
		return nil
	}
	return errors.NewError("validatePublishMode", errors.ErrInvalidPublishMode).
		WithMessage(fmt.Sprintf("unknown mode %q", mode))
}

// ValidateFileExtension validates a publish filename against the accepted
// datasource formats and returns the extension without its leading dot.
func ValidateFileExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range AllowedFileExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", errors.NewError("validateFileExtension", errors.ErrInvalidFileType).
		WithMessage(fmt.Sprintf(
			"only %s files can be published as datasources",
			strings.Join(AllowedFileExtensions, ", "),
		))
}

// ValidateChunkSize validates a chunked-upload chunk size against server bounds.
func ValidateChunkSize(size int64) error {
	if size < MinChunkSize || size > MaxChunkSize {
		return errors.NewError("validateChunkSize", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("chunk size must be between %d and %d bytes", MinChunkSize, MaxChunkSize))
	}
	return nil
}
