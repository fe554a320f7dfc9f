package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://vantage.example.com"},
		{name: "valid http URL", url: "http://localhost:8080"},
		{name: "valid URL with path", url: "https://vantage.example.com/prefix"},
		{name: "empty URL", url: "", wantErr: true},
		{name: "missing scheme", url: "vantage.example.com", wantErr: true},
		{name: "wrong scheme", url: "ftp://vantage.example.com", wantErr: true},
		{name: "missing host", url: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid UUID", id: "9f9e9d9c-8b8a-7978-6f6e-5d5c5b5a4948"},
		{name: "valid opaque ID", id: "ds-123"},
		{name: "empty ID", id: "", wantErr: true},
		{name: "ID with space", id: "ds 123", wantErr: true},
		{name: "ID with newline", id: "ds\n123", wantErr: true},
		{name: "ID with slash", id: "ds/123", wantErr: true},
		{name: "ID with backslash", id: `ds\123`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePublishMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    vantagetypes.PublishMode
		wantErr bool
	}{
		{name: "create new", mode: vantagetypes.PublishModeCreateNew},
		{name: "overwrite", mode: vantagetypes.PublishModeOverwrite},
		{name: "append", mode: vantagetypes.PublishModeAppend},
		{name: "empty mode", mode: "", wantErr: true},
		{name: "unknown mode", mode: "Replace", wantErr: true},
		{name: "wrong case", mode: "overwrite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePublishMode(tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidPublishMode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantExt  string
		wantErr  bool
	}{
		{name: "vds file", filename: "sales.vds", wantExt: "vds"},
		{name: "vdsx file", filename: "sales.vdsx", wantExt: "vdsx"},
		{name: "vde file", filename: "sales.vde", wantExt: "vde"},
		{name: "uppercase extension", filename: "SALES.VDSX", wantExt: "vdsx"},
		{name: "nested path", filename: "/data/exports/sales.vds", wantExt: "vds"},
		{name: "no extension", filename: "sales", wantErr: true},
		{name: "wrong extension", filename: "sales.csv", wantErr: true},
		{name: "extension only partially matches", filename: "sales.vdsx.zip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateFileExtension(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidFileType)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantExt, ext)
			}
		})
	}
}

func TestValidateChunkSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{name: "minimum size", size: MinChunkSize},
		{name: "maximum size", size: MaxChunkSize},
		{name: "typical size", size: 5 * 1024 * 1024},
		{name: "too small", size: MinChunkSize - 1, wantErr: true},
		{name: "too large", size: MaxChunkSize + 1, wantErr: true},
		{name: "zero", size: 0, wantErr: true},
		{name: "negative", size: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkSize(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
