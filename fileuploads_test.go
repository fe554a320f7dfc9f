package vantage

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/internal/restapi"
	"github.com/vantage-bi/vantage-go/internal/testutil"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

func TestFileUploadsService_Initiate(t *testing.T) {
	sessionID := "upload:" + testutil.NewID()

	var gotURL string
	mock := &testutil.MockAPI{
		PostFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
			gotURL = rawURL
			return testutil.OKResponse(testutil.UploadSessionResponse(sessionID, 0)), nil
		},
	}

	client := signedInClient(mock)
	session, err := client.FileUploads().Initiate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotURL, "/sites/site-1/fileUploads")
	assert.Equal(t, sessionID, session.ID)
	assert.Zero(t, session.FileSize)
}

func TestFileUploadsService_Initiate_NotSignedIn(t *testing.T) {
	client := NewWithAPI(&testutil.MockAPI{})

	_, err := client.FileUploads().Initiate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotSignedIn)
}

func TestFileUploadsService_AppendChunk(t *testing.T) {
	sessionID := "upload:" + testutil.NewID()
	chunk := bytes.Repeat([]byte("x"), 1024)

	var gotURL string
	var gotBody []byte
	var gotContentType string
	mock := &testutil.MockAPI{
		PutFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
			gotURL = rawURL
			gotContentType = contentType
			var err error
			gotBody, err = io.ReadAll(body)
			require.NoError(t, err)
			return testutil.OKResponse(testutil.UploadSessionResponse(sessionID, int64(len(chunk)))), nil
		},
	}

	client := signedInClient(mock)
	session, err := client.FileUploads().AppendChunk(context.Background(), sessionID, chunk)
	require.NoError(t, err)

	assert.Contains(t, gotURL, "/fileUploads/"+sessionID)
	assert.Equal(t, int64(len(chunk)), session.FileSize)

	mediaType, params, err := mime.ParseMediaType(gotContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	// the chunk must arrive intact as the vantage_file part
	reader := multipart.NewReader(bytes.NewReader(gotBody), params["boundary"])
	var foundChunk bool
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		_, dispositionParams, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		require.NoError(t, err)
		if dispositionParams["name"] != "vantage_file" {
			continue
		}

		data, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Equal(t, chunk, data)
		foundChunk = true
	}
	assert.True(t, foundChunk)
}

func TestFileUploadsService_AppendChunk_EmptySessionID(t *testing.T) {
	client := signedInClient(&testutil.MockAPI{})

	_, err := client.FileUploads().AppendChunk(context.Background(), "", []byte("data"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFileUploadsService_UploadChunked(t *testing.T) {
	sessionID := "upload:" + testutil.NewID()

	tests := []struct {
		name       string
		size       int64
		chunkSize  int64
		wantChunks int
	}{
		{name: "exact multiple", size: 4 * 64 * 1024, chunkSize: 64 * 1024, wantChunks: 4},
		{name: "trailing partial chunk", size: 3*64*1024 + 100, chunkSize: 64 * 1024, wantChunks: 4},
		{name: "single small chunk", size: 100, chunkSize: 64 * 1024, wantChunks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received int64
			var chunks int
			mock := &testutil.MockAPI{
				PostFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
					return testutil.OKResponse(testutil.UploadSessionResponse(sessionID, 0)), nil
				},
				PutFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
					chunks++
					_, params, err := mime.ParseMediaType(contentType)
					require.NoError(t, err)

					reader := multipart.NewReader(body, params["boundary"])
					for {
						part, err := reader.NextPart()
						if err == io.EOF {
							break
						}
						require.NoError(t, err)
						n, err := io.Copy(io.Discard, part)
						require.NoError(t, err)

						_, dispositionParams, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
						require.NoError(t, err)
						if dispositionParams["name"] == "vantage_file" {
							received += n
						}
					}
					return testutil.OKResponse(testutil.UploadSessionResponse(sessionID, received)), nil
				},
			}

			tracker := &recordingTracker{}
			client := signedInClient(mock)
			session, err := client.FileUploads().UploadChunked(context.Background(),
				io.LimitReader(zeroReader{}, tt.size), tt.size,
				vantagetypes.UploadConfig{ChunkSize: tt.chunkSize, ProgressTracker: tracker})
			require.NoError(t, err)

			assert.Equal(t, sessionID, session.ID)
			assert.Equal(t, tt.wantChunks, chunks)
			assert.Equal(t, tt.size, received)
			assert.Equal(t, tt.size, tracker.transferred)
			assert.True(t, tracker.completed)
		})
	}
}

func TestFileUploadsService_UploadChunked_InvalidChunkSize(t *testing.T) {
	client := signedInClient(&testutil.MockAPI{})

	_, err := client.FileUploads().UploadChunked(context.Background(),
		bytes.NewReader([]byte("data")), 4,
		vantagetypes.UploadConfig{ChunkSize: 1})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFileUploadsService_UploadChunked_AppendFailure(t *testing.T) {
	sessionID := "upload:" + testutil.NewID()

	mock := &testutil.MockAPI{
		PostFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
			return testutil.OKResponse(testutil.UploadSessionResponse(sessionID, 0)), nil
		},
		PutFunc: func(ctx context.Context, rawURL string, query url.Values, body io.Reader, contentType string) (*restapi.Response, error) {
			return testutil.StatusResponse(500,
				testutil.ErrorResponse("500000", "Internal Server Error", "")), nil
		},
	}

	tracker := &recordingTracker{}
	client := signedInClient(mock)
	_, err := client.FileUploads().UploadChunked(context.Background(),
		io.LimitReader(zeroReader{}, 128*1024), 128*1024,
		vantagetypes.UploadConfig{ChunkSize: 64 * 1024, ProgressTracker: tracker})
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrServerError)
	assert.Error(t, tracker.failed)
	assert.False(t, tracker.completed)
}
