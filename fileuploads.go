package vantage

import (
	"context"
	"io"
	"path"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/internal/requests"
	"github.com/vantage-bi/vantage-go/internal/responses"
	"github.com/vantage-bi/vantage-go/internal/validation"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

const fileUploadsResource = "fileUploads"

// FileUploadsService manages chunked file upload sessions. Publish uses it
// automatically for large files; it is exposed for callers that need to
// drive an upload session themselves.
type FileUploadsService struct {
	client *Client
}

// Initiate starts a new upload session on the server.
func (s *FileUploadsService) Initiate(ctx context.Context) (*vantagetypes.UploadSession, error) {
	rawURL, err := s.client.siteURL(fileUploadsResource)
	if err != nil {
		return nil, errors.NewError("initiateUpload", err).WithResource(fileUploadsResource)
	}

	resp, err := s.client.api.Post(ctx, rawURL, nil, nil, "")
	if err != nil {
		return nil, errors.NewError("initiateUpload", err).WithResource(fileUploadsResource)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("initiateUpload", err).WithResource(fileUploadsResource)
	}

	session, err := responses.ParseUploadSession(resp.Body)
	if err != nil {
		return nil, errors.NewError("initiateUpload", err).WithResource(fileUploadsResource)
	}

	s.client.logger.Info("initiated upload session", "session_id", session.ID)
	return session, nil
}

// AppendChunk sends one chunk of data to an upload session and returns the
// session state, including the total bytes the server has received.
func (s *FileUploadsService) AppendChunk(
	ctx context.Context,
	sessionID string,
	chunk []byte,
) (*vantagetypes.UploadSession, error) {
	if err := validation.ValidateID(sessionID); err != nil {
		return nil, err
	}

	body, contentType, err := requests.ChunkPayload(chunk)
	if err != nil {
		return nil, errors.NewError("appendChunk", err).WithResource(fileUploadsResource).WithID(sessionID)
	}

	rawURL, err := s.client.siteURL(path.Join(fileUploadsResource, sessionID))
	if err != nil {
		return nil, errors.NewError("appendChunk", err).WithResource(fileUploadsResource).WithID(sessionID)
	}

	resp, err := s.client.api.Put(ctx, rawURL, nil, body, contentType)
	if err != nil {
		return nil, errors.NewError("appendChunk", err).WithResource(fileUploadsResource).WithID(sessionID)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("appendChunk", err).WithResource(fileUploadsResource).WithID(sessionID)
	}

	return responses.ParseUploadSession(resp.Body)
}

// UploadChunked uploads the full content of a reader through a new upload
// session, sending chunks sequentially. The server requires chunks to arrive
// in order within a session. totalSize drives progress reporting only; the
// upload runs to EOF regardless.
func (s *FileUploadsService) UploadChunked(
	ctx context.Context,
	content io.Reader,
	totalSize int64,
	cfg vantagetypes.UploadConfig,
) (*vantagetypes.UploadSession, error) {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.client.chunkSize
	}
	if err := validation.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}

	session, err := s.Initiate(ctx)
	if err != nil {
		return nil, err
	}

	var transferred int64
	buf := make([]byte, chunkSize)
	for {
		n, readErr := io.ReadFull(content, buf)
		if readErr == io.EOF {
			break
		}
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			if cfg.ProgressTracker != nil {
				cfg.ProgressTracker.Error(readErr)
			}
			return nil, errors.NewError("uploadChunked", readErr).
				WithResource(fileUploadsResource).WithID(session.ID)
		}

		updated, err := s.AppendChunk(ctx, session.ID, buf[:n])
		if err != nil {
			if cfg.ProgressTracker != nil {
				cfg.ProgressTracker.Error(err)
			}
			return nil, err
		}
		session = updated

		transferred += int64(n)
		if cfg.ProgressTracker != nil {
			cfg.ProgressTracker.Update(transferred, totalSize)
		}

		if readErr == io.ErrUnexpectedEOF {
			break
		}
	}

	if cfg.ProgressTracker != nil {
		cfg.ProgressTracker.Complete()
	}

	s.client.logger.Info("completed chunked upload",
		"session_id", session.ID,
		"bytes", transferred,
	)
	return session, nil
}
