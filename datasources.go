package vantage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/internal/requests"
	"github.com/vantage-bi/vantage-go/internal/responses"
	"github.com/vantage-bi/vantage-go/internal/validation"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

const datasourcesResource = "datasources"

// DatasourcesService provides operations on the datasources endpoint.
// All operations require a signed-in client.
type DatasourcesService struct {
	client *Client
}

// List fetches one page of datasources on the signed-in site.
// Page size, page number, filters, and sort order are set through options;
// the server applies its defaults when none are given.
//
// Example:
//
//	items, pagination, err := client.Datasources().List(ctx,
//	    vantage.WithPageSize(100),
//	    vantage.WithFilter("type", "eq", "postgres"),
//	)
func (s *DatasourcesService) List(
	ctx context.Context,
	opts ...vantagetypes.ListOption,
) ([]vantagetypes.Datasource, *vantagetypes.Pagination, error) {
	cfg := vantagetypes.ListOptionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	rawURL, err := s.client.siteURL(datasourcesResource)
	if err != nil {
		return nil, nil, errors.NewError("list", err).WithResource(datasourcesResource)
	}

	resp, err := s.client.api.Get(ctx, rawURL, listQuery(cfg))
	if err != nil {
		return nil, nil, errors.NewError("list", err).WithResource(datasourcesResource)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, nil, errors.NewError("list", err).WithResource(datasourcesResource)
	}

	items, err := responses.ParseDatasourceList(resp.Body)
	if err != nil {
		return nil, nil, errors.NewError("list", err).WithResource(datasourcesResource)
	}
	pagination, err := responses.ParsePagination(resp.Body)
	if err != nil {
		return nil, nil, errors.NewError("list", err).WithResource(datasourcesResource)
	}

	s.client.logger.Info("listed datasources",
		"count", len(items),
		"page", pagination.PageNumber,
		"total", pagination.TotalAvailable,
	)
	return items, pagination, nil
}

// ListAll fetches every datasource on the signed-in site, walking pages
// until the server reports no more items. Filters and sort options apply;
// page number options are ignored.
func (s *DatasourcesService) ListAll(
	ctx context.Context,
	opts ...vantagetypes.ListOption,
) ([]vantagetypes.Datasource, error) {
	cfg := vantagetypes.ListOptionConfig{PageSize: 100}
	for _, opt := range opts {
		opt(&cfg)
	}

	var all []vantagetypes.Datasource
	for page := 1; ; page++ {
		pageOpts := append([]vantagetypes.ListOption{},
			WithPageSize(cfg.PageSize),
			WithPageNumber(page),
		)
		for _, f := range cfg.Filters {
			pageOpts = append(pageOpts, WithFilter(f.Field, f.Operator, f.Value))
		}
		for _, so := range cfg.Sorts {
			pageOpts = append(pageOpts, WithSort(so.Field, so.Descending))
		}

		items, pagination, err := s.List(ctx, pageOpts...)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) == 0 || len(all) >= pagination.TotalAvailable {
			break
		}
	}
	return all, nil
}

// Get fetches a single datasource by its identifier.
func (s *DatasourcesService) Get(ctx context.Context, id string) (*vantagetypes.Datasource, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	rawURL, err := s.client.siteURL(path.Join(datasourcesResource, id))
	if err != nil {
		return nil, errors.NewError("get", err).WithResource(datasourcesResource).WithID(id)
	}

	resp, err := s.client.api.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, errors.NewError("get", err).WithResource(datasourcesResource).WithID(id)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("get", err).WithResource(datasourcesResource).WithID(id)
	}

	item, err := responses.ParseDatasource(resp.Body)
	if err != nil {
		return nil, errors.NewError("get", err).WithResource(datasourcesResource).WithID(id)
	}
	return item, nil
}

// Connections fetches the connections embedded in a datasource.
func (s *DatasourcesService) Connections(ctx context.Context, id string) ([]vantagetypes.Connection, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	rawURL, err := s.client.siteURL(path.Join(datasourcesResource, id, "connections"))
	if err != nil {
		return nil, errors.NewError("connections", err).WithResource(datasourcesResource).WithID(id)
	}

	resp, err := s.client.api.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, errors.NewError("connections", err).WithResource(datasourcesResource).WithID(id)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("connections", err).WithResource(datasourcesResource).WithID(id)
	}

	connections, err := responses.ParseConnections(resp.Body)
	if err != nil {
		return nil, errors.NewError("connections", err).WithResource(datasourcesResource).WithID(id)
	}
	return connections, nil
}

// Update pushes the mutable fields of a datasource to the server and returns
// the updated item. The datasource must carry the ID of an item previously
// fetched from the server; the argument is never modified.
func (s *DatasourcesService) Update(
	ctx context.Context,
	ds vantagetypes.Datasource,
) (*vantagetypes.Datasource, error) {
	if ds.ID == "" {
		return nil, errors.NewError("update", errors.ErrMissingID).WithResource(datasourcesResource)
	}
	if err := validation.ValidateID(ds.ID); err != nil {
		return nil, err
	}

	body, err := requests.UpdateDatasource(ds)
	if err != nil {
		return nil, errors.NewError("update", err).WithResource(datasourcesResource).WithID(ds.ID)
	}

	rawURL, err := s.client.siteURL(path.Join(datasourcesResource, ds.ID))
	if err != nil {
		return nil, errors.NewError("update", err).WithResource(datasourcesResource).WithID(ds.ID)
	}

	resp, err := s.client.api.Put(ctx, rawURL, nil, strings.NewReader(string(body)), requests.XMLContentType)
	if err != nil {
		return nil, errors.NewError("update", err).WithResource(datasourcesResource).WithID(ds.ID)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("update", err).WithResource(datasourcesResource).WithID(ds.ID)
	}

	updated, err := responses.ParseDatasource(resp.Body)
	if err != nil {
		return nil, errors.NewError("update", err).WithResource(datasourcesResource).WithID(ds.ID)
	}

	s.client.logger.Info("updated datasource", "id", ds.ID)
	return updated, nil
}

// Delete removes a datasource from the server.
func (s *DatasourcesService) Delete(ctx context.Context, id string) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}

	rawURL, err := s.client.siteURL(path.Join(datasourcesResource, id))
	if err != nil {
		return errors.NewError("delete", err).WithResource(datasourcesResource).WithID(id)
	}

	resp, err := s.client.api.Delete(ctx, rawURL, nil)
	if err != nil {
		return errors.NewError("delete", err).WithResource(datasourcesResource).WithID(id)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return errors.NewError("delete", err).WithResource(datasourcesResource).WithID(id)
	}

	s.client.logger.Info("deleted datasource", "id", id)
	return nil
}

// DeleteMany removes multiple datasources concurrently, up to the client's
// concurrency limit. Individual failures are collected per item; the
// operation itself only fails when the context is cancelled.
func (s *DatasourcesService) DeleteMany(ctx context.Context, ids []string) (*vantagetypes.DeleteResult, error) {
	start := time.Now()
	result := &vantagetypes.DeleteResult{}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.client.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			err := s.Delete(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, vantagetypes.DeleteError{
					ID:      id,
					Message: err.Error(),
				})
				return nil
			}
			result.Deleted = append(result.Deleted, id)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.NewError("deleteMany", err).WithResource(datasourcesResource)
	}

	result.Duration = time.Since(start)
	s.client.logger.Info("deleted datasources",
		"deleted", len(result.Deleted),
		"failed", len(result.Errors),
	)
	return result, nil
}

// Download streams the content of a datasource into w and returns the
// filename the server reports for it.
func (s *DatasourcesService) Download(
	ctx context.Context,
	id string,
	w io.Writer,
	opts ...vantagetypes.DownloadOption,
) (*vantagetypes.DownloadResult, error) {
	cfg := vantagetypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	rawURL, err := s.client.siteURL(path.Join(datasourcesResource, id, "content"))
	if err != nil {
		return nil, errors.NewError("download", err).WithResource(datasourcesResource).WithID(id)
	}

	start := time.Now()
	stream, err := s.client.api.GetStream(ctx, rawURL, nil)
	if err != nil {
		return nil, errors.NewError("download", err).WithResource(datasourcesResource).WithID(id)
	}
	defer stream.Body.Close()

	if stream.StatusCode < 200 || stream.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(stream.Body, 1<<20))
		checkErr := responses.CheckError(stream.StatusCode, body)
		return nil, errors.NewError("download", checkErr).WithResource(datasourcesResource).WithID(id)
	}

	var src io.Reader = stream.Body
	if cfg.ProgressTracker != nil {
		src = &progressReader{
			reader:  stream.Body,
			total:   contentLength(stream.Header.Get("Content-Length")),
			tracker: cfg.ProgressTracker,
		}
	}

	written, err := io.Copy(w, src)
	if err != nil {
		if cfg.ProgressTracker != nil {
			cfg.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("download", err).WithResource(datasourcesResource).WithID(id)
	}
	if cfg.ProgressTracker != nil {
		cfg.ProgressTracker.Complete()
	}

	result := &vantagetypes.DownloadResult{
		ID:       id,
		Filename: dispositionFilename(stream.Header.Get("Content-Disposition")),
		Size:     written,
		Duration: time.Since(start),
	}

	s.client.logger.Info("downloaded datasource",
		"id", id,
		"filename", result.Filename,
		"bytes", written,
	)
	return result, nil
}

// DownloadFile downloads a datasource to the local filesystem and returns
// the path written. An empty targetPath writes the server's filename into
// the working directory; a directory path writes the server's filename into
// that directory. The returned path is interpreted against the client's
// filesystem: it stays relative when targetPath is empty or relative, and
// the server's filename is reduced to its base name before joining.
func (s *DatasourcesService) DownloadFile(
	ctx context.Context,
	id, targetPath string,
	opts ...vantagetypes.DownloadOption,
) (string, error) {
	if err := validation.ValidateID(id); err != nil {
		return "", err
	}

	dir := targetPath
	if dir == "" {
		dir = "."
	}

	// When the target is a directory (or unset) the final name comes from
	// the server, so the content lands in a partial file first and is
	// renamed once the download finishes.
	targetIsDir := false
	if info, err := s.client.fs.Stat(dir); err == nil && info.IsDir() {
		targetIsDir = true
	}

	if targetPath == "" || targetIsDir {
		partial := filepath.Join(dir, ".vantage-"+id+".partial")
		out, err := s.client.fs.Create(partial)
		if err != nil {
			return "", errors.NewError("downloadFile", err).WithResource(datasourcesResource).WithID(id)
		}

		result, err := s.Download(ctx, id, out, opts...)
		closeErr := out.Close()
		if err != nil {
			s.client.fs.Remove(partial)
			return "", err
		}
		if closeErr != nil {
			s.client.fs.Remove(partial)
			return "", errors.NewError("downloadFile", closeErr).WithResource(datasourcesResource).WithID(id)
		}

		name := result.Filename
		if name == "" {
			name = id + ".vdsx"
		}
		final := filepath.Join(dir, name)
		if err := s.moveFile(partial, final); err != nil {
			return "", errors.NewError("downloadFile", err).WithResource(datasourcesResource).WithID(id)
		}
		return final, nil
	}

	out, err := s.client.fs.Create(targetPath)
	if err != nil {
		return "", errors.NewError("downloadFile", err).WithResource(datasourcesResource).WithID(id)
	}

	_, err = s.Download(ctx, id, out, opts...)
	closeErr := out.Close()
	if err != nil {
		s.client.fs.Remove(targetPath)
		return "", err
	}
	if closeErr != nil {
		return "", errors.NewError("downloadFile", closeErr).WithResource(datasourcesResource).WithID(id)
	}
	return targetPath, nil
}

// moveFile renames by copy since the filesystem abstraction has no rename.
func (s *DatasourcesService) moveFile(from, to string) error {
	data, err := s.client.fs.ReadFile(from)
	if err != nil {
		return err
	}
	if err := s.client.fs.WriteFile(to, data, 0o644); err != nil {
		return err
	}
	return s.client.fs.Remove(from)
}

// Publish uploads datasource content from a reader. Files smaller than
// FilesizeLimit go up in a single multipart request; at or above the limit
// the content is sent through a chunked upload session first and the publish
// request references the session.
//
// The filename determines the datasource type and must use one of the
// accepted extensions. When ds.Name is empty it defaults to the filename
// without its extension.
func (s *DatasourcesService) Publish(
	ctx context.Context,
	ds vantagetypes.Datasource,
	filename string,
	size int64,
	content io.Reader,
	mode vantagetypes.PublishMode,
	opts ...vantagetypes.PublishOption,
) (*vantagetypes.Datasource, error) {
	cfg := vantagetypes.PublishOptionConfig{ChunkSize: s.client.chunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidatePublishMode(mode); err != nil {
		return nil, err
	}
	ext, err := validation.ValidateFileExtension(filename)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateChunkSize(cfg.ChunkSize); err != nil {
		return nil, err
	}

	if ds.Name == "" {
		base := filepath.Base(filename)
		ds.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	rawURL, err := s.client.siteURL(datasourcesResource)
	if err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
	}

	query := url.Values{}
	query.Set("datasourceType", ext)
	switch mode {
	case vantagetypes.PublishModeOverwrite:
		query.Set("overwrite", "true")
	case vantagetypes.PublishModeAppend:
		query.Set("append", "true")
	}

	var (
		body        io.Reader
		contentType string
	)
	if size >= FilesizeLimit {
		session, err := s.client.FileUploads().UploadChunked(ctx, content, size, vantagetypes.UploadConfig{
			ChunkSize:       cfg.ChunkSize,
			ProgressTracker: cfg.ProgressTracker,
		})
		if err != nil {
			return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
		}
		query.Set("uploadSessionId", session.ID)

		buf, ct, err := requests.ChunkedPublishPayload(ds)
		if err != nil {
			return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
		}
		body, contentType = buf, ct
	} else {
		sniffed, fileType, err := sniffContentType(content, filename)
		if err != nil {
			return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
		}
		buf, ct, err := requests.PublishPayload(ds, filepath.Base(filename), fileType, sniffed)
		if err != nil {
			return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
		}
		body, contentType = buf, ct
	}

	resp, err := s.client.api.Post(ctx, rawURL, query, body, contentType)
	if err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
	}

	published, err := responses.ParseDatasource(resp.Body)
	if err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource)
	}

	s.client.logger.Info("published datasource",
		"id", published.ID,
		"name", published.Name,
		"mode", string(mode),
		"chunked", size >= FilesizeLimit,
	)
	return published, nil
}

// PublishFile publishes a datasource file from the local filesystem.
func (s *DatasourcesService) PublishFile(
	ctx context.Context,
	ds vantagetypes.Datasource,
	filePath string,
	mode vantagetypes.PublishMode,
	opts ...vantagetypes.PublishOption,
) (*vantagetypes.Datasource, error) {
	info, err := s.client.fs.Stat(filePath)
	if err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource).
			WithMessage(fmt.Sprintf("stat file %s", filePath))
	}
	if info.IsDir() {
		return nil, errors.NewError("publish", errors.ErrInvalidInput).WithResource(datasourcesResource).
			WithMessage(fmt.Sprintf("%s is a directory", filePath))
	}

	file, err := s.client.fs.Open(filePath)
	if err != nil {
		return nil, errors.NewError("publish", err).WithResource(datasourcesResource).
			WithMessage(fmt.Sprintf("open file %s", filePath))
	}
	defer file.Close()

	return s.Publish(ctx, ds, filepath.Base(filePath), info.Size(), file, mode, opts...)
}

// listQuery renders list options as request query parameters.
func listQuery(cfg vantagetypes.ListOptionConfig) url.Values {
	query := url.Values{}
	if cfg.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(cfg.PageSize))
	}
	if cfg.PageNumber > 0 {
		query.Set("pageNumber", strconv.Itoa(cfg.PageNumber))
	}
	if len(cfg.Filters) > 0 {
		parts := make([]string, 0, len(cfg.Filters))
		for _, f := range cfg.Filters {
			parts = append(parts, fmt.Sprintf("%s:%s:%s", f.Field, f.Operator, f.Value))
		}
		query.Set("filter", strings.Join(parts, ","))
	}
	if len(cfg.Sorts) > 0 {
		parts := make([]string, 0, len(cfg.Sorts))
		for _, so := range cfg.Sorts {
			dir := "asc"
			if so.Descending {
				dir = "desc"
			}
			parts = append(parts, fmt.Sprintf("%s:%s", so.Field, dir))
		}
		query.Set("sort", strings.Join(parts, ","))
	}
	if len(query) == 0 {
		return nil
	}
	return query
}

// sniffContentType detects the MIME type of content from its leading bytes
// and hands back a reader that replays them. Detection falls back to the
// filename extension for readers that hit EOF immediately.
func sniffContentType(content io.Reader, filename string) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("read file header: %w", err)
	}
	head = head[:n]

	contentType := ""
	if n > 0 {
		contentType = mimetype.Detect(head).String()
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}

	return io.MultiReader(strings.NewReader(string(head)), content), contentType, nil
}

// dispositionFilename extracts the filename from a Content-Disposition header.
// The header is server-controlled, so any path components are stripped; the
// result is always a bare name or empty.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" {
		return ""
	}
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// contentLength parses a Content-Length header, returning 0 when absent.
func contentLength(header string) int64 {
	if header == "" {
		return 0
	}
	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// progressReader reports read progress to a tracker.
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred int64
	tracker     vantagetypes.ProgressTracker
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		r.tracker.Update(r.transferred, r.total)
	}
	return n, err
}
