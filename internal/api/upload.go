package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressFunc receives per-chunk upload progress. total is the file size in
// bytes; loaded grows monotonically from 0 to total.
type ProgressFunc func(loaded, total int64)

// UploadMedia uploads one file to the media endpoint and returns the produced
// attachment descriptor. The file content is streamed, not buffered; each
// chunk read from disk invokes onProgress (which may be nil).
func (c *Client) UploadMedia(ctx context.Context, path string, onProgress ProgressFunc) (Attachment, error) {
	if path == "" {
		return Attachment{}, fmt.Errorf("upload media: path is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Attachment{}, fmt.Errorf("upload media: rate limiter: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("upload media: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Attachment{}, fmt.Errorf("upload media: %w", err)
	}

	// Stream the multipart body through a pipe so large files never sit in
	// memory and progress reflects actual bytes put on the wire.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{
			r:          f,
			total:      info.Size(),
			onProgress: onProgress,
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	endpoint := c.baseURL + "/api/v1/media"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return Attachment{}, fmt.Errorf("upload media: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return Attachment{}, fmt.Errorf("upload media: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Attachment{}, fmt.Errorf("upload media: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Attachment{}, fmt.Errorf("upload media %q: %w", filepath.Base(path), newHTTPError(resp.StatusCode, respBody))
	}

	var att Attachment
	if err := json.Unmarshal(respBody, &att); err != nil {
		return Attachment{}, fmt.Errorf("upload media: failed to unmarshal response: %w", err)
	}

	c.logger.Debug("media uploaded",
		"file", filepath.Base(path),
		"attachment_id", att.ID,
		"bytes", info.Size())

	return att, nil
}

// progressReader counts bytes as they are read and reports them upstream.
type progressReader struct {
	r          io.Reader
	loaded     int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.loaded, p.total)
		}
	}
	return n, err
}
