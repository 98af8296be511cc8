/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package manager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wanctl/manager-go/internal/obs/metrics"
)

// Transfers bypass the per-request timeout; large images can take a while.
const transferTimeout = 2 * time.Hour

// ProgressFunc receives the number of bytes moved so far. Called from the
// transfer goroutine; keep it fast.
type ProgressFunc func(transferred int64)

// GetFile streams a download to destination. The content is written to a
// temporary sibling file and renamed into place only on success, so an
// aborted transfer never leaves a partial file behind. Session expiry is
// handled the same way as for Request: relogin once and replay.
func (s *Session) GetFile(ctx context.Context, path, destination string, opts ...RequestOption) error {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.timeout <= 0 {
		ro.timeout = transferTimeout
	}
	// The deadline bounds the whole transfer, body copy included.
	ctx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	resp, err := s.openStream(ctx, http.MethodGet, path, ro)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		buffered, err := newResponse(resp.Request, resp)
		if err != nil {
			return err
		}
		return classify(buffered)
	}

	partial := destination + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return &Error{Code: CodeDownload, Message: "cannot create " + partial, Cause: err}
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial) //nolint:errcheck
		return &Error{Code: CodeDownload, Message: "download of " + path + " interrupted", Cause: err}
	}
	if err := os.Rename(partial, destination); err != nil {
		os.Remove(partial) //nolint:errcheck
		return &Error{Code: CodeDownload, Message: "cannot move download into place", Cause: err}
	}
	metrics.FileTransferBytes.WithLabelValues("download").Add(float64(n))
	s.logger.V(1).Info("downloaded file", "path", path, "destination", destination, "bytes", n)
	return nil
}

// UploadFile posts a local file as a multipart form. The body is produced
// through a pipe so the file is never buffered in memory. Software images
// (.tar.gz) are sent as application/x-gzip, everything else as octet-stream.
// When the session expired mid-flight the upload is replayed once after a
// relogin, restarting the progress callback from zero.
func (s *Session) UploadFile(ctx context.Context, path, filename string, progress ProgressFunc, opts ...RequestOption) (*Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.timeout <= 0 {
		ro.timeout = transferTimeout
	}
	generation, headers, _ := s.snapshot()

	resp, err := s.uploadOnce(ctx, path, filename, progress, ro, headers)
	if err != nil {
		return nil, err
	}
	if expired(resp) {
		if !s.reloginEnabled() {
			return nil, &Error{Code: CodeSessionExpired, Message: "session expired and relogin is disabled"}
		}
		s.logger.Info("session expired, logging in again", "method", http.MethodPost, "path", path)
		if err := s.ensureRelogin(ctx, generation); err != nil {
			return nil, err
		}
		_, headers, _ = s.snapshot()
		replayed, err := s.uploadOnce(ctx, path, filename, progress, ro, headers)
		if err != nil {
			return nil, err
		}
		replayed.History = append(replayed.History, resp)
		if containsLoginForm(replayed) {
			return nil, &Error{
				Code:    CodeSessionExpiredAfterRelogin,
				Message: "replayed request still reports an expired session",
			}
		}
		resp = replayed
	}
	if resp.StatusCode >= 400 {
		return nil, classify(resp)
	}
	if info, err := os.Stat(filename); err == nil {
		metrics.FileTransferBytes.WithLabelValues("upload").Add(float64(info.Size()))
	}
	s.logger.V(1).Info("uploaded file", "path", path, "file", filename)
	return resp, nil
}

// uploadOnce performs a single multipart exchange without session recovery.
func (s *Session) uploadOnce(ctx context.Context, path, filename string, progress ProgressFunc, ro requestOptions, headers map[string]string) (*Response, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &Error{Code: CodeInvalidOperation, Message: "cannot open " + filename, Cause: err}
	}
	defer f.Close() //nolint:errcheck

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreatePart(filePartHeader(filepath.Base(filename)))
		if err != nil {
			pw.CloseWithError(err) //nolint:errcheck
			return
		}
		src := io.Reader(f)
		if progress != nil {
			src = &progressReader{r: f, fn: progress}
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err) //nolint:errcheck
			return
		}
		pw.CloseWithError(writer.Close()) //nolint:errcheck
	}()

	ctx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.FullURL(path), pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	raw, err := s.transport.send(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	return newResponse(req, raw)
}

// openStream performs a streaming exchange with the same expiry handling as
// Request: an HTML login form or a 403 triggers one relogin and one replay
// before the stream is handed to the caller.
func (s *Session) openStream(ctx context.Context, method, path string, ro requestOptions) (*http.Response, error) {
	generation, headers, _ := s.snapshot()
	resp, err := s.doStream(ctx, method, path, ro, headers)
	if err != nil {
		return nil, newTransportError(err)
	}
	if !suspectExpired(resp) {
		return resp, nil
	}
	buffered, err := newResponse(resp.Request, resp)
	if err != nil {
		return nil, err
	}
	if !expired(buffered) {
		return rewound(resp, buffered), nil
	}
	if !s.reloginEnabled() {
		return nil, &Error{Code: CodeSessionExpired, Message: "session expired and relogin is disabled"}
	}
	s.logger.Info("session expired, logging in again", "method", method, "path", path)
	if err := s.ensureRelogin(ctx, generation); err != nil {
		return nil, err
	}
	_, headers, _ = s.snapshot()
	replayed, err := s.doStream(ctx, method, path, ro, headers)
	if err != nil {
		return nil, newTransportError(err)
	}
	if !suspectExpired(replayed) {
		return replayed, nil
	}
	rebuffered, err := newResponse(replayed.Request, replayed)
	if err != nil {
		return nil, err
	}
	if containsLoginForm(rebuffered) {
		return nil, &Error{
			Code:    CodeSessionExpiredAfterRelogin,
			Message: "replayed request still reports an expired session",
		}
	}
	return rewound(replayed, rebuffered), nil
}

// suspectExpired is the header-only test deciding whether a stream must be
// buffered for the full expiry check. Anything that is not a 403 or HTML
// stays a stream and is never pulled into memory.
func suspectExpired(resp *http.Response) bool {
	if resp.StatusCode == http.StatusForbidden {
		return true
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	return strings.HasPrefix(ct, "text/html")
}

// rewound hands a buffered body back to stream consumers.
func rewound(resp *http.Response, buffered *Response) *http.Response {
	resp.Body = io.NopCloser(bytes.NewReader(buffered.Body))
	return resp
}

// doStream performs an exchange whose response body stays open for the
// caller to consume. The caller's context bounds the whole transfer.
func (s *Session) doStream(ctx context.Context, method, path string, ro requestOptions, headers map[string]string) (*http.Response, error) {
	fullURL := s.FullURL(path)
	if len(ro.params) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + ro.params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}
	return s.transport.send(req)
}

func filePartHeader(name string) textproto.MIMEHeader {
	contentType := "application/octet-stream"
	if strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz") {
		contentType = "application/x-gzip"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	return h
}

type progressReader struct {
	r     io.Reader
	fn    ProgressFunc
	total int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.total += int64(n)
	if n > 0 {
		p.fn(p.total)
	}
	return n, err
}
