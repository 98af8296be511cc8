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
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wanctl/manager-go/internal/obs/metrics"
)

type requestOptions struct {
	params      url.Values
	jsonBody    any
	rawBody     []byte
	form        url.Values
	contentType string
	timeout     time.Duration
	headers     map[string]string
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithParams sets URL query parameters.
func WithParams(params url.Values) RequestOption {
	return func(o *requestOptions) { o.params = params }
}

// WithJSON sets a JSON request body.
func WithJSON(v any) RequestOption {
	return func(o *requestOptions) { o.jsonBody = v }
}

// WithBody sets a raw request body with an explicit content type.
func WithBody(body []byte, contentType string) RequestOption {
	return func(o *requestOptions) { o.rawBody = body; o.contentType = contentType }
}

// WithTimeout overrides the session default timeout for this request.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// Request is the single entry point for API calls. It composes the full
// URL, attaches the session headers, delegates to the transport, handles
// expiry with a one-shot relogin replay, classifies HTTP errors into the
// typed taxonomy and logs one redacted debug line per exchange.
func (s *Session) Request(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	ctx, span := s.tracer.Start(ctx, "manager.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	start := time.Now()
	resp, err := s.roundTrip(ctx, method, path, ro)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	metrics.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	return resp, nil
}

func (s *Session) roundTrip(ctx context.Context, method, path string, ro requestOptions) (*Response, error) {
	generation, headers, state := s.snapshot()

	resp, err := s.do(ctx, method, path, ro, headers)
	if err != nil {
		if state == stateRestartImminent && isConnectionError(err) {
			return s.afterRestart(ctx, method, path, ro)
		}
		return nil, newTransportError(err)
	}
	if state == stateRestartImminent && resp.StatusCode == http.StatusServiceUnavailable {
		return s.afterRestart(ctx, method, path, ro)
	}

	if expired(resp) && s.reloginEnabled() {
		s.logger.Info("session expired, logging in again", "method", method, "path", path)
		if err := s.ensureRelogin(ctx, generation); err != nil {
			return nil, err
		}
		_, headers, _ = s.snapshot()
		replayed, err := s.do(ctx, method, path, ro, headers)
		if err != nil {
			return nil, newTransportError(err)
		}
		replayed.History = append(replayed.History, resp)
		if containsLoginForm(replayed) {
			return nil, &Error{
				Code:    CodeSessionExpiredAfterRelogin,
				Message: "replayed request still reports an expired session",
			}
		}
		resp = replayed
	} else if containsLoginForm(resp) {
		// Relogin is off (the session is closing); a login form is not a
		// payload the caller can use.
		return nil, &Error{Code: CodeSessionExpired, Message: "session expired and relogin is disabled"}
	}

	s.logger.V(1).Info("exchange", "debug", resp.Info(true))

	if resp.StatusCode >= 400 {
		return nil, classify(resp)
	}
	return resp, nil
}

// afterRestart runs the restart-imminent recovery: wait for the controller
// to come back, log in again, then retry the original request once.
func (s *Session) afterRestart(ctx context.Context, method, path string, ro requestOptions) (*Response, error) {
	s.logger.Info("controller restarting, waiting for server ready")
	if err := s.waitServerReady(ctx); err != nil {
		return nil, err
	}
	if err := s.login(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state = stateOperative
	headers := copyHeaders(s.headers)
	s.mu.Unlock()

	resp, err := s.do(ctx, method, path, ro, headers)
	if err != nil {
		return nil, newTransportError(err)
	}
	if resp.StatusCode >= 400 {
		return nil, classify(resp)
	}
	return resp, nil
}

// classify maps an error status to the typed taxonomy. The 403 arriving
// here already survived the relogin replay.
func classify(resp *Response) error {
	info := resp.ErrorInfo()
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return newHTTPError(CodeBadRequest, resp.StatusCode, info)
	case resp.StatusCode == http.StatusForbidden:
		return newHTTPError(CodeForbidden, resp.StatusCode, info)
	case resp.StatusCode == http.StatusNotFound:
		return newHTTPError(CodeNotFound, resp.StatusCode, info)
	case resp.StatusCode == http.StatusConflict:
		return newHTTPError(CodeConflict, resp.StatusCode, info)
	case resp.StatusCode >= 500:
		return newHTTPError(CodeServerError, resp.StatusCode, info)
	default:
		return newHTTPError(CodeBadRequest, resp.StatusCode, info)
	}
}

// do performs one exchange without any session-level recovery.
func (s *Session) do(ctx context.Context, method, path string, ro requestOptions, headers map[string]string) (*Response, error) {
	fullURL := s.FullURL(path)
	if len(ro.params) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + ro.params.Encode()
	}

	var body *bytes.Reader
	contentType := ""
	switch {
	case ro.jsonBody != nil:
		encoded, err := json.Marshal(ro.jsonBody)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	case ro.form != nil:
		body = bytes.NewReader([]byte(ro.form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	case ro.rawBody != nil:
		body = bytes.NewReader(ro.rawBody)
		contentType = ro.contentType
	default:
		body = bytes.NewReader(nil)
	}

	timeout := ro.timeout
	if timeout <= 0 {
		timeout = s.transport.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	raw, err := s.transport.send(req)
	if err != nil {
		return nil, err
	}
	return newResponse(req, raw)
}

func (s *Session) snapshot() (generation int, headers map[string]string, state sessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation, copyHeaders(s.headers), s.state
}

func (s *Session) reloginEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloginEnable
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !urlErr.Timeout()
	}
	return false
}
