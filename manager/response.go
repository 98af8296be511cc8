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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// sensitivePaths lists URL paths whose bodies carry secrets and must never
// appear in log output.
var sensitivePaths = []string{
	"/dataservice/settings/configuration/smartaccountcredentials",
	"/j_security_check",
	"/vsessionid",
}

// ErrorInfo is the structured error object from the controller envelope.
// All fields are empty when the response carried no "error" key.
type ErrorInfo struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

// Response wraps a controller HTTP response. The body is buffered once at
// construction; accessors parse the {"data": ..., "error": ..., "header": ...}
// envelope on demand.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	// History holds earlier exchanges that led to this response, oldest
	// first (populated when a request was replayed after relogin).
	History []*Response

	request *http.Request
}

func newResponse(req *http.Request, resp *http.Response) (*Response, error) {
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
		request:    req,
	}, nil
}

// JSON parses the body as JSON.
func (r *Response) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, newParseError("response body is not valid JSON", err)
	}
	return v, nil
}

// envelope returns the top level JSON object fields without decoding the
// values.
func (r *Response) envelope() (map[string]json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return nil, newParseError("response body is not a JSON object", err)
	}
	return env, nil
}

// ErrorInfo reads the "error" object from the envelope. It returns the zero
// value when the body is not JSON or carries no error key.
func (r *Response) ErrorInfo() ErrorInfo {
	env, err := r.envelope()
	if err != nil {
		return ErrorInfo{}
	}
	raw, ok := env["error"]
	if !ok {
		return ErrorInfo{}
	}
	var info ErrorInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return ErrorInfo{}
	}
	return info
}

// Cookies parses Set-Cookie headers directly. Some proxy setups hand back
// cookies the underlying client's jar never saw, so this must not rely on
// the jar state.
func (r *Response) Cookies() []*http.Cookie {
	stub := http.Response{Header: r.Header}
	return stub.Cookies()
}

// DataSeq decodes the named envelope field (the "data" key unless sourcekey
// says otherwise) into a sequence of T. A single object is wrapped into a
// one-element sequence.
func DataSeq[T any](r *Response, sourcekey ...string) ([]T, error) {
	key := "data"
	if len(sourcekey) > 0 {
		key = sourcekey[0]
	}
	env, err := r.envelope()
	if err != nil {
		return nil, err
	}
	raw, ok := env[key]
	if !ok {
		return nil, newParseError(fmt.Sprintf("response envelope has no %q field", key), nil)
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, newParseError(fmt.Sprintf("cannot decode %q as sequence", key), err)
		}
		return out, nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, newParseError(fmt.Sprintf("cannot decode %q as object", key), err)
		}
		return []T{one}, nil
	default:
		return nil, newParseError(fmt.Sprintf("%q contains neither object nor sequence", key), nil)
	}
}

// DataObj decodes the named envelope field into a single T.
func DataObj[T any](r *Response, sourcekey ...string) (T, error) {
	var zero T
	seq, err := DataSeq[T](r, sourcekey...)
	if err != nil {
		return zero, err
	}
	if len(seq) != 1 {
		return zero, newParseError(fmt.Sprintf("expected a single object, got %d", len(seq)), nil)
	}
	return seq[0], nil
}

// Info renders a redacted human-readable dump of the exchange. With history
// the earlier exchanges of a replayed request are included, oldest first.
func (r *Response) Info(history bool) string {
	if !history {
		return r.debugString()
	}
	parts := make([]string, 0, len(r.History)+1)
	for _, h := range r.History {
		parts = append(parts, h.debugString())
	}
	parts = append(parts, r.debugString())
	return strings.Join(parts, "\n")
}

func (r *Response) debugString() string {
	var b strings.Builder
	sensitive := r.request != nil && isSensitivePath(r.request.URL)

	b.WriteString("request:\n")
	if r.request != nil {
		fmt.Fprintf(&b, "  %s %s\n", r.request.Method, r.request.URL)
		writeHeaders(&b, r.request.Header)
	}
	fmt.Fprintf(&b, "response:\n  status: %s\n", r.Status)
	writeHeaders(&b, r.Header)
	switch {
	case sensitive:
		b.WriteString("  body: <omitted: sensitive path>\n")
	case !textualContentType(r.Header.Get("Content-Type")):
		fmt.Fprintf(&b, "  body: <omitted: %d bytes of %s>\n", len(r.Body), r.Header.Get("Content-Type"))
	case len(r.Body) > 1024:
		fmt.Fprintf(&b, "  body(trimmed): %s\n", r.Body[:128])
	default:
		fmt.Fprintf(&b, "  body: %s\n", r.Body)
	}
	return b.String()
}

func writeHeaders(b *strings.Builder, h http.Header) {
	for _, k := range []string{"Content-Type", "Content-Length", "Set-Cookie", "X-Xsrf-Token", "Vsessionid"} {
		if v := h.Get(k); v != "" {
			fmt.Fprintf(b, "  %s: %s\n", k, v)
		}
	}
}

func isSensitivePath(u *url.URL) bool {
	if u == nil {
		return false
	}
	for _, p := range sensitivePaths {
		if strings.Contains(u.Path, p) {
			return true
		}
	}
	return false
}

func textualContentType(ct string) bool {
	ct = strings.ToLower(ct)
	for _, prefix := range []string{"application/json", "text/", "application/xml", "application/x-www-form-urlencoded"} {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}
