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

// Package endpoints declares the controller API surface as data: each
// endpoint carries its HTTP method, URL template and minimum controller
// version. The Invoke helpers substitute placeholders, enforce the version
// gate and dispatch through the session.
package endpoints

import (
	"context"
	"fmt"
	"strings"

	"github.com/wanctl/manager-go/manager"
)

// Endpoint is one declared controller operation. Path may contain named
// placeholders in braces, e.g. /dataservice/tenant/{tenantId}/vsessionid.
type Endpoint struct {
	Method     string
	Path       string
	MinVersion string
}

// Href substitutes the path placeholders in declaration order. It fails
// when the argument count does not match the placeholder count.
func (e Endpoint) Href(args ...string) (string, error) {
	path := e.Path
	var out strings.Builder
	n := 0
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(path[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("endpoint %s has an unterminated placeholder", e.Path)
		}
		out.WriteString(path[:open])
		if n >= len(args) {
			return "", fmt.Errorf("endpoint %s needs more than %d arguments", e.Path, len(args))
		}
		out.WriteString(args[n])
		n++
		path = path[open+closing+1:]
	}
	out.WriteString(path)
	if n != len(args) {
		return "", fmt.Errorf("endpoint %s takes %d arguments, got %d", e.Path, n, len(args))
	}
	return out.String(), nil
}

// Invoke dispatches the endpoint and returns the raw response. The version
// gate runs before any network traffic.
func Invoke(ctx context.Context, s *manager.Session, e Endpoint, args []string, opts ...manager.RequestOption) (*manager.Response, error) {
	if e.MinVersion != "" {
		if err := s.RequireVersion(e.MinVersion, e.Method+" "+e.Path); err != nil {
			return nil, err
		}
	}
	href, err := e.Href(args...)
	if err != nil {
		return nil, err
	}
	return s.Request(ctx, e.Method, href, opts...)
}

// InvokeSeq dispatches the endpoint and decodes the data array into a
// sequence of T.
func InvokeSeq[T any](ctx context.Context, s *manager.Session, e Endpoint, args []string, opts ...manager.RequestOption) ([]T, error) {
	resp, err := Invoke(ctx, s, e, args, opts...)
	if err != nil {
		return nil, err
	}
	return manager.DataSeq[T](resp)
}

// InvokeObj dispatches the endpoint and decodes the data field into a
// single T.
func InvokeObj[T any](ctx context.Context, s *manager.Session, e Endpoint, args []string, opts ...manager.RequestOption) (T, error) {
	resp, err := Invoke(ctx, s, e, args, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return manager.DataObj[T](resp)
}
