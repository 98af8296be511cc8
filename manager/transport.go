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
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Transport is the thin wrapper around the HTTPS client shared by a
// session: pooled keepalive connections, TLS verification policy and the
// cookie jar. It sends prepared requests and never interprets payloads.
type Transport struct {
	client  *http.Client
	timeout time.Duration
}

func newTransport(verifyTLS bool, timeout time.Duration) (*Transport, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !verifyTLS, //nolint:gosec // verification is a caller-owned policy toggle
		},
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Transport{
		client:  &http.Client{Transport: tr, Jar: jar},
		timeout: timeout,
	}, nil
}

// send performs the exchange. Deadlines are carried on the request context
// by the request engine so that response bodies can still be drained after
// send returns.
func (t *Transport) send(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

func (t *Transport) close() {
	if tr, ok := t.client.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
}
