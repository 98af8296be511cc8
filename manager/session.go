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
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanctl/manager-go/models"
)

const userAgent = "manager-go"

// SessionType is the operating mode of an authenticated session.
type SessionType string

const (
	SessionTypeSingleTenant     SessionType = "single_tenant"
	SessionTypeProvider         SessionType = "provider"
	SessionTypeProviderAsTenant SessionType = "provider_as_tenant"
	SessionTypeTenant           SessionType = "tenant"
	SessionTypeNotDefined       SessionType = "not_defined"
)

type sessionState int

const (
	stateOperative sessionState = iota
	stateRestartImminent
)

// Config configures a Session. URL is the controller host, IP or full https
// URL; Port is optional. Subdomain requests a provider-as-tenant session and
// is only valid for provider users.
type Config struct {
	URL       string
	Port      int
	Username  string
	Password  string
	Subdomain string

	// VerifyTLS enables certificate verification. Controllers commonly run
	// with self-signed certificates, so the zero value skips verification,
	// matching operator expectations.
	VerifyTLS bool

	// Timeout is the per-request default (30s when zero). Individual
	// requests can override it with WithTimeout.
	Timeout time.Duration

	// RestartTimeout bounds the server-ready wait entered after
	// RestartImminent (20 minutes when zero).
	RestartTimeout time.Duration

	// Logger receives structured logs. Discarded when unset.
	Logger logr.Logger
}

// Session is an authenticated connection to the controller. It owns the
// underlying connection pool exclusively. Read-like calls may be issued from
// multiple goroutines; mutations of the session (relogin, tenant switch,
// header updates) are serialized internally.
type Session struct {
	baseURL   *url.URL
	username  string
	password  string
	subdomain string

	transport *Transport
	logger    logr.Logger
	tracer    trace.Tracer

	restartTimeout time.Duration

	mu            sync.Mutex
	headers       map[string]string
	generation    int
	sessionType   SessionType
	loginType     SessionType
	serverInfo    models.ServerInfo
	version       Version
	state         sessionState
	reloginEnable bool
	closed        bool
}

// Connect creates a session and performs the login handshake: security
// check, CSRF token fetch, optional subdomain switch, then the server info
// and version probe.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	base, err := buildBaseURL(cfg.URL, cfg.Port)
	if err != nil {
		return nil, err
	}
	tr, err := newTransport(cfg.VerifyTLS, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	restartTimeout := cfg.RestartTimeout
	if restartTimeout <= 0 {
		restartTimeout = 20 * time.Minute
	}
	s := &Session{
		baseURL:        base,
		username:       cfg.Username,
		password:       cfg.Password,
		subdomain:      cfg.Subdomain,
		transport:      tr,
		logger:         cfg.Logger,
		tracer:         otel.Tracer("manager-go"),
		restartTimeout: restartTimeout,
		headers:        map[string]string{},
		sessionType:    SessionTypeNotDefined,
		reloginEnable:  true,
	}
	if err := s.login(ctx); err != nil {
		tr.close()
		return nil, err
	}
	return s, nil
}

func buildBaseURL(raw string, port int) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newInvalidOperationError(fmt.Sprintf("invalid controller URL %q", raw))
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	if port > 0 {
		u.Host = fmt.Sprintf("%s:%d", u.Hostname(), port)
	}
	return u, nil
}

// BaseURL returns the scheme://host[:port] prefix shared by every request.
func (s *Session) BaseURL() string {
	return s.baseURL.String()
}

// FullURL joins the base URL with a relative API path.
func (s *Session) FullURL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return s.baseURL.String() + path
	}
	return s.baseURL.ResolveReference(ref).String()
}

// Username returns the login username.
func (s *Session) Username() string {
	return s.username
}

// SessionType returns the operating mode determined at login (or changed by
// a tenant switch).
func (s *Session) SessionType() SessionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionType
}

// ServerInfo returns the record fetched by the login probe.
func (s *Session) ServerInfo() models.ServerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverInfo
}

// APIVersion returns the normalized controller version.
func (s *Session) APIVersion() Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// RequireVersion gates an operation on a minimum controller version.
func (s *Session) RequireVersion(min, operation string) error {
	v := s.APIVersion()
	if v.AtLeast(min) {
		return nil
	}
	return &Error{
		Code:    CodeAPIVersion,
		Message: fmt.Sprintf("controller is running %s but %s requires at least %s", v, operation, min),
	}
}

// RestartImminent tells the session the controller is about to restart.
// Connection errors and 503 answers will then trigger a server-ready wait
// followed by a fresh login instead of failing the call.
func (s *Session) RestartImminent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateRestartImminent
}

// Logger returns the session logger.
func (s *Session) Logger() logr.Logger {
	return s.logger
}

func determineSessionType(info models.ServerInfo) SessionType {
	type key struct{ tenancy, user, view string }
	switch (key{info.TenancyMode, info.UserMode, info.ViewMode}) {
	case key{models.TenancyModeSingleTenant, models.ModeTenant, models.ModeTenant}:
		return SessionTypeSingleTenant
	case key{models.TenancyModeMultiTenant, models.ModeProvider, models.ModeProvider}:
		return SessionTypeProvider
	case key{models.TenancyModeMultiTenant, models.ModeProvider, models.ModeTenant}:
		return SessionTypeProviderAsTenant
	case key{models.TenancyModeMultiTenant, models.ModeTenant, models.ModeTenant}:
		return SessionTypeTenant
	}
	return SessionTypeNotDefined
}

// Close logs out best-effort and releases the connection pool. The logout
// verb changed in 20.12 from GET to POST.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.reloginEnable = false
	version := s.version
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	method := http.MethodGet
	if version.AtLeast("20.12") {
		method = http.MethodPost
	}
	if _, err := s.Request(ctx, method, "/logout"); err != nil {
		s.logger.V(1).Info("logout failed", "error", err.Error())
	}
	s.transport.close()
	return nil
}
