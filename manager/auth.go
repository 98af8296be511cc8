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
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wanctl/manager-go/internal/obs/metrics"
	"github.com/wanctl/manager-go/internal/resilience"
	"github.com/wanctl/manager-go/models"
)

const (
	securityCheckPath = "/j_security_check"
	tokenPath         = "/dataservice/client/token"
	serverInfoPath    = "/dataservice/client/server"
	serverReadyPath   = "/dataservice/client/server/ready"
)

const xsrfHeader = "X-XSRF-TOKEN"

// login performs the full handshake and (re)derives the session identity.
// It is the only code path that mutates cookies and the CSRF header.
func (s *Session) login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginLocked(ctx)
}

func (s *Session) loginLocked(ctx context.Context) error {
	delete(s.headers, xsrfHeader)
	delete(s.headers, vSessionHeader)

	// Step 1: security check. The controller answers 200 with an empty body
	// and a session cookie on success, and 200 with an HTML login form on
	// bad credentials, so success is decided by content inspection.
	form := url.Values{}
	form.Set("j_username", s.username)
	form.Set("j_password", s.password)
	resp, err := s.do(ctx, http.MethodPost, securityCheckPath, requestOptions{form: form}, nil)
	if err != nil {
		return newTransportError(err)
	}
	if resp.StatusCode != http.StatusOK || len(strings.TrimSpace(string(resp.Body))) != 0 {
		return newAuthenticationError(s.username)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return newAuthenticationError(s.username)
	}
	// The jar normally captured the cookie already; set it explicitly so
	// proxy setups that bypass the jar still authenticate.
	s.transport.client.Jar.SetCookies(s.baseURL, cookies)

	// Step 2: CSRF token, injected on every subsequent request.
	tokenResp, err := s.do(ctx, http.MethodGet, tokenPath, requestOptions{}, nil)
	if err != nil {
		return newTransportError(err)
	}
	if tokenResp.StatusCode == http.StatusOK {
		s.headers[xsrfHeader] = strings.TrimSpace(string(tokenResp.Body))
	}

	s.generation++

	// Step 3: optional provider-as-tenant switch requested at creation.
	if s.subdomain != "" {
		tenantID, err := s.lookupTenantIDLocked(ctx, s.subdomain)
		if err != nil {
			return err
		}
		vsession, err := s.createVSessionLocked(ctx, tenantID)
		if err != nil {
			return err
		}
		s.headers[vSessionHeader] = vsession
	}

	// Step 4: probe server info, version and tenancy.
	infoResp, err := s.do(ctx, http.MethodGet, serverInfoPath, requestOptions{}, s.headers)
	if err != nil {
		return newTransportError(err)
	}
	info, err := DataObj[models.ServerInfo](infoResp)
	if err != nil {
		return err
	}
	s.serverInfo = info
	s.version = ParseVersion(info.PlatformVersion)
	s.sessionType = determineSessionType(info)
	s.loginType = s.sessionType
	s.state = stateOperative

	if info.UserMode == models.ModeTenant && s.subdomain != "" {
		return newInvalidOperationError(
			"subdomain " + s.subdomain + " passed to tenant session, cannot switch to tenant from tenant user mode")
	}

	s.logger.Info("logged in",
		"server", s.baseURL.Host,
		"username", s.username,
		"version", s.version.String(),
		"sessionType", string(s.sessionType))
	return nil
}

// ensureRelogin refreshes the session once per observed generation. Callers
// that detected expiry concurrently block here and find the session already
// refreshed; they then replay against the new generation.
func (s *Session) ensureRelogin(ctx context.Context, observedGeneration int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reloginEnable {
		return &Error{Code: CodeSessionExpired, Message: "session expired and relogin is disabled"}
	}
	if s.generation != observedGeneration {
		return nil
	}
	metrics.Relogins.Inc()
	if err := s.loginLocked(ctx); err != nil {
		return &Error{Code: CodeSessionExpiredAfterRelogin, Message: "relogin failed", Cause: err}
	}
	return nil
}

// expired reports whether a response indicates a dead session: a 403 on an
// endpoint the security policy does not protect, or an HTML login form
// where JSON was expected.
func expired(resp *Response) bool {
	return resp.StatusCode == http.StatusForbidden || containsLoginForm(resp)
}

func containsLoginForm(resp *Response) bool {
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "text/html") {
		return false
	}
	return strings.Contains(string(resp.Body), `<form name="login"`)
}

// waitServerReady polls until the controller accepts requests again,
// bounded by the session restart timeout. Used by the restart-imminent
// flow before the fresh login.
func (s *Session) waitServerReady(ctx context.Context) error {
	const pollInterval = 10 * time.Second
	deadline := time.Now().Add(s.restartTimeout)
	cfg := &resilience.RetryConfig{
		MaxAttempts: int(s.restartTimeout/pollInterval) + 1,
		BaseDelay:   pollInterval,
		MaxDelay:    pollInterval,
		Multiplier:  1.0,
	}
	err := resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) error {
		if time.Now().After(deadline) {
			return &Error{Code: CodeServerReadyTimeout, Message: "controller did not become ready in time"}
		}
		resp, err := s.do(ctx, http.MethodGet, serverReadyPath, requestOptions{timeout: pollInterval}, nil)
		if err != nil {
			return newTransportError(err)
		}
		if resp.StatusCode != http.StatusOK {
			return &Error{Code: CodeServerError, Message: "controller not ready", Status: resp.StatusCode}
		}
		ready, err := parseServerReady(resp)
		if err != nil {
			return err
		}
		if !ready {
			return &Error{Code: CodeServerError, Message: "controller reports not ready"}
		}
		return nil
	})
	if err != nil {
		if IsCode(err, CodeServerReadyTimeout) {
			return err
		}
		return &Error{Code: CodeServerReadyTimeout, Message: "controller did not become ready in time", Cause: err}
	}
	return nil
}

func parseServerReady(resp *Response) (bool, error) {
	var v models.ServerReady
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		return false, newParseError("cannot decode server ready answer", err)
	}
	return v.IsServerReady, nil
}
