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

	"github.com/wanctl/manager-go/models"
)

const vSessionHeader = "VSessionId"

const (
	tenantListPath = "/dataservice/tenant"
)

// SwitchToTenant scopes a provider session to one tenant. Every subsequent
// request carries the tenant session header until SwitchBackToProvider.
func (s *Session) SwitchToTenant(ctx context.Context, subdomain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginType != SessionTypeProvider {
		return newInvalidOperationError(
			"only provider sessions can switch to a tenant, current session type is " + string(s.sessionType))
	}
	tenantID, err := s.lookupTenantIDLocked(ctx, subdomain)
	if err != nil {
		return err
	}
	vsession, err := s.createVSessionLocked(ctx, tenantID)
	if err != nil {
		return err
	}
	s.headers[vSessionHeader] = vsession
	s.sessionType = SessionTypeProviderAsTenant
	s.logger.Info("switched to tenant", "subdomain", subdomain, "tenantId", tenantID)
	return nil
}

// SwitchBackToProvider drops the tenant scope of a provider-as-tenant
// session.
func (s *Session) SwitchBackToProvider() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginType != SessionTypeProvider {
		return newInvalidOperationError(
			"only sessions created as provider can switch back, current session type is " + string(s.sessionType))
	}
	delete(s.headers, vSessionHeader)
	s.sessionType = SessionTypeProvider
	s.logger.Info("switched back to provider")
	return nil
}

// lookupTenantIDLocked resolves a tenant subdomain to its id via the tenant
// list. Callers hold the session mutex.
func (s *Session) lookupTenantIDLocked(ctx context.Context, subdomain string) (string, error) {
	resp, err := s.do(ctx, http.MethodGet, tenantListPath, requestOptions{}, s.headers)
	if err != nil {
		return "", newTransportError(err)
	}
	if resp.StatusCode >= 400 {
		return "", classify(resp)
	}
	tenants, err := DataSeq[models.Tenant](resp)
	if err != nil {
		return "", err
	}
	for _, t := range tenants {
		if t.Subdomain == subdomain {
			return t.TenantID, nil
		}
	}
	return "", &Error{
		Code:    CodeTenantSubdomainNotFound,
		Message: "tenant with subdomain " + subdomain + " not found",
	}
}

// createVSessionLocked obtains the virtual session id scoping requests to a
// tenant. Callers hold the session mutex.
func (s *Session) createVSessionLocked(ctx context.Context, tenantID string) (string, error) {
	resp, err := s.do(ctx, http.MethodPost, tenantListPath+"/"+tenantID+"/vsessionid", requestOptions{}, s.headers)
	if err != nil {
		return "", newTransportError(err)
	}
	if resp.StatusCode >= 400 {
		return "", classify(resp)
	}
	var v models.VSession
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		return "", newParseError("cannot decode vsession answer", err)
	}
	if v.VSessionID == "" {
		return "", newParseError("vsession answer carries no VSessionId", nil)
	}
	return v.VSessionID, nil
}
