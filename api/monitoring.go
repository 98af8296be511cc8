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

// Package api composes sessions, endpoints and tasks into the operations
// operators actually run: monitoring reads, template lifecycle, software
// repository actions and tenant backups.
package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/wanctl/manager-go/endpoints"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/models"
)

// Monitoring exposes the read-only inventory and alarm endpoints.
type Monitoring struct {
	session *manager.Session
}

// NewMonitoring binds the monitoring API to a session.
func NewMonitoring(session *manager.Session) *Monitoring {
	return &Monitoring{session: session}
}

// Devices lists the device inventory.
func (m *Monitoring) Devices(ctx context.Context) ([]models.Device, error) {
	return endpoints.InvokeSeq[models.Device](ctx, m.session, endpoints.Devices, nil)
}

// Alarms lists alarms, newest first. A zero rowLimit fetches the
// controller default page.
func (m *Monitoring) Alarms(ctx context.Context, rowLimit int) ([]models.Alarm, error) {
	var opts []manager.RequestOption
	if rowLimit > 0 {
		params := url.Values{}
		params.Set("rowLimit", strconv.Itoa(rowLimit))
		opts = append(opts, manager.WithParams(params))
	}
	return endpoints.InvokeSeq[models.Alarm](ctx, m.session, endpoints.Alarms, nil, opts...)
}

// ActiveUsers lists the users with open controller sessions.
func (m *Monitoring) ActiveUsers(ctx context.Context) ([]models.ActiveUser, error) {
	return endpoints.InvokeSeq[models.ActiveUser](ctx, m.session, endpoints.ActiveUsers, nil)
}

// About fetches the controller build information.
func (m *Monitoring) About(ctx context.Context) (models.AboutInfo, error) {
	return endpoints.InvokeObj[models.AboutInfo](ctx, m.session, endpoints.About, nil)
}

// Tenants lists tenants; only meaningful on provider sessions.
func (m *Monitoring) Tenants(ctx context.Context) ([]models.Tenant, error) {
	return endpoints.InvokeSeq[models.Tenant](ctx, m.session, endpoints.Tenants, nil)
}
