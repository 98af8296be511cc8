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

package endpoints_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/endpoints"
	"github.com/wanctl/manager-go/internal/managerfake"
	"github.com/wanctl/manager-go/manager"
)

func TestHref(t *testing.T) {
	href, err := endpoints.CreateVSession.Href("t-1")
	require.NoError(t, err)
	assert.Equal(t, "/dataservice/tenant/t-1/vsessionid", href)

	href, err = endpoints.FeatureTemplateSchema.Href("cisco_system", "15.0.0")
	require.NoError(t, err)
	assert.Equal(t, "/dataservice/template/feature/types/definition/cisco_system/15.0.0", href)

	href, err = endpoints.Devices.Href()
	require.NoError(t, err)
	assert.Equal(t, "/dataservice/device", href)
}

func TestHrefArgumentCount(t *testing.T) {
	_, err := endpoints.CreateVSession.Href()
	require.Error(t, err)

	_, err = endpoints.CreateVSession.Href("t-1", "extra")
	require.Error(t, err)

	_, err = endpoints.Devices.Href("unexpected")
	require.Error(t, err)
}

func TestInvokeVersionGate(t *testing.T) {
	fake := managerfake.New(managerfake.WithServerInfo(managerfake.ServerInfo{
		PlatformVersion: "20.3.1",
		TenancyMode:     "SingleTenant",
		UserMode:        "tenant",
		ViewMode:        "tenant",
	}))
	defer fake.Close()

	session, err := manager.Connect(context.Background(), manager.Config{
		URL:      fake.URL(),
		Username: "admin",
		Password: "admin",
	})
	require.NoError(t, err)
	defer session.Close() //nolint:errcheck

	// The backup surface needs 20.6; the gate must trip before any traffic.
	_, err = endpoints.Invoke(context.Background(), session, endpoints.ListTenantBackups, nil)
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeAPIVersion))
}

func TestInvokeSeq(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/device", http.StatusOK,
		`{"data":[{"host-name":"edge-1"},{"host-name":"edge-2"}]}`)

	session, err := manager.Connect(context.Background(), manager.Config{
		URL:      fake.URL(),
		Username: "admin",
		Password: "admin",
	})
	require.NoError(t, err)
	defer session.Close() //nolint:errcheck

	type device struct {
		HostName string `json:"host-name"`
	}
	devices, err := endpoints.InvokeSeq[device](context.Background(), session, endpoints.Devices, nil)
	require.NoError(t, err)
	assert.Equal(t, []device{{HostName: "edge-1"}, {HostName: "edge-2"}}, devices)
}
