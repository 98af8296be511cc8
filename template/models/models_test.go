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

package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/template"
	"github.com/wanctl/manager-go/template/models"
)

func emitObject(t *testing.T, model any) map[string]json.RawMessage {
	t.Helper()
	out, err := template.Emit(model)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &payload))
	return payload
}

func TestCiscoSystemDefaultEmission(t *testing.T) {
	payload := emitObject(t, models.DefaultCiscoSystem())

	assert.JSONEq(t,
		`{"vipObjectType":"object","vipType":"variableName","vipValue":"","vipVariableName":"system_host_name"}`,
		string(payload["host-name"]))
	assert.JSONEq(t,
		`{"vipObjectType":"object","vipType":"variableName","vipValue":"","vipVariableName":"system_system_ip"}`,
		string(payload["system-ip"]))
	assert.JSONEq(t,
		`{"vipObjectType":"object","vipType":"variableName","vipValue":"","vipVariableName":"system_site_id"}`,
		string(payload["site-id"]))

	// Every other field carries a server-side default and must be omitted
	// when unset.
	assert.NotContains(t, payload, "clock")
	assert.NotContains(t, payload, "gps-location")
	assert.NotContains(t, payload, "tracker")
	assert.NotContains(t, payload, "console-baud-rate")
}

func TestCiscoSystemFullEmission(t *testing.T) {
	m := models.DefaultCiscoSystem()
	m.Timezone = template.Const("UTC")
	m.Latitude = template.Const("52.5")
	m.Longitude = template.Const("13.4")
	m.Trackers = []models.Tracker{{
		Name:       template.Const("dc-probe"),
		EndpointIP: template.Const("10.0.0.1"),
	}}

	out, err := template.Emit(m)
	require.NoError(t, err)
	raw := string(out)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &payload))

	assert.JSONEq(t,
		`{"timezone":{"vipObjectType":"object","vipType":"constant","vipValue":"UTC"}}`,
		string(payload["clock"]))
	assert.JSONEq(t,
		`{"latitude":{"vipObjectType":"object","vipType":"constant","vipValue":"52.5"},`+
			`"longitude":{"vipObjectType":"object","vipType":"constant","vipValue":"13.4"}}`,
		string(payload["gps-location"]))
	assert.JSONEq(t,
		`{"vipObjectType":"tree","vipType":"constant","vipValue":[`+
			`{"name":{"vipObjectType":"object","vipType":"constant","vipValue":"dc-probe"},`+
			`"endpoint-ip":{"vipObjectType":"object","vipType":"constant","vipValue":"10.0.0.1"}}],`+
			`"vipPrimaryKey":["name"]}`,
		string(payload["tracker"]))

	// The primary key leads its tracker element.
	assert.Less(t, strings.Index(raw, `"name"`), strings.Index(raw, `"endpoint-ip"`))
}

func TestCiscoLoggingEmission(t *testing.T) {
	m := &models.CiscoLogging{
		DiskEnable: template.Const(true),
		DiskSize:   template.Const(10),
		Servers: []models.SyslogServer{{
			Name:        template.Const("syslog.example.com"),
			VPN:         template.Const(0),
			EnableTLS:   template.Const(true),
			ProfileName: template.Const("corp-tls"),
		}},
	}
	payload := emitObject(t, m)

	assert.JSONEq(t,
		`{"enable":{"vipObjectType":"object","vipType":"constant","vipValue":true},`+
			`"file":{"size":{"vipObjectType":"object","vipType":"constant","vipValue":10}}}`,
		string(payload["disk"]))
	assert.JSONEq(t,
		`{"vipObjectType":"tree","vipType":"constant","vipValue":[`+
			`{"name":{"vipObjectType":"object","vipType":"constant","vipValue":"syslog.example.com"},`+
			`"vpn":{"vipObjectType":"object","vipType":"constant","vipValue":0},`+
			`"enable-tls":{"vipObjectType":"object","vipType":"constant","vipValue":true},`+
			`"tls-properties":{"profile":{"vipObjectType":"object","vipType":"constant","vipValue":"corp-tls"}}}],`+
			`"vipPrimaryKey":["name"]}`,
		string(payload["server"]))

	assert.NotContains(t, payload, "tls-profile")
	assert.NotContains(t, payload, "ipv6-server")
}
