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

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitNestedDataPath(t *testing.T) {
	type dot1x struct {
		AsNum *Value `vmanage:"key=as-num,path=authentication.dot1x.default"`
	}
	out, err := Emit(&dot1x{AsNum: Const("12")})
	require.NoError(t, err)
	assert.Equal(t,
		`{"authentication":{"dot1x":{"default":{"as-num":{"vipObjectType":"object","vipType":"constant","vipValue":"12"}}}}}`,
		string(out))
}

func TestEmitDeviceVariable(t *testing.T) {
	type system struct {
		SystemIP *Value `vmanage:"key=system-ip"`
	}
	out, err := Emit(&system{SystemIP: Variable("system_system_ip")})
	require.NoError(t, err)
	assert.Equal(t,
		`{"system-ip":{"vipObjectType":"object","vipType":"variableName","vipValue":"","vipVariableName":"system_system_ip"}}`,
		string(out))
}

func TestEmitNullHandling(t *testing.T) {
	type model struct {
		WithDefault *Value `vmanage:"key=with-default,default"`
		NoDefault   *Value `vmanage:"key=no-default"`
	}
	out, err := Emit(&model{})
	require.NoError(t, err)
	assert.Equal(t,
		`{"no-default":{"vipObjectType":"object","vipType":"ignore","vipValue":[]}}`,
		string(out), "defaulted field omitted, undefaulted emitted as ignore")
}

func TestEmitVipTypeOverride(t *testing.T) {
	type model struct {
		Keep *Value `vmanage:"key=keep,vip=notIgnore"`
	}
	out, err := Emit(&model{Keep: Const(true)})
	require.NoError(t, err)
	assert.Equal(t,
		`{"keep":{"vipObjectType":"object","vipType":"notIgnore","vipValue":true}}`,
		string(out))
}

func TestEmitContainerWithPrimaryKeys(t *testing.T) {
	type server struct {
		Priority *Value `vmanage:"key=priority,default"`
		Name     *Value `vmanage:"key=name"`
	}
	type model struct {
		Servers []server `vmanage:"key=server,object=tree,primary=name"`
	}
	out, err := Emit(&model{Servers: []server{
		{Name: Const("syslog1"), Priority: Const("high")},
	}})
	require.NoError(t, err)
	// name is the primary key and must precede priority inside the element.
	assert.Equal(t,
		`{"server":{"vipObjectType":"tree","vipType":"constant","vipValue":[`+
			`{"name":{"vipObjectType":"object","vipType":"constant","vipValue":"syslog1"},`+
			`"priority":{"vipObjectType":"object","vipType":"constant","vipValue":"high"}}],`+
			`"vipPrimaryKey":["name"]}}`,
		string(out))
}

func TestEmitSiblingDataPathMerge(t *testing.T) {
	type model struct {
		Latitude  *Value `vmanage:"key=latitude,path=gps-location"`
		Longitude *Value `vmanage:"key=longitude,path=gps-location"`
	}
	out, err := Emit(&model{Latitude: Const("1.0"), Longitude: Const("2.0")})
	require.NoError(t, err)
	assert.Equal(t,
		`{"gps-location":{"latitude":{"vipObjectType":"object","vipType":"constant","vipValue":"1.0"},`+
			`"longitude":{"vipObjectType":"object","vipType":"constant","vipValue":"2.0"}}}`,
		string(out))
}

func TestEmitIsStable(t *testing.T) {
	type model struct {
		A *Value `vmanage:"key=a,path=x"`
		B *Value `vmanage:"key=b,path=x"`
		C *Value `vmanage:"key=c"`
	}
	m := &model{A: Const(1), B: Const("two"), C: Variable("c_var")}
	first, err := Emit(m)
	require.NoError(t, err)
	second, err := Emit(m)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestEmitRejectsBadFieldType(t *testing.T) {
	type model struct {
		Broken string `vmanage:"key=broken"`
	}
	_, err := Emit(&model{Broken: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither *template.Value nor a struct slice")
}

func TestSchemaValidate(t *testing.T) {
	schema := &Schema{
		TemplateType: "cisco_system",
		Fields: []SchemaField{
			{Key: "host-name"},
			{Key: "timezone", DataPath: []string{"clock"}},
		},
	}
	type known struct {
		HostName *Value `vmanage:"key=host-name"`
		Timezone *Value `vmanage:"key=timezone,path=clock,default"`
	}
	require.NoError(t, schema.Validate(&known{}))

	type unknown struct {
		HostName *Value `vmanage:"key=host-name"`
		Rogue    *Value `vmanage:"key=rogue"`
	}
	err := schema.Validate(&unknown{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rogue"`)
}
