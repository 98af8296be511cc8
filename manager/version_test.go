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

package manager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanctl/manager-go/manager"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "20.12.1", want: "20.12.1"},
		{name: "two part", input: "20.6", want: "20.6.0"},
		{name: "build suffix", input: "20.12.0-144-li", want: "20.12.0-144-li"},
		{name: "prefixed", input: "smart-li-20.13.999-3077", want: "20.13.999-3077"},
		{name: "whitespace", input: "  20.4.1 ", want: "20.4.1"},
		{name: "garbage", input: "not-a-version", want: "NullVersion"},
		{name: "empty", input: "", want: "NullVersion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manager.ParseVersion(tt.input).String())
		})
	}
}

func TestVersionCompare(t *testing.T) {
	v2012 := manager.ParseVersion("20.12.1")
	v206 := manager.ParseVersion("20.6.0")
	null := manager.ParseVersion("")

	assert.Equal(t, 1, v2012.Compare(v206))
	assert.Equal(t, -1, v206.Compare(v2012))
	assert.Equal(t, 0, v2012.Compare(manager.ParseVersion("20.12.1-999")), "build must not order")

	assert.Equal(t, -1, null.Compare(v206), "null is lower than everything")
	assert.Equal(t, 0, null.Compare(manager.ParseVersion("nope")))
	assert.True(t, null.IsNull())
}

func TestVersionAtLeast(t *testing.T) {
	v := manager.ParseVersion("20.12.1")
	assert.True(t, v.AtLeast("20.12"))
	assert.True(t, v.AtLeast("20.6"))
	assert.False(t, v.AtLeast("20.13"))
	assert.False(t, v.AtLeast("garbage"), "malformed gate closes")
	assert.False(t, manager.Version{}.AtLeast("20.6"), "null version gates closed")
}
