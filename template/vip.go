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

// Option types (the vipType discriminator).
const (
	TypeConstant     = "constant"
	TypeVariable     = "variable"
	TypeIgnore       = "ignore"
	TypeNotIgnore    = "notIgnore"
	TypeVariableName = "variableName"
)

// Object types (the vipObjectType discriminator).
const (
	ObjectTypeObject   = "object"
	ObjectTypeTree     = "tree"
	ObjectTypeList     = "list"
	ObjectTypeNodeOnly = "node-only"
)

// VipVariable is the controller's leaf object wrapping every configuration
// value. Used when decoding template definitions fetched from the
// controller; emission builds the same shape through the field walker.
type VipVariable struct {
	ObjectType   string   `json:"vipObjectType"`
	Type         string   `json:"vipType"`
	Value        any      `json:"vipValue"`
	VariableName string   `json:"vipVariableName,omitempty"`
	PrimaryKey   []string `json:"vipPrimaryKey,omitempty"`
}

// Value is a leaf field value: a constant or a device variable reference.
// A nil *Value means the field is unset and falls under null handling.
type Value struct {
	constant any
	variable string
	vipType  string
}

// Const wraps a literal value.
func Const(v any) *Value {
	return &Value{constant: v}
}

// Variable references a device-specific variable by name. The emitted leaf
// carries an empty vipValue and the name under vipVariableName; the
// concrete value is supplied per device at attach time.
func Variable(name string) *Value {
	return &Value{variable: name}
}

// WithType overrides the option type tag of a constant (e.g. notIgnore).
func (v *Value) WithType(vipType string) *Value {
	out := *v
	out.vipType = vipType
	return &out
}

// IsVariable reports whether the value is a device variable reference.
func (v *Value) IsVariable() bool {
	return v != nil && v.variable != ""
}
