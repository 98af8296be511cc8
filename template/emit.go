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
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// orderedMap is a JSON object that marshals its keys in insertion order.
// The controller accepts any order, but primary-key fields are emitted
// before the rest of a list element, and that guarantee needs a stable
// encoding.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: map[string]any{}}
}

func (m *orderedMap) set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap) get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Emit renders a template model struct into the controller's vip-tagged
// JSON definition. Each non-nil field becomes a VipVariable leaf nested
// under its data path; container fields recurse over their elements.
func Emit(model any) (json.RawMessage, error) {
	root, err := emitStruct(reflect.ValueOf(model))
	if err != nil {
		return nil, err
	}
	return json.Marshal(root)
}

func emitStruct(v reflect.Value) (*orderedMap, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("template model is nil")
		}
		v = v.Elem()
	}
	descs, err := descriptors(v.Type())
	if err != nil {
		return nil, err
	}

	root := newOrderedMap()
	for _, d := range ordered(descs) {
		leaf, omit, err := emitField(v.Field(d.index), d)
		if err != nil {
			return nil, err
		}
		if omit {
			continue
		}
		parent, err := dig(root, d.dataPath)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", d.key, err)
		}
		parent.set(d.key, leaf)
	}
	return root, nil
}

// emitField renders one field. The omit result is true when null handling
// drops the key entirely.
func emitField(v reflect.Value, d fieldDesc) (any, bool, error) {
	if d.container {
		return emitContainer(v, d)
	}

	val := v.Interface().(*Value)
	if val == nil {
		if d.hasDefault {
			return nil, true, nil
		}
		m := newOrderedMap()
		m.set("vipObjectType", d.objectType)
		m.set("vipType", TypeIgnore)
		m.set("vipValue", []any{})
		return m, false, nil
	}

	m := newOrderedMap()
	m.set("vipObjectType", d.objectType)
	if val.IsVariable() {
		m.set("vipType", TypeVariableName)
		m.set("vipValue", "")
		m.set("vipVariableName", val.variable)
		return m, false, nil
	}
	vipType := TypeConstant
	if val.vipType != "" {
		vipType = val.vipType
	} else if d.vipType != "" {
		vipType = d.vipType
	}
	m.set("vipType", vipType)
	m.set("vipValue", val.constant)
	return m, false, nil
}

func emitContainer(v reflect.Value, d fieldDesc) (any, bool, error) {
	if v.IsNil() {
		if d.hasDefault {
			return nil, true, nil
		}
		m := newOrderedMap()
		m.set("vipObjectType", d.objectType)
		m.set("vipType", TypeIgnore)
		m.set("vipValue", []any{})
		return m, false, nil
	}

	childDescs, err := descriptors(d.elemType)
	if err != nil {
		return nil, false, err
	}

	elements := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elemValue := v.Index(i)
		element := newOrderedMap()
		for _, cd := range orderedForElement(childDescs, d) {
			leaf, omit, err := emitField(elemValue.Field(cd.index), cd)
			if err != nil {
				return nil, false, err
			}
			if omit {
				continue
			}
			parent, err := dig(element, cd.dataPath)
			if err != nil {
				return nil, false, fmt.Errorf("field %q: %w", cd.key, err)
			}
			parent.set(cd.key, leaf)
		}
		elements = append(elements, element)
	}

	m := newOrderedMap()
	m.set("vipObjectType", d.objectType)
	m.set("vipType", TypeConstant)
	m.set("vipValue", elements)
	if len(d.primaryKeys) > 0 {
		m.set("vipPrimaryKey", d.primaryKeys)
	}
	return m, false, nil
}

// dig walks a data path from root, creating nested objects on the way.
func dig(root *orderedMap, path []string) (*orderedMap, error) {
	current := root
	for _, step := range path {
		existing, ok := current.get(step)
		if !ok {
			next := newOrderedMap()
			current.set(step, next)
			current = next
			continue
		}
		next, ok := existing.(*orderedMap)
		if !ok {
			return nil, fmt.Errorf("data path step %q collides with a leaf", step)
		}
		current = next
	}
	return current, nil
}

// ordered returns descriptors in declaration order; list elements use
// orderedForElement instead.
func ordered(descs []fieldDesc) []fieldDesc {
	return descs
}

// orderedForElement sorts a list element's children so that the parent's
// primary keys come first, then its priority order, then declaration
// order. Elements themselves are never reordered.
func orderedForElement(descs []fieldDesc, parent fieldDesc) []fieldDesc {
	rank := func(d fieldDesc) int {
		for i, k := range parent.primaryKeys {
			if d.key == k {
				return i
			}
		}
		for i, k := range parent.priorityOrder {
			if d.key == k {
				return len(parent.primaryKeys) + i
			}
		}
		return len(parent.primaryKeys) + len(parent.priorityOrder) + d.index
	}
	out := make([]fieldDesc, len(descs))
	copy(out, descs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rank(out[j]) < rank(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
