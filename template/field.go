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
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// fieldDesc is the parsed metadata of one template struct field, declared
// through the vmanage struct tag:
//
//	HostName *Value `vmanage:"key=host-name,path=system.basic"`
//	Loggers  []Log  `vmanage:"key=logger,object=tree,primary=name"`
//
// Tag entries: key (target JSON name, defaults to the lowercased Go name),
// path (dot-separated parent keys), object (object/tree/list/node-only),
// vip (option type override), primary (semicolon-separated primary keys),
// order (semicolon-separated child keys to emit first), default (the field
// type has a server-side default, so an unset value is omitted instead of
// emitted as ignore).
type fieldDesc struct {
	index         int
	key           string
	dataPath      []string
	objectType    string
	vipType       string
	primaryKeys   []string
	priorityOrder []string
	hasDefault    bool
	container     bool
	elemType      reflect.Type
}

var descCache sync.Map // reflect.Type -> []fieldDesc

var valueType = reflect.TypeOf((*Value)(nil))

// descriptors returns the field table of a template struct type, built on
// first use and cached.
func descriptors(t reflect.Type) ([]fieldDesc, error) {
	if cached, ok := descCache.Load(t); ok {
		return cached.([]fieldDesc), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("template model must be a struct, got %s", t.Kind())
	}

	descs := make([]fieldDesc, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("vmanage")
		if ok && tag == "-" {
			continue
		}
		d := fieldDesc{
			index:      i,
			key:        strings.ToLower(f.Name),
			objectType: ObjectTypeObject,
		}
		if err := parseTag(tag, &d); err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
		}

		switch {
		case f.Type == valueType:
			// leaf
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Struct:
			d.container = true
			d.elemType = f.Type.Elem()
			if d.objectType == ObjectTypeObject {
				d.objectType = ObjectTypeTree
			}
		default:
			return nil, fmt.Errorf("field %s.%s: type %s is neither *template.Value nor a struct slice",
				t.Name(), f.Name, f.Type)
		}
		descs = append(descs, d)
	}

	descCache.Store(t, descs)
	return descs, nil
}

func parseTag(tag string, d *fieldDesc) error {
	if tag == "" {
		return nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "default" {
			d.hasDefault = true
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("malformed tag entry %q", part)
		}
		switch kv[0] {
		case "key":
			d.key = kv[1]
		case "path":
			d.dataPath = strings.Split(kv[1], ".")
		case "object":
			d.objectType = kv[1]
		case "vip":
			d.vipType = kv[1]
		case "primary":
			d.primaryKeys = strings.Split(kv[1], ";")
		case "order":
			d.priorityOrder = strings.Split(kv[1], ";")
		default:
			return fmt.Errorf("unknown tag entry %q", kv[0])
		}
	}
	return nil
}
