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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/wanctl/manager-go/manager"
)

// SchemaField is one field description in a template type schema fetched
// from the controller.
type SchemaField struct {
	Key        string        `json:"key"`
	DataPath   []string      `json:"dataPath"`
	ObjectType string        `json:"objectType"`
	Children   []SchemaField `json:"children,omitempty"`
}

// Schema describes the fields a controller accepts for one template type.
// It is consulted to validate that a model's declared keys and paths match
// server expectations; emission itself is driven by the model's tags.
type Schema struct {
	TemplateType string        `json:"templateType"`
	Fields       []SchemaField `json:"fields"`
}

// FetchSchema retrieves the field schema of a template type.
func FetchSchema(ctx context.Context, session *manager.Session, templateType string) (*Schema, error) {
	resp, err := session.Request(ctx, http.MethodGet,
		"/dataservice/template/feature/types/definition/"+templateType+"/15.0.0")
	if err != nil {
		return nil, err
	}
	var schema Schema
	if err := json.Unmarshal(resp.Body, &schema); err != nil {
		return nil, fmt.Errorf("cannot decode template schema: %w", err)
	}
	if schema.TemplateType == "" {
		schema.TemplateType = templateType
	}
	return &schema, nil
}

// Validate checks a model struct against the schema: every declared field
// key and data path must exist in the schema. Fields the schema knows but
// the model omits are fine; the reverse is an error.
func (s *Schema) Validate(model any) error {
	known := map[string]bool{}
	collectKeys(s.Fields, nil, known)

	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return validateStruct(t, nil, known)
}

func validateStruct(t reflect.Type, prefix []string, known map[string]bool) error {
	descs, err := descriptors(t)
	if err != nil {
		return err
	}
	for _, d := range descs {
		full := append(append([]string{}, prefix...), d.dataPath...)
		id := schemaKey(full, d.key)
		if !known[id] {
			return fmt.Errorf("field %q (path %s) is not part of the template schema",
				d.key, strings.Join(full, "."))
		}
		if d.container {
			if err := validateStruct(d.elemType, append(full, d.key), known); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectKeys(fields []SchemaField, prefix []string, out map[string]bool) {
	for _, f := range fields {
		full := append(append([]string{}, prefix...), f.DataPath...)
		out[schemaKey(full, f.Key)] = true
		if len(f.Children) > 0 {
			collectKeys(f.Children, append(full, f.Key), out)
		}
	}
}

func schemaKey(path []string, key string) string {
	return strings.Join(append(append([]string{}, path...), key), "/")
}
