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

// Package template turns typed feature-template models into the
// controller's vip-tagged JSON definitions. Model structs declare their
// wire layout through vmanage struct tags; Emit walks the tags and wraps
// every value in the VipVariable leaf format the controller expects.
package template

import (
	"encoding/json"
	"fmt"
)

// Model is implemented by feature template payload structs.
type Model interface {
	// TemplateType is the controller's type identifier, e.g. cisco_system.
	TemplateType() string
}

// Definition is a feature template ready for upload.
type Definition struct {
	Name        string
	Description string
	DeviceTypes []string
	MinVersion  string
	Model       Model

	// FactoryDefault marks read-only built-in templates; user templates
	// leave it false.
	FactoryDefault bool
}

// payload is the wire shape of POST /dataservice/template/feature.
type payload struct {
	Name           string          `json:"templateName"`
	Description    string          `json:"templateDescription"`
	Type           string          `json:"templateType"`
	DeviceTypes    []string        `json:"deviceType"`
	MinVersion     string          `json:"templateMinVersion"`
	FactoryDefault bool            `json:"factoryDefault"`
	Definition     json.RawMessage `json:"templateDefinition"`
}

// MarshalPayload emits the template model and wraps it into the creation
// request body. When schema is non-nil the model is validated against it
// first.
func (d *Definition) MarshalPayload(schema *Schema) ([]byte, error) {
	if d.Model == nil {
		return nil, fmt.Errorf("template %q has no model", d.Name)
	}
	if schema != nil {
		if err := schema.Validate(d.Model); err != nil {
			return nil, fmt.Errorf("template %q: %w", d.Name, err)
		}
	}
	definition, err := Emit(d.Model)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", d.Name, err)
	}
	minVersion := d.MinVersion
	if minVersion == "" {
		minVersion = "15.0.0"
	}
	return json.Marshal(payload{
		Name:           d.Name,
		Description:    d.Description,
		Type:           d.Model.TemplateType(),
		DeviceTypes:    d.DeviceTypes,
		MinVersion:     minVersion,
		FactoryDefault: d.FactoryDefault,
		Definition:     definition,
	})
}
