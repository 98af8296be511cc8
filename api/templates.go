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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wanctl/manager-go/endpoints"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/models"
	"github.com/wanctl/manager-go/template"
)

// TemplateNotFoundError is returned when no template matches a name.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// TemplateAlreadyExistsError is returned when creating a template whose
// name is taken.
type TemplateAlreadyExistsError struct {
	Name string
}

func (e *TemplateAlreadyExistsError) Error() string {
	return fmt.Sprintf("template %q already exists", e.Name)
}

// TemplateAttachedError is returned when deleting a template that devices
// still use.
type TemplateAttachedError struct {
	Name string
}

func (e *TemplateAttachedError) Error() string {
	return fmt.Sprintf("template %q is attached to devices and cannot be deleted", e.Name)
}

// Templates drives the feature template lifecycle.
type Templates struct {
	session *manager.Session
}

// NewTemplates binds the template API to a session.
func NewTemplates(session *manager.Session) *Templates {
	return &Templates{session: session}
}

// List returns all feature templates.
func (t *Templates) List(ctx context.Context) ([]models.TemplateInfo, error) {
	return endpoints.InvokeSeq[models.TemplateInfo](ctx, t.session, endpoints.FeatureTemplates, nil)
}

// Get finds one feature template by name.
func (t *Templates) Get(ctx context.Context, name string) (models.TemplateInfo, error) {
	all, err := t.List(ctx)
	if err != nil {
		return models.TemplateInfo{}, err
	}
	for _, info := range all {
		if info.Name == name {
			return info, nil
		}
	}
	return models.TemplateInfo{}, &TemplateNotFoundError{Name: name}
}

// Create validates the definition against the controller schema, emits the
// vip-tagged payload and uploads it. It returns the new template id.
func (t *Templates) Create(ctx context.Context, def *template.Definition) (string, error) {
	if _, err := t.Get(ctx, def.Name); err == nil {
		return "", &TemplateAlreadyExistsError{Name: def.Name}
	} else if _, ok := err.(*TemplateNotFoundError); !ok {
		return "", err
	}

	schema, err := template.FetchSchema(ctx, t.session, def.Model.TemplateType())
	if err != nil {
		return "", err
	}
	body, err := def.MarshalPayload(schema)
	if err != nil {
		return "", err
	}
	resp, err := endpoints.Invoke(ctx, t.session, endpoints.CreateFeatureTemplate, nil,
		manager.WithBody(body, "application/json"))
	if err != nil {
		return "", err
	}
	var answer models.TemplateID
	if err := json.Unmarshal(resp.Body, &answer); err != nil || answer.TemplateID == "" {
		return "", fmt.Errorf("template creation answer carries no templateId")
	}
	t.session.Logger().Info("created feature template", "name", def.Name, "templateId", answer.TemplateID)
	return answer.TemplateID, nil
}

// Delete removes a feature template by name. Templates still attached to
// devices are refused by the controller and surface as
// TemplateAttachedError.
func (t *Templates) Delete(ctx context.Context, name string) error {
	info, err := t.Get(ctx, name)
	if err != nil {
		return err
	}
	if info.DevicesAttached > 0 {
		return &TemplateAttachedError{Name: name}
	}
	_, err = endpoints.Invoke(ctx, t.session, endpoints.DeleteFeatureTemplate, []string{info.TemplateID})
	if err != nil {
		if manager.IsCode(err, manager.CodeNotFound) {
			return &TemplateNotFoundError{Name: name}
		}
		if mgrErr, ok := err.(*manager.Error); ok &&
			strings.Contains(strings.ToLower(mgrErr.Details), "attached") {
			return &TemplateAttachedError{Name: name}
		}
		return err
	}
	return nil
}

// DeviceValues carries the per-device variable values of an attach call.
type DeviceValues struct {
	CSVDeviceID string            `json:"csv-deviceId"`
	CSVDeviceIP string            `json:"csv-deviceIP"`
	CSVHostName string            `json:"csv-host-name"`
	Variables   map[string]string `json:"-"`
}

// MarshalJSON flattens the variable map next to the csv identity fields,
// matching the controller's attach payload shape.
func (d DeviceValues) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(d.Variables)+3)
	flat["csv-deviceId"] = d.CSVDeviceID
	flat["csv-deviceIP"] = d.CSVDeviceIP
	flat["csv-host-name"] = d.CSVHostName
	for k, v := range d.Variables {
		flat[k] = v
	}
	return json.Marshal(flat)
}

// Attach binds a device template to devices, supplying each device's
// variable values, and returns the task driving the attachment.
func (t *Templates) Attach(ctx context.Context, templateID string, devices []DeviceValues) (string, error) {
	body := map[string]any{
		"deviceTemplateList": []map[string]any{{
			"templateId":     templateID,
			"device":         devices,
			"isEdited":       false,
			"isMasterEdited": false,
		}},
	}
	resp, err := endpoints.Invoke(ctx, t.session, endpoints.AttachDeviceTemplate, nil,
		manager.WithJSON(body))
	if err != nil {
		return "", err
	}
	var answer struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &answer); err != nil || answer.ID == "" {
		return "", fmt.Errorf("attach answer carries no task id")
	}
	return answer.ID, nil
}
