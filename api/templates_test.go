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

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/api"
	"github.com/wanctl/manager-go/internal/managerfake"
	"github.com/wanctl/manager-go/template"
)

type loopbackModel struct {
	InterfaceName *template.Value `vmanage:"key=if-name,path=interface"`
	Description   *template.Value `vmanage:"key=description,default"`
}

func (loopbackModel) TemplateType() string { return "cisco_loopback" }

func TestTemplatesGetNotFound(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/template/feature", http.StatusOK, `{"data":[]}`)

	session := newSession(t, fake)
	_, err := api.NewTemplates(session).Get(context.Background(), "missing")
	var notFound *api.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestTemplatesDeleteAttached(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/template/feature", http.StatusOK,
		`{"data":[{"templateId":"tpl-1","templateName":"edge-system","devicesAttached":2}]}`)

	session := newSession(t, fake)
	err := api.NewTemplates(session).Delete(context.Background(), "edge-system")
	var attached *api.TemplateAttachedError
	require.ErrorAs(t, err, &attached)
	assert.Equal(t, "edge-system", attached.Name)
}

func TestTemplatesCreate(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/template/feature", http.StatusOK, `{"data":[]}`)
	fake.Handle(http.MethodGet, "/dataservice/template/feature/types/definition/cisco_loopback/15.0.0",
		http.StatusOK,
		`{"fields":[{"key":"if-name","dataPath":["interface"]},{"key":"description"}]}`)

	var uploaded map[string]json.RawMessage
	fake.HandleFunc(http.MethodPost, "/dataservice/template/feature",
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &uploaded) //nolint:errcheck
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"templateId":"tpl-new"}`)) //nolint:errcheck
		})

	session := newSession(t, fake)
	id, err := api.NewTemplates(session).Create(context.Background(), &template.Definition{
		Name:        "loopback0",
		Description: "management loopback",
		DeviceTypes: []string{"vedge-C8000V"},
		Model: &loopbackModel{
			InterfaceName: template.Const("Loopback0"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "tpl-new", id)

	require.NotNil(t, uploaded)
	assert.JSONEq(t, `"loopback0"`, string(uploaded["templateName"]))
	assert.JSONEq(t, `"cisco_loopback"`, string(uploaded["templateType"]))
	assert.JSONEq(t,
		`{"interface":{"if-name":{"vipObjectType":"object","vipType":"constant","vipValue":"Loopback0"}}}`,
		string(uploaded["templateDefinition"]))
}

func TestTemplatesCreateDuplicate(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/template/feature", http.StatusOK,
		`{"data":[{"templateId":"tpl-1","templateName":"loopback0"}]}`)

	session := newSession(t, fake)
	_, err := api.NewTemplates(session).Create(context.Background(), &template.Definition{
		Name:  "loopback0",
		Model: &loopbackModel{InterfaceName: template.Const("Loopback0")},
	})
	var exists *api.TemplateAlreadyExistsError
	require.ErrorAs(t, err, &exists)
}

func TestTemplatesCreateRejectsUnknownField(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/template/feature", http.StatusOK, `{"data":[]}`)
	// Schema without the description key: the model must be refused before
	// anything is uploaded.
	fake.Handle(http.MethodGet, "/dataservice/template/feature/types/definition/cisco_loopback/15.0.0",
		http.StatusOK, `{"fields":[{"key":"if-name","dataPath":["interface"]}]}`)

	session := newSession(t, fake)
	_, err := api.NewTemplates(session).Create(context.Background(), &template.Definition{
		Name: "loopback0",
		Model: &loopbackModel{
			InterfaceName: template.Const("Loopback0"),
			Description:   template.Const("mgmt"),
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}
