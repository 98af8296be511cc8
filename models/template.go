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

package models

// TemplateInfo is the summary record behind
// /dataservice/template/feature (and .../template/device).
type TemplateInfo struct {
	TemplateID       string   `json:"templateId"`
	Name             string   `json:"templateName"`
	Description      string   `json:"templateDescription"`
	Type             string   `json:"templateType"`
	DeviceType       []string `json:"deviceType"`
	MinVersion       string   `json:"templateMinVersion"`
	Definition       string   `json:"templateDefinition,omitempty"`
	FactoryDefault   bool     `json:"factoryDefault"`
	DevicesAttached  int      `json:"devicesAttached"`
	LastUpdatedBy    string   `json:"lastUpdatedBy"`
	LastUpdatedOn    int64    `json:"lastUpdatedOn"`
	ConfigType       string   `json:"configType,omitempty"`
	TemplateAttached int      `json:"templateAttached"`
	ResourceGroup    string   `json:"resourceGroup,omitempty"`
	DraftMode        string   `json:"draftMode,omitempty"`
}

// TemplateID is the creation answer carrying the new template id.
type TemplateID struct {
	TemplateID string `json:"templateId"`
}

// GeneralTemplate is one entry of a device template composition.
type GeneralTemplate struct {
	TemplateID   string            `json:"templateId"`
	TemplateType string            `json:"templateType"`
	SubTemplates []GeneralTemplate `json:"subTemplates,omitempty"`
}

// SoftwareImage is the record behind /dataservice/device/action/software/images.
type SoftwareImage struct {
	AvailableFiles    string   `json:"availableFiles"`
	VersionName       string   `json:"versionName"`
	VersionType       string   `json:"versionType"`
	VersionID         string   `json:"versionId"`
	ImageType         string   `json:"imageType,omitempty"`
	ControllerVersion string   `json:"controllerVersion,omitempty"`
	FileNameList      []string `json:"fileNameList,omitempty"`
}

// BackupFile is one entry of the tenant backup list.
type BackupFile struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size,omitempty"`
}
