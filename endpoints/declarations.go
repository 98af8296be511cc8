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

package endpoints

import "net/http"

// Client endpoints.
var (
	ServerInfo  = Endpoint{Method: http.MethodGet, Path: "/dataservice/client/server"}
	ServerReady = Endpoint{Method: http.MethodGet, Path: "/dataservice/client/server/ready"}
	About       = Endpoint{Method: http.MethodGet, Path: "/dataservice/client/about"}
	Token       = Endpoint{Method: http.MethodGet, Path: "/dataservice/client/token"}
)

// Monitoring endpoints.
var (
	Devices     = Endpoint{Method: http.MethodGet, Path: "/dataservice/device"}
	Alarms      = Endpoint{Method: http.MethodGet, Path: "/dataservice/alarms"}
	ActiveUsers = Endpoint{Method: http.MethodGet, Path: "/dataservice/admin/user/activeSessions"}
)

// Configuration (template) endpoints.
var (
	FeatureTemplates      = Endpoint{Method: http.MethodGet, Path: "/dataservice/template/feature"}
	FeatureTemplateSchema = Endpoint{Method: http.MethodGet, Path: "/dataservice/template/feature/types/definition/{type}/{version}"}
	CreateFeatureTemplate = Endpoint{Method: http.MethodPost, Path: "/dataservice/template/feature"}
	DeleteFeatureTemplate = Endpoint{Method: http.MethodDelete, Path: "/dataservice/template/feature/{templateId}"}
	DeviceTemplates       = Endpoint{Method: http.MethodGet, Path: "/dataservice/template/device"}
	CreateDeviceTemplate  = Endpoint{Method: http.MethodPost, Path: "/dataservice/template/device/feature"}
	DeleteDeviceTemplate  = Endpoint{Method: http.MethodDelete, Path: "/dataservice/template/device/{templateId}"}
	AttachDeviceTemplate  = Endpoint{Method: http.MethodPost, Path: "/dataservice/template/device/config/attachfeature"}
	TemplateInput         = Endpoint{Method: http.MethodPost, Path: "/dataservice/template/device/config/input"}
)

// Tenant management endpoints.
var (
	Tenants        = Endpoint{Method: http.MethodGet, Path: "/dataservice/tenant"}
	CreateVSession = Endpoint{Method: http.MethodPost, Path: "/dataservice/tenant/{tenantId}/vsessionid"}
	DeleteTenants  = Endpoint{Method: http.MethodDelete, Path: "/dataservice/tenant/bulk/async", MinVersion: "20.4"}
)

// Task status endpoints.
var (
	ActionStatus = Endpoint{Method: http.MethodGet, Path: "/dataservice/device/action/status/{taskId}"}
	RunningTasks = Endpoint{Method: http.MethodGet, Path: "/dataservice/device/action/status/tasks"}
)

// Software repository endpoints.
var (
	SoftwareImages  = Endpoint{Method: http.MethodGet, Path: "/dataservice/device/action/software/images"}
	UploadSoftware  = Endpoint{Method: http.MethodPost, Path: "/dataservice/device/action/software/package"}
	DeleteSoftware  = Endpoint{Method: http.MethodDelete, Path: "/dataservice/device/action/software/{versionId}"}
	InstallSoftware = Endpoint{Method: http.MethodPost, Path: "/dataservice/device/action/install"}
	ActivateImage   = Endpoint{Method: http.MethodPost, Path: "/dataservice/device/action/changepartition"}
)

// Tenant backup endpoints. The export/download flow arrived with 20.6.
var (
	ExportTenantBackup   = Endpoint{Method: http.MethodGet, Path: "/dataservice/tenantbackup/export", MinVersion: "20.6"}
	ListTenantBackups    = Endpoint{Method: http.MethodGet, Path: "/dataservice/tenantbackup/list", MinVersion: "20.6"}
	DownloadTenantBackup = Endpoint{Method: http.MethodGet, Path: "/dataservice/tenantbackup/download/{fileName}", MinVersion: "20.6"}
	DeleteTenantBackup   = Endpoint{Method: http.MethodDelete, Path: "/dataservice/tenantbackup/delete", MinVersion: "20.6"}
)
