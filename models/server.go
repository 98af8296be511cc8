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

// Package models holds the plain typed records exchanged with the
// controller. Wire names are camelCase (with a few historic quirks such as
// "host-name"); the structs map them one-to-one via json tags.
package models

// TenancyMode values reported by the server info endpoint.
const (
	TenancyModeSingleTenant = "SingleTenant"
	TenancyModeMultiTenant  = "MultiTenant"
)

// UserMode / ViewMode values reported by the server info endpoint.
const (
	ModeProvider = "provider"
	ModeTenant   = "tenant"
)

// ServerInfo is the record behind /dataservice/client/server.
type ServerInfo struct {
	Server          string `json:"server"`
	PlatformVersion string `json:"platformVersion"`
	TenancyMode     string `json:"tenancyMode"`
	UserMode        string `json:"userMode"`
	ViewMode        string `json:"viewMode"`
	DeviceType      string `json:"deviceType"`
}

// AboutInfo is the record behind /dataservice/client/about.
type AboutInfo struct {
	Title              string `json:"title"`
	Version            string `json:"version"`
	ApplicationVersion string `json:"applicationVersion"`
	ApplicationServer  string `json:"applicationServer"`
	Copyright          string `json:"copyright"`
	Time               string `json:"time"`
	TimeZone           string `json:"timeZone"`
	Logo               string `json:"logo"`
}

// ServerReady is the record behind /dataservice/client/server/ready.
type ServerReady struct {
	IsServerReady bool `json:"isServerReady"`
}
