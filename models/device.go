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

// Personality of a device in the overlay.
const (
	PersonalityEdge      = "vedge"
	PersonalityManager   = "vmanage"
	PersonalitySmart     = "vsmart"
	PersonalityValidator = "vbond"
)

// Device is the inventory record behind /dataservice/device.
type Device struct {
	UUID              string   `json:"uuid"`
	DeviceID          string   `json:"deviceId"`
	SystemIP          string   `json:"system-ip"`
	HostName          string   `json:"host-name"`
	SiteID            string   `json:"site-id"`
	Reachability      string   `json:"reachability"`
	Personality       string   `json:"personality"`
	DeviceModel       string   `json:"device-model"`
	DeviceType        string   `json:"device-type"`
	Version           string   `json:"version"`
	ConnectedManagers []string `json:"connectedVManages"`
	Status            string   `json:"status"`
	State             string   `json:"state"`
	Timezone          string   `json:"timezone"`
	BoardSerial       string   `json:"board-serial"`
}

// WANEdgeForecast is only reported by controllers from version 20.6.
type WANEdgeForecast struct {
	Forecast string `json:"forecast"`
	Total    int    `json:"total"`
}
