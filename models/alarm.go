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

// Alarm severities reported by the monitoring endpoints.
const (
	SeverityCritical = "Critical"
	SeverityMajor    = "Major"
	SeverityMedium   = "Medium"
	SeverityMinor    = "Minor"
)

// Alarm is the record behind /dataservice/alarms.
type Alarm struct {
	RowID           int64  `json:"@rid,omitempty"`
	UUID            string `json:"uuid"`
	Type            string `json:"type"`
	Severity        string `json:"severity"`
	SeverityNumber  int    `json:"severity_number"`
	Component       string `json:"component"`
	Entry           string `json:"entry_time_str,omitempty"`
	EntryTime       int64  `json:"entry_time"`
	Message         string `json:"message"`
	HostName        string `json:"values.host-name,omitempty"`
	SystemIP        string `json:"values.system-ip,omitempty"`
	Acknowledged    bool   `json:"acknowledged"`
	Active          bool   `json:"active"`
	Viewed          bool   `json:"viewed"`
	EventName       string `json:"eventname"`
	RuleNameDisplay string `json:"rule_name_display"`
}
