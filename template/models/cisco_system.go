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

// Package models carries typed feature-template payloads. Each struct maps
// to one controller template type; the vmanage tags drive the emission in
// the parent template package.
package models

import "github.com/wanctl/manager-go/template"

// CiscoSystem is the cisco_system feature template: hostname, identity and
// basic system settings of a device.
type CiscoSystem struct {
	HostName        *template.Value `vmanage:"key=host-name"`
	SystemIP        *template.Value `vmanage:"key=system-ip"`
	SiteID          *template.Value `vmanage:"key=site-id"`
	Timezone        *template.Value `vmanage:"key=timezone,path=clock,default"`
	Description     *template.Value `vmanage:"key=description,default"`
	Location        *template.Value `vmanage:"key=location,default"`
	ConsoleBaudRate *template.Value `vmanage:"key=console-baud-rate,default"`
	Latitude        *template.Value `vmanage:"key=latitude,path=gps-location,default"`
	Longitude       *template.Value `vmanage:"key=longitude,path=gps-location,default"`
	PortOffset      *template.Value `vmanage:"key=port-offset,default"`
	PortHop         *template.Value `vmanage:"key=port-hop,default"`

	Trackers []Tracker `vmanage:"key=tracker,object=tree,primary=name,default"`
}

// TemplateType implements template.Model.
func (CiscoSystem) TemplateType() string { return "cisco_system" }

// Tracker is one endpoint tracker entry of a cisco_system template.
type Tracker struct {
	Name        *template.Value `vmanage:"key=name"`
	EndpointIP  *template.Value `vmanage:"key=endpoint-ip,default"`
	Threshold   *template.Value `vmanage:"key=threshold,default"`
	Interval    *template.Value `vmanage:"key=interval,default"`
	Multiplier  *template.Value `vmanage:"key=multiplier,default"`
	TrackerType *template.Value `vmanage:"key=type,default"`
}

// DefaultCiscoSystem builds a model with the conventional device variables
// for the per-device identity fields.
func DefaultCiscoSystem() *CiscoSystem {
	return &CiscoSystem{
		HostName: template.Variable("system_host_name"),
		SystemIP: template.Variable("system_system_ip"),
		SiteID:   template.Variable("system_site_id"),
	}
}
