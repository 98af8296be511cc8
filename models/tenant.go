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

// Tenant is the record behind /dataservice/tenant.
type Tenant struct {
	TenantID         string `json:"tenantId"`
	Name             string `json:"name"`
	Description      string `json:"desc"`
	OrgName          string `json:"orgName"`
	Subdomain        string `json:"subDomain"`
	Flake            int64  `json:"flakeId"`
	SPMetadata       string `json:"spMetadata"`
	IdPMetadata      string `json:"idpMetadata"`
	WANEdgeForecast  string `json:"wanEdgeForecast,omitempty"`
	EdgeConnectorURL string `json:"edgeConnectorTunnelInterfaceName,omitempty"`
}

// VSession is the answer to POST /dataservice/tenant/{id}/vsessionid.
type VSession struct {
	VSessionID string `json:"VSessionId"`
}

// User is the record behind /dataservice/admin/user.
type User struct {
	Username    string   `json:"userName"`
	Password    string   `json:"password,omitempty"`
	Group       []string `json:"group"`
	Locale      string   `json:"locale,omitempty"`
	Description string   `json:"description,omitempty"`
	ResGroup    string   `json:"resGroupName,omitempty"`
}

// ActiveUser is the record behind /dataservice/admin/user/activeSessions.
type ActiveUser struct {
	Username   string `json:"userName"`
	UserMode   string `json:"userMode"`
	RemoteHost string `json:"remoteHost,omitempty"`
	CreateTime int64  `json:"createDateTime,omitempty"`
}
