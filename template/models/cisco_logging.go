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

import "github.com/wanctl/manager-go/template"

// CiscoLogging is the cisco_logging feature template: local disk logging
// plus remote syslog servers.
type CiscoLogging struct {
	DiskEnable  *template.Value `vmanage:"key=enable,path=disk,default"`
	DiskSize    *template.Value `vmanage:"key=size,path=disk.file,default"`
	DiskRotate  *template.Value `vmanage:"key=rotate,path=disk.file,default"`
	TLSProfiles []TLSProfile    `vmanage:"key=tls-profile,object=tree,primary=profile,default"`
	Servers     []SyslogServer  `vmanage:"key=server,object=tree,primary=name,default"`
	IPv6Servers []SyslogServer  `vmanage:"key=ipv6-server,object=tree,primary=name,default"`
}

// TemplateType implements template.Model.
func (CiscoLogging) TemplateType() string { return "cisco_logging" }

// SyslogServer is one remote syslog destination.
type SyslogServer struct {
	Name          *template.Value `vmanage:"key=name"`
	VPN           *template.Value `vmanage:"key=vpn,default"`
	SourceIntf    *template.Value `vmanage:"key=source-interface,default"`
	Priority      *template.Value `vmanage:"key=priority,default"`
	EnableTLS     *template.Value `vmanage:"key=enable-tls,default"`
	CustomProfile *template.Value `vmanage:"key=custom-profile,path=tls-properties,default"`
	ProfileName   *template.Value `vmanage:"key=profile,path=tls-properties,default"`
}

// TLSProfile is one TLS profile usable by syslog servers.
type TLSProfile struct {
	Profile      *template.Value `vmanage:"key=profile"`
	TLSVersion   *template.Value `vmanage:"key=tls-version,default"`
	CipherSuites *template.Value `vmanage:"key=ciphersuite-list,default"`
}
