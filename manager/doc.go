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

// Package manager implements the authenticated HTTP session against an
// SD-WAN management controller: the login handshake, CSRF and tenant
// headers, transparent relogin with a single replay, version probing and
// typed error classification. Higher level packages (task, template, api)
// build on Session.Request.
package manager
