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

// Package managerfake runs an in-process controller double for tests. It
// speaks just enough of the management API for the client to log in, poll
// tasks, manage templates and move files, and it can expire sessions on
// demand to exercise the relogin path.
package managerfake

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

const loginFormBody = `<html><body><form name="login" action="/j_security_check"></form></body></html>`

// ServerInfo mirrors the answer of /dataservice/client/server.
type ServerInfo struct {
	PlatformVersion string `json:"platformVersion"`
	TenancyMode     string `json:"tenancyMode"`
	UserMode        string `json:"userMode"`
	ViewMode        string `json:"viewMode"`
}

// Tenant is one entry of the fake's tenant list.
type Tenant struct {
	TenantID  string `json:"tenantId"`
	Name      string `json:"name"`
	SubDomain string `json:"subDomain"`
}

// Controller is the fake. All exported mutators are safe for concurrent
// use with in-flight requests.
type Controller struct {
	Router *mux.Router

	mu         sync.Mutex
	username   string
	password   string
	info       ServerInfo
	sessions   map[string]bool
	tokens     map[string]bool
	tenants    []Tenant
	ready      bool
	loginCount int

	// taskScripts maps a task id to the bodies served by consecutive
	// status polls; the last entry repeats once the script runs out.
	taskScripts map[string][]string

	// canned bodies served verbatim for specific method+path pairs.
	canned map[string]cannedAnswer

	server *httptest.Server
}

type cannedAnswer struct {
	status      int
	contentType string
	body        []byte
}

// Option configures the fake at construction.
type Option func(*Controller)

// WithCredentials sets the accepted login.
func WithCredentials(username, password string) Option {
	return func(c *Controller) { c.username = username; c.password = password }
}

// WithServerInfo sets the identity probe answer.
func WithServerInfo(info ServerInfo) Option {
	return func(c *Controller) { c.info = info }
}

// WithTenants seeds the tenant list.
func WithTenants(tenants ...Tenant) Option {
	return func(c *Controller) { c.tenants = tenants }
}

// New starts the fake on an ephemeral TLS-less port.
func New(opts ...Option) *Controller {
	c := &Controller{
		Router:   mux.NewRouter(),
		username: "admin",
		password: "admin",
		info: ServerInfo{
			PlatformVersion: "20.12.1",
			TenancyMode:     "SingleTenant",
			UserMode:        "tenant",
			ViewMode:        "tenant",
		},
		sessions:    map[string]bool{},
		tokens:      map[string]bool{},
		taskScripts: map[string][]string{},
		canned:      map[string]cannedAnswer{},
		ready:       true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.routes()
	c.server = httptest.NewServer(c.Router)
	return c
}

// URL returns the fake's base URL.
func (c *Controller) URL() string {
	return c.server.URL
}

// Close shuts the fake down.
func (c *Controller) Close() {
	c.server.Close()
}

// SetCredentials changes the accepted login at runtime, which combined
// with ExpireSessions forces the next relogin attempt to fail.
func (c *Controller) SetCredentials(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
	c.password = password
}

// ExpireSessions invalidates every session cookie. The next API call made
// with an old cookie is answered with the HTML login form.
func (c *Controller) ExpireSessions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = map[string]bool{}
}

// LoginCount returns how many successful security checks happened.
func (c *Controller) LoginCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCount
}

// SetReady flips the server-ready answer.
func (c *Controller) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// ScriptTask registers the status bodies served for one task id, in poll
// order. Each body must be a full JSON answer, e.g.
// {"data":[{"statusId":"success", ...}]}.
func (c *Controller) ScriptTask(taskID string, bodies ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskScripts[taskID] = bodies
}

// Handle registers a canned JSON answer for an authenticated route.
func (c *Controller) Handle(method, path string, status int, body string) {
	c.mu.Lock()
	c.canned[method+" "+path] = cannedAnswer{status: status, contentType: "application/json", body: []byte(body)}
	c.mu.Unlock()
	c.Router.HandleFunc(path, c.authenticated(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		answer := c.canned[r.Method+" "+path]
		c.mu.Unlock()
		w.Header().Set("Content-Type", answer.contentType)
		w.WriteHeader(answer.status)
		w.Write(answer.body) //nolint:errcheck
	})).Methods(method)
}

// HandleFunc registers a custom handler behind the session check, for
// tests that need to inspect the request.
func (c *Controller) HandleFunc(method, path string, handler http.HandlerFunc) {
	c.Router.HandleFunc(path, c.authenticated(handler)).Methods(method)
}

func (c *Controller) routes() {
	c.Router.HandleFunc("/j_security_check", c.handleSecurityCheck).Methods(http.MethodPost)
	c.Router.HandleFunc("/dataservice/client/token", c.authenticated(c.handleToken)).Methods(http.MethodGet)
	c.Router.HandleFunc("/dataservice/client/server", c.authenticated(c.handleServerInfo)).Methods(http.MethodGet)
	c.Router.HandleFunc("/dataservice/client/server/ready", c.handleServerReady).Methods(http.MethodGet)
	c.Router.HandleFunc("/dataservice/tenant", c.authenticated(c.handleTenants)).Methods(http.MethodGet)
	c.Router.HandleFunc("/dataservice/tenant/{tenantId}/vsessionid", c.authenticated(c.handleVSession)).Methods(http.MethodPost)
	c.Router.HandleFunc("/dataservice/device/action/status/{taskId}", c.authenticated(c.handleTaskStatus)).Methods(http.MethodGet)
	c.Router.HandleFunc("/logout", c.handleLogout).Methods(http.MethodGet, http.MethodPost)
}

// authenticated wraps a handler with the session cookie check. Stale or
// missing cookies get the login form, the signal the client treats as an
// expired session.
func (c *Controller) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.validSession(r) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, loginFormBody) //nolint:errcheck
			return
		}
		next(w, r)
	}
}

func (c *Controller) validSession(r *http.Request) bool {
	cookie, err := r.Cookie("JSESSIONID")
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[cookie.Value]
}

func (c *Controller) handleSecurityCheck(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	ok := r.PostFormValue("j_username") == c.username && r.PostFormValue("j_password") == c.password
	c.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, loginFormBody) //nolint:errcheck
		return
	}
	session := randomHex()
	c.mu.Lock()
	c.sessions[session] = true
	c.loginCount++
	c.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: session, Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (c *Controller) handleToken(w http.ResponseWriter, _ *http.Request) {
	token := randomHex()
	c.mu.Lock()
	c.tokens[token] = true
	c.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, token) //nolint:errcheck
}

func (c *Controller) handleServerInfo(w http.ResponseWriter, _ *http.Request) {
	c.mu.Lock()
	info := c.info
	c.mu.Unlock()
	writeJSON(w, map[string]any{"data": info})
}

func (c *Controller) handleServerReady(w http.ResponseWriter, _ *http.Request) {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"isServerReady": true})
}

func (c *Controller) handleTenants(w http.ResponseWriter, _ *http.Request) {
	c.mu.Lock()
	tenants := c.tenants
	c.mu.Unlock()
	writeJSON(w, map[string]any{"data": tenants})
}

func (c *Controller) handleVSession(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenantId"]
	c.mu.Lock()
	found := false
	for _, t := range c.tenants {
		if t.TenantID == tenantID {
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"VSessionId": "vsession-" + tenantID})
}

func (c *Controller) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	c.mu.Lock()
	script, ok := c.taskScripts[taskID]
	var body string
	if ok && len(script) > 0 {
		body = script[0]
		if len(script) > 1 {
			c.taskScripts[taskID] = script[1:]
		}
	}
	c.mu.Unlock()

	if !ok {
		writeJSONRaw(w, `{"data":[]}`)
		return
	}
	if strings.HasPrefix(body, "status:") {
		var status int
		fmt.Sscanf(body, "status:%d", &status) //nolint:errcheck
		w.WriteHeader(status)
		return
	}
	writeJSONRaw(w, body)
}

func (c *Controller) handleLogout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeJSONRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body) //nolint:errcheck
}

func randomHex() string {
	b := make([]byte, 16)
	rand.Read(b) //nolint:errcheck
	return hex.EncodeToString(b)
}
