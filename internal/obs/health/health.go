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

// Package health runs reachability checks against the controller before a
// session is attempted. The CLI status command is its main consumer.
package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// Check is a single health check function.
type Check func(ctx context.Context) error

// CheckResult is the outcome of one check run.
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Checker runs a set of named health checks and caches their results.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Check
	cache  map[string]*CheckResult
	ttl    time.Duration
}

// NewChecker creates an empty checker with a 30 second result cache.
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
		cache:  make(map[string]*CheckResult),
		ttl:    30 * time.Second,
	}
}

// RegisterCheck registers a health check under a name.
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RunCheck executes one check, serving a cached result when fresh.
func (c *Checker) RunCheck(ctx context.Context, name string) *CheckResult {
	c.mu.RLock()
	check, exists := c.checks[name]
	if !exists {
		c.mu.RUnlock()
		return &CheckResult{
			Name:      name,
			Status:    StatusUnknown,
			Message:   "check not found",
			Timestamp: time.Now(),
		}
	}
	if cached, ok := c.cache[name]; ok && time.Since(cached.Timestamp) < c.ttl {
		c.mu.RUnlock()
		return cached
	}
	c.mu.RUnlock()

	start := time.Now()
	err := check(ctx)
	result := &CheckResult{
		Name:      name,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	} else {
		result.Status = StatusHealthy
	}

	c.mu.Lock()
	c.cache[name] = result
	c.mu.Unlock()
	return result
}

// RunAllChecks executes every registered check.
func (c *Checker) RunAllChecks(ctx context.Context) map[string]*CheckResult {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	c.mu.RUnlock()

	results := make(map[string]*CheckResult, len(names))
	for _, name := range names {
		results[name] = c.RunCheck(ctx, name)
	}
	return results
}

// IsHealthy reports whether every check passes.
func (c *Checker) IsHealthy(ctx context.Context) bool {
	for _, result := range c.RunAllChecks(ctx) {
		if result.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// TCPCheck verifies TCP connectivity to the controller host.
func TCPCheck(addr string) Check {
	return func(ctx context.Context) error {
		conn, err := (&net.Dialer{Timeout: 5 * time.Second}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		conn.Close() //nolint:errcheck
		return nil
	}
}

// HTTPCheck verifies an HTTP endpoint answers without a server error.
// Controllers commonly run self-signed certificates, so verification is
// skipped here; the check establishes reachability, not trust.
func HTTPCheck(url string) Check {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		client := &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to make request to %s: %w", url, err)
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode >= 500 {
			return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
		}
		return nil
	}
}
