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

// Package config loads client configuration from a YAML profile file with
// environment overrides and hot reload on file changes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v2"
)

// Config holds everything the CLI and the session need.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Log        LogConfig        `yaml:"log"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Task       TaskConfig       `yaml:"task"`
}

// ControllerConfig describes the controller endpoint and credentials.
type ControllerConfig struct {
	URL       string `yaml:"url"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Subdomain string `yaml:"subdomain"`
	VerifyTLS bool   `yaml:"verifyTLS"`

	Timeout        time.Duration `yaml:"timeout"`
	RestartTimeout time.Duration `yaml:"restartTimeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Endpoint          string  `yaml:"endpoint"`
	SamplingRatio     float64 `yaml:"samplingRatio"`
	InsecureTransport bool    `yaml:"insecureTransport"`
}

// TaskConfig holds task polling defaults.
type TaskConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// DefaultConfig builds a configuration from environment variables.
func DefaultConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			URL:            getEnvWithDefault("MANAGER_URL", ""),
			Port:           getEnvIntWithDefault("MANAGER_PORT", 0),
			Username:       getEnvWithDefault("MANAGER_USERNAME", ""),
			Password:       getEnvWithDefault("MANAGER_PASSWORD", ""),
			Subdomain:      getEnvWithDefault("MANAGER_SUBDOMAIN", ""),
			VerifyTLS:      getEnvBoolWithDefault("MANAGER_VERIFY_TLS", false),
			Timeout:        getEnvDurationWithDefault("MANAGER_TIMEOUT", 30*time.Second),
			RestartTimeout: getEnvDurationWithDefault("MANAGER_RESTART_TIMEOUT", 20*time.Minute),
		},
		Log: LogConfig{
			Level:       getEnvWithDefault("LOG_LEVEL", "info"),
			Format:      getEnvWithDefault("LOG_FORMAT", "console"),
			Development: getEnvBoolWithDefault("LOG_DEVELOPMENT", false),
		},
		Tracing: TracingConfig{
			Enabled:           getEnvBoolWithDefault("MANAGER_TRACING_ENABLED", false),
			Endpoint:          getEnvWithDefault("MANAGER_TRACING_ENDPOINT", ""),
			SamplingRatio:     getEnvFloatWithDefault("MANAGER_TRACING_SAMPLING_RATIO", 0.1),
			InsecureTransport: getEnvBoolWithDefault("MANAGER_TRACING_INSECURE", true),
		},
		Task: TaskConfig{
			Timeout:      getEnvDurationWithDefault("MANAGER_TASK_TIMEOUT", 300*time.Second),
			PollInterval: getEnvDurationWithDefault("MANAGER_TASK_POLL_INTERVAL", 5*time.Second),
		},
	}
}

// Manager serves the current configuration and reloads it when the profile
// file changes on disk.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	watchers []chan *Config
	watcher  *fsnotify.Watcher
	file     string
}

// NewManager loads the profile file (when given) over the environment
// defaults and starts watching it for changes.
func NewManager(configFile string) (*Manager, error) {
	config := DefaultConfig()
	if configFile != "" {
		if err := loadFromFile(configFile, config); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	m := &Manager{
		config:   config,
		watchers: make([]chan *Config, 0),
		file:     configFile,
	}
	if configFile != "" {
		if err := m.setupFileWatcher(); err != nil {
			// The loaded config is still usable without hot reload.
			fmt.Fprintf(os.Stderr, "warning: failed to watch config file: %v\n", err)
		}
	}
	return m, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Watch returns a channel receiving the current configuration and every
// subsequent reload.
func (m *Manager) Watch() <-chan *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *Config, 1)
	m.watchers = append(m.watchers, ch)
	ch <- m.config
	return ch
}

// Update replaces the configuration and notifies watchers.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	m.config = config
	watchers := make([]chan *Config, len(m.watchers))
	copy(watchers, m.watchers)
	m.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- config:
		default:
		}
	}
}

// Close stops the file watcher and closes all watch channels.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.watchers {
		close(w)
	}
	m.watchers = nil
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func (m *Manager) setupFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					m.reloadConfig()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "config file watcher error: %v\n", err)
			}
		}
	}()

	return watcher.Add(m.file)
}

func (m *Manager) reloadConfig() {
	config := DefaultConfig()
	if err := loadFromFile(m.file, config); err != nil {
		fmt.Fprintf(os.Stderr, "error reloading config: %v\n", err)
		return
	}
	m.Update(config)
}

func loadFromFile(filename string, config *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
