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

// Package resilience provides retry with exponential backoff for calls
// against the controller.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls the backoff schedule.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64
}

// DefaultRetryConfig suits short control-plane calls.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// retryable lets error types opt in without this package importing them.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether an error advertises itself as transient.
// Errors without the marker are treated as permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if r, ok := err.(retryable); ok {
		return r.Retryable()
	}
	return false
}

// Retry runs fn up to MaxAttempts times, sleeping between attempts per the
// backoff schedule. It stops early on success, on a non-retryable error, or
// when the context is done. The attempt number passed to fn starts at 1.
func Retry(ctx context.Context, cfg *RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(cfg.delay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(d)
}
