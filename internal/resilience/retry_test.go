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

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transientErr struct{ retryable bool }

func (e *transientErr) Error() string   { return "transient" }
func (e *transientErr) Retryable() bool { return e.retryable }

func fastConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return &transientErr{retryable: true}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context, attempt int) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context, attempt int) error {
		calls++
		return &transientErr{retryable: true}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, fastConfig(), func(ctx context.Context, attempt int) error {
		t.Fatal("must not run with a cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(&transientErr{retryable: false}))
	assert.True(t, IsRetryable(&transientErr{retryable: true}))
}
