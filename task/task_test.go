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

package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/internal/managerfake"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/task"
)

func fastOptions() *task.WaitOptions {
	return &task.WaitOptions{
		Timeout:      500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	}
}

func newSession(t *testing.T, fake *managerfake.Controller) *manager.Session {
	t.Helper()
	session, err := manager.Connect(context.Background(), manager.Config{
		URL:      fake.URL(),
		Username: "admin",
		Password: "admin",
	})
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() }) //nolint:errcheck
	return session
}

func TestWaitForCompletedSuccess(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("reboot-1",
		`{"data":[{"statusId":"in_progress","status":"In progress","activity":["Rebooting"],"order":1}]}`,
		`{"data":[{"statusId":"success","status":"Success","activity":["Rebooting","Reboot complete"],"order":1,"host-name":"edge-1"}]}`,
	)

	session := newSession(t, fake)
	result, err := task.New(session, "reboot-1").WaitForCompleted(context.Background(), fastOptions())
	require.NoError(t, err)
	assert.True(t, result.Result)

	want := []task.SubTaskData{{
		Status:   "Success",
		StatusID: task.StatusSuccess,
		Activity: []string{"Rebooting", "Reboot complete"},
		Order:    1,
		HostName: "edge-1",
	}}
	if diff := cmp.Diff(want, result.SubTasks); diff != "" {
		t.Errorf("sub-tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestWaitForCompletedFailureIsNotAnError(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("upgrade-1",
		`{"data":[{"statusId":"success","order":1},{"statusId":"failure","order":2,"host-name":"edge-2"}]}`,
	)

	session := newSession(t, fake)
	result, err := task.New(session, "upgrade-1").WaitForCompleted(context.Background(), fastOptions())
	require.NoError(t, err)
	assert.False(t, result.Result)
	require.Len(t, result.SubTasks, 2)
	assert.Equal(t, "edge-2", result.SubTasks[1].HostName)
}

func TestWaitForCompletedSortsByOrder(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("multi-1",
		`{"data":[{"statusId":"success","order":3},{"statusId":"success","order":1},{"statusId":"success","order":2}]}`,
	)

	session := newSession(t, fake)
	result, err := task.New(session, "multi-1").WaitForCompleted(context.Background(), fastOptions())
	require.NoError(t, err)
	orders := []int{result.SubTasks[0].Order, result.SubTasks[1].Order, result.SubTasks[2].Order}
	assert.Equal(t, []int{1, 2, 3}, orders)
}

func TestWaitForCompletedActivityText(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	// First poll is terminal by status but the awaited activity line is
	// still missing, so the wait must keep polling.
	fake.ScriptTask("backup-1",
		`{"data":[{"statusId":"success","activity":["Generating backup"],"order":1}]}`,
		`{"data":[{"statusId":"success","activity":["Generating backup","done"],"order":1}]}`,
	)

	session := newSession(t, fake)
	result, err := task.New(session, "backup-1").WaitForCompleted(context.Background(), &task.WaitOptions{
		Timeout:      500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		ActivityText: "done",
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result.SubTasks[0].LastActivity())
}

func TestWaitForCompletedNotFound(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()

	session := newSession(t, fake)
	_, err := task.New(session, "no-such-task").WaitForCompleted(context.Background(), fastOptions())
	var notFound *task.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-task", notFound.TaskID)
}

func TestWaitForCompletedTimeout(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("stuck-1",
		`{"data":[{"statusId":"in_progress","status":"In progress","order":1}]}`,
	)

	session := newSession(t, fake)
	_, err := task.New(session, "stuck-1").WaitForCompleted(context.Background(), &task.WaitOptions{
		Timeout:      100 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	var timeout *task.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "stuck-1", timeout.TaskID)
	require.Len(t, timeout.SubTasks, 1, "last observed records travel with the error")
	assert.Equal(t, task.StatusInProgress, timeout.SubTasks[0].StatusID)
}

func TestWaitForCompletedRidesOutTransientErrors(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("flaky-1",
		"status:503",
		"status:502",
		`{"data":[{"statusId":"success","order":1}]}`,
	)

	session := newSession(t, fake)
	result, err := task.New(session, "flaky-1").WaitForCompleted(context.Background(), fastOptions())
	require.NoError(t, err)
	assert.True(t, result.Result)
}

func TestWaitForCompletedContextCancel(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.ScriptTask("slow-1",
		`{"data":[{"statusId":"in_progress","order":1}]}`,
	)

	session := newSession(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := task.New(session, "slow-1").WaitForCompleted(ctx, fastOptions())
	require.ErrorIs(t, err, context.Canceled)
}
