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

// Package task polls long-running controller actions until they settle.
// Controller operations that mutate devices hand back an opaque task id;
// Task wraps that id and blocks until every sub-task reports a terminal
// status.
package task

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/wanctl/manager-go/internal/obs/metrics"
	"github.com/wanctl/manager-go/internal/resilience"
	"github.com/wanctl/manager-go/manager"
)

const statusPath = "/dataservice/device/action/status/"

// Sub-task status ids reported by the controller.
const (
	StatusInProgress        = "in_progress"
	StatusFailure           = "failure"
	StatusSuccess           = "success"
	StatusScheduled         = "scheduled"
	StatusDoneScheduled     = "done_scheduled"
	StatusValidationSuccess = "validation_success"
)

// SubTaskData is one sub-task record of a polled action status.
type SubTaskData struct {
	Status   string   `json:"status"`
	StatusID string   `json:"statusId"`
	Activity []string `json:"activity"`
	Action   string   `json:"action,omitempty"`
	Order    int      `json:"order,omitempty"`
	UUID     string   `json:"uuid,omitempty"`
	HostName string   `json:"host-name,omitempty"`
	SiteID   string   `json:"site-id,omitempty"`
}

// LastActivity returns the final activity line, the one that carries file
// paths for file-producing actions.
func (s SubTaskData) LastActivity() string {
	if len(s.Activity) == 0 {
		return ""
	}
	return s.Activity[len(s.Activity)-1]
}

// TaskResult is the terminal state of a task. Result is true only when
// every sub-task settled with a success status; a terminal task with a
// failed sub-task returns normally with Result false.
type TaskResult struct {
	Result   bool
	SubTasks []SubTaskData
}

// NotFoundError is returned when the status endpoint keeps answering with
// no records, meaning the controller has no such task.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// TimeoutError is returned when the task did not settle in the allotted
// window. SubTasks holds the last observed records for diagnostics.
type TimeoutError struct {
	TaskID   string
	SubTasks []SubTaskData
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s did not reach a terminal state in time", e.TaskID)
}

// Task wraps a controller task id for polling. Tasks are independent;
// multiple tasks may be polled concurrently on the same session.
type Task struct {
	session *manager.Session
	id      string
}

// New wraps a task id returned by an action endpoint.
func New(session *manager.Session, id string) *Task {
	return &Task{session: session, id: id}
}

// ID returns the wrapped task id.
func (t *Task) ID() string {
	return t.id
}

// WaitOptions tunes a WaitForCompleted call. Zero values fall back to the
// defaults: 300s timeout, 5s interval, the standard terminal status sets.
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration

	// SuccessStatuses and FailureStatuses together define the terminal
	// set. A sub-task outside both keeps the task running.
	SuccessStatuses []string
	FailureStatuses []string

	// ActivityText additionally requires some sub-task's final activity
	// line to equal this text before the task counts as terminal. Used to
	// disambiguate multi-phase actions that report intermediate success.
	ActivityText string
}

func (o *WaitOptions) withDefaults() WaitOptions {
	out := WaitOptions{}
	if o != nil {
		out = *o
	}
	if out.Timeout <= 0 {
		out.Timeout = 300 * time.Second
	}
	if out.PollInterval <= 0 {
		out.PollInterval = 5 * time.Second
	}
	if out.SuccessStatuses == nil {
		out.SuccessStatuses = []string{StatusSuccess, StatusValidationSuccess, StatusDoneScheduled}
	}
	if out.FailureStatuses == nil {
		out.FailureStatuses = []string{StatusFailure}
	}
	return out
}

// emptyPollLimit is how many consecutive empty answers are tolerated
// before the task is declared missing.
const emptyPollLimit = 3

// WaitForCompleted polls the action status until every sub-task settled,
// then returns the aggregate result. Transient server errors during a poll
// count as no progress and do not terminate the wait. Cancelling the
// context interrupts the sleep between polls promptly.
func (t *Task) WaitForCompleted(ctx context.Context, opts *WaitOptions) (TaskResult, error) {
	o := opts.withDefaults()
	start := time.Now()
	defer func() {
		metrics.TaskWaitDuration.Observe(time.Since(start).Seconds())
	}()
	deadline := time.NewTimer(o.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()

	var last []SubTaskData
	emptyPolls := 0

	for {
		records, err := t.poll(ctx)
		switch {
		case err == nil:
			if len(records) == 0 {
				emptyPolls++
				metrics.TaskPolls.WithLabelValues("empty").Inc()
				if emptyPolls > emptyPollLimit {
					return TaskResult{}, &NotFoundError{TaskID: t.id}
				}
			} else {
				emptyPolls = 0
				last = records
				metrics.TaskPolls.WithLabelValues("ok").Inc()
				if terminal(records, o) {
					result := TaskResult{
						Result:   allIn(records, o.SuccessStatuses),
						SubTasks: records,
					}
					t.session.Logger().V(1).Info("task settled",
						"taskId", t.id, "result", result.Result, "subTasks", len(records))
					return result, nil
				}
			}
		case resilience.IsRetryable(err):
			// Transient controller trouble; the task may still be moving.
			metrics.TaskPolls.WithLabelValues("transient").Inc()
			t.session.Logger().V(1).Info("task poll failed, will retry",
				"taskId", t.id, "error", err.Error())
		default:
			return TaskResult{}, err
		}

		select {
		case <-ctx.Done():
			return TaskResult{}, ctx.Err()
		case <-deadline.C:
			return TaskResult{}, &TimeoutError{TaskID: t.id, SubTasks: last}
		case <-ticker.C:
		}
	}
}

func (t *Task) poll(ctx context.Context) ([]SubTaskData, error) {
	resp, err := t.session.Request(ctx, http.MethodGet, statusPath+t.id)
	if err != nil {
		return nil, err
	}
	records, err := manager.DataSeq[SubTaskData](resp)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Order < records[j].Order
	})
	return records, nil
}

func terminal(records []SubTaskData, o WaitOptions) bool {
	terminalSet := append(append([]string{}, o.SuccessStatuses...), o.FailureStatuses...)
	if !allIn(records, terminalSet) {
		return false
	}
	if o.ActivityText == "" {
		return true
	}
	for _, r := range records {
		if r.LastActivity() == o.ActivityText {
			return true
		}
	}
	return false
}

func allIn(records []SubTaskData, statuses []string) bool {
	for _, r := range records {
		found := false
		for _, s := range statuses {
			if r.StatusID == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
