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

package task

import (
	"context"
	"net/http"

	"github.com/wanctl/manager-go/manager"
)

// RunningTask is one entry of the controller's active task list.
type RunningTask struct {
	ProcessID string `json:"processId"`
	Name      string `json:"name"`
	Action    string `json:"action,omitempty"`
	StartTime int64  `json:"startTime,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Running lists tasks the controller is currently executing. The answer
// arrives under the runningTasks envelope key instead of data.
func Running(ctx context.Context, session *manager.Session) ([]RunningTask, error) {
	resp, err := session.Request(ctx, http.MethodGet, "/dataservice/device/action/status/tasks")
	if err != nil {
		return nil, err
	}
	return manager.DataSeq[RunningTask](resp, "runningTasks")
}
