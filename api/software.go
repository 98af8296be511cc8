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

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wanctl/manager-go/endpoints"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/models"
	"github.com/wanctl/manager-go/task"
)

// Software drives the software repository: image upload, listing and the
// install/activate actions.
type Software struct {
	session *manager.Session
}

// NewSoftware binds the software repository API to a session.
func NewSoftware(session *manager.Session) *Software {
	return &Software{session: session}
}

// Images lists the images in the controller repository.
func (s *Software) Images(ctx context.Context) ([]models.SoftwareImage, error) {
	return endpoints.InvokeSeq[models.SoftwareImage](ctx, s.session, endpoints.SoftwareImages, nil)
}

// Upload pushes a local image file into the repository. Progress, when
// non-nil, receives the transferred byte count as the upload moves.
func (s *Software) Upload(ctx context.Context, imagePath string, progress manager.ProgressFunc) error {
	_, err := s.session.UploadFile(ctx, endpoints.UploadSoftware.Path, imagePath, progress)
	return err
}

// DeleteImage removes one image version from the repository.
func (s *Software) DeleteImage(ctx context.Context, versionID string) error {
	_, err := endpoints.Invoke(ctx, s.session, endpoints.DeleteSoftware, []string{versionID})
	return err
}

// InstallInput selects the image and the devices of an install action.
type InstallInput struct {
	Version   string
	Reboot    bool
	DeviceIDs []string
}

type actionDevice struct {
	DeviceID string `json:"deviceId"`
	DeviceIP string `json:"deviceIP,omitempty"`
}

type actionAnswer struct {
	ID string `json:"id"`
}

// Install starts a software install action and returns its task.
func (s *Software) Install(ctx context.Context, input InstallInput) (*task.Task, error) {
	devices := make([]actionDevice, 0, len(input.DeviceIDs))
	for _, id := range input.DeviceIDs {
		devices = append(devices, actionDevice{DeviceID: id})
	}
	body := map[string]any{
		"action":  "install",
		"devices": devices,
		"input": map[string]any{
			"version":  input.Version,
			"vEdgeVPN": 0,
			"reboot":   input.Reboot,
		},
	}
	return s.action(ctx, endpoints.InstallSoftware, body)
}

// Activate switches devices to an already-installed partition and returns
// the task driving the change.
func (s *Software) Activate(ctx context.Context, version string, deviceIDs []string) (*task.Task, error) {
	devices := make([]actionDevice, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		devices = append(devices, actionDevice{DeviceID: id})
	}
	body := map[string]any{
		"action":  "changepartition",
		"devices": devices,
		"input":   map[string]any{"version": version},
	}
	return s.action(ctx, endpoints.ActivateImage, body)
}

func (s *Software) action(ctx context.Context, e endpoints.Endpoint, body any) (*task.Task, error) {
	resp, err := endpoints.Invoke(ctx, s.session, e, nil, manager.WithJSON(body))
	if err != nil {
		return nil, err
	}
	var answer actionAnswer
	if err := json.Unmarshal(resp.Body, &answer); err != nil || answer.ID == "" {
		return nil, fmt.Errorf("action answer carries no task id")
	}
	return task.New(s.session, answer.ID), nil
}
