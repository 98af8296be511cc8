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
	"net/url"
	"path"
	"regexp"

	"github.com/wanctl/manager-go/endpoints"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/models"
	"github.com/wanctl/manager-go/task"
)

// fileLocationRe extracts the produced file path from the final activity
// line of an export task. The controller embeds it free-text; this exact
// pattern is what the wire format guarantees.
var fileLocationRe = regexp.MustCompile(`file location: (.*)`)

// Backup drives the tenant backup endpoints: export on the controller,
// list, download and delete.
type Backup struct {
	session *manager.Session
}

// NewBackup binds the backup API to a session.
func NewBackup(session *manager.Session) *Backup {
	return &Backup{session: session}
}

// Export starts a backup export on the controller and returns the task
// driving it.
func (b *Backup) Export(ctx context.Context) (*task.Task, error) {
	resp, err := endpoints.Invoke(ctx, b.session, endpoints.ExportTenantBackup, nil)
	if err != nil {
		return nil, err
	}
	var answer struct {
		ProcessID string `json:"processId"`
	}
	if err := json.Unmarshal(resp.Body, &answer); err != nil || answer.ProcessID == "" {
		return nil, fmt.Errorf("backup export answer carries no processId")
	}
	return task.New(b.session, answer.ProcessID), nil
}

// ExportAndDownload runs the full composition: export, wait for the task,
// extract the produced file name from the final activity line, then stream
// it to destDir. It returns the local path of the downloaded file.
func (b *Backup) ExportAndDownload(ctx context.Context, destDir string, opts *task.WaitOptions) (string, error) {
	t, err := b.Export(ctx)
	if err != nil {
		return "", err
	}
	result, err := t.WaitForCompleted(ctx, opts)
	if err != nil {
		return "", err
	}
	if !result.Result {
		return "", fmt.Errorf("backup export task %s failed", t.ID())
	}
	remote, err := extractFileLocation(result)
	if err != nil {
		return "", err
	}
	fileName := path.Base(remote)
	dest := path.Join(destDir, fileName)
	if err := b.Download(ctx, fileName, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func extractFileLocation(result task.TaskResult) (string, error) {
	for i := len(result.SubTasks) - 1; i >= 0; i-- {
		if m := fileLocationRe.FindStringSubmatch(result.SubTasks[i].LastActivity()); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no file location found in backup task activity")
}

// List returns the backup files stored on the controller.
func (b *Backup) List(ctx context.Context) ([]models.BackupFile, error) {
	resp, err := endpoints.Invoke(ctx, b.session, endpoints.ListTenantBackups, nil)
	if err != nil {
		return nil, err
	}
	return manager.DataSeq[models.BackupFile](resp, "backupFiles")
}

// Download streams one backup file to a local destination.
func (b *Backup) Download(ctx context.Context, fileName, destination string) error {
	if err := b.session.RequireVersion(endpoints.DownloadTenantBackup.MinVersion, "tenant backup download"); err != nil {
		return err
	}
	href, err := endpoints.DownloadTenantBackup.Href(url.PathEscape(fileName))
	if err != nil {
		return err
	}
	return b.session.GetFile(ctx, href, destination)
}

// Delete removes backup files from the controller. An empty fileName
// deletes all of them.
func (b *Backup) Delete(ctx context.Context, fileName string) error {
	params := url.Values{}
	if fileName != "" {
		params.Set("fileName", fileName)
	} else {
		params.Set("fileName", "all")
	}
	_, err := endpoints.Invoke(ctx, b.session, endpoints.DeleteTenantBackup, nil,
		manager.WithParams(params))
	return err
}
