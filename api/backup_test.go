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

package api_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/api"
	"github.com/wanctl/manager-go/internal/managerfake"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/task"
)

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

func TestBackupExportAndDownload(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/tenantbackup/export", http.StatusOK,
		`{"processId":"backup-1"}`)
	fake.ScriptTask("backup-1",
		`{"data":[{"statusId":"in_progress","activity":["Creating backup"],"order":1}]}`,
		`{"data":[{"statusId":"success","activity":["Creating backup","file location: /opt/data/backup/tenant_backup.tar.gz"],"order":1}]}`,
	)
	fake.HandleFunc(http.MethodGet, "/dataservice/tenantbackup/download/tenant_backup.tar.gz",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("tar-bytes")) //nolint:errcheck
		})

	session := newSession(t, fake)
	destDir := t.TempDir()
	local, err := api.NewBackup(session).ExportAndDownload(context.Background(), destDir, &task.WaitOptions{
		Timeout:      500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "tenant_backup.tar.gz"), local)

	content, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "tar-bytes", string(content))
}

func TestBackupExportFailedTask(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/tenantbackup/export", http.StatusOK,
		`{"processId":"backup-2"}`)
	fake.ScriptTask("backup-2",
		`{"data":[{"statusId":"failure","activity":["disk full"],"order":1}]}`,
	)

	session := newSession(t, fake)
	_, err := api.NewBackup(session).ExportAndDownload(context.Background(), t.TempDir(), &task.WaitOptions{
		Timeout:      500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestBackupList(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/tenantbackup/list", http.StatusOK,
		`{"backupFiles":[{"fileName":"tenant_backup.tar.gz","size":12345}]}`)

	session := newSession(t, fake)
	files, err := api.NewBackup(session).List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "tenant_backup.tar.gz", files[0].FileName)
}

func TestBackupVersionGate(t *testing.T) {
	fake := managerfake.New(managerfake.WithServerInfo(managerfake.ServerInfo{
		PlatformVersion: "20.3.1",
		TenancyMode:     "SingleTenant",
		UserMode:        "tenant",
		ViewMode:        "tenant",
	}))
	defer fake.Close()

	session := newSession(t, fake)
	_, err := api.NewBackup(session).Export(context.Background())
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeAPIVersion))

	err = api.NewBackup(session).Download(context.Background(), "x.tar.gz", filepath.Join(t.TempDir(), "x.tar.gz"))
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeAPIVersion))
}
