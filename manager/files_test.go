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

package manager_test

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanctl/manager-go/internal/managerfake"
	"github.com/wanctl/manager-go/manager"
)

func TestGetFile(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.HandleFunc(http.MethodGet, "/dataservice/tenantbackup/download/file.tar.gz",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("backup-bytes")) //nolint:errcheck
		})

	session := connectTo(t, fake, manager.Config{})
	dest := filepath.Join(t.TempDir(), "file.tar.gz")
	err := session.GetFile(context.Background(), "/dataservice/tenantbackup/download/file.tar.gz", dest)
	require.NoError(t, err)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "backup-bytes", string(content))
	_, err = os.Stat(dest + ".partial")
	assert.True(t, os.IsNotExist(err), "no partial file left behind")
}

func TestGetFileErrorLeavesNothing(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.Handle(http.MethodGet, "/dataservice/tenantbackup/download/missing.tar.gz",
		http.StatusNotFound, `{"error":{"message":"no such backup"}}`)

	session := connectTo(t, fake, manager.Config{})
	dest := filepath.Join(t.TempDir(), "missing.tar.gz")
	err := session.GetFile(context.Background(), "/dataservice/tenantbackup/download/missing.tar.gz", dest)
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeNotFound))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadFile(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()

	var (
		partName    string
		partFile    string
		partType    string
		partContent []byte
	)
	fake.HandleFunc(http.MethodPost, "/dataservice/device/action/software/package",
		func(w http.ResponseWriter, r *http.Request) {
			_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			reader := multipart.NewReader(r.Body, params["boundary"])
			part, err := reader.NextPart()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			partName = part.FormName()
			partFile = part.FileName()
			partType = part.Header.Get("Content-Type")
			partContent, _ = io.ReadAll(part)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`)) //nolint:errcheck
		})

	local := filepath.Join(t.TempDir(), "image.tar.gz")
	require.NoError(t, os.WriteFile(local, []byte("gzip-payload"), 0o600))

	session := connectTo(t, fake, manager.Config{})
	var reported int64
	resp, err := session.UploadFile(context.Background(),
		"/dataservice/device/action/software/package", local,
		func(transferred int64) { reported = transferred })
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "file", partName)
	assert.Equal(t, "image.tar.gz", partFile)
	assert.Equal(t, "application/x-gzip", partType)
	assert.Equal(t, "gzip-payload", string(partContent))
	assert.Equal(t, int64(len("gzip-payload")), reported)
}

func TestGetFileReloginReplay(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()
	fake.HandleFunc(http.MethodGet, "/dataservice/tenantbackup/download/file.tar.gz",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("backup-bytes")) //nolint:errcheck
		})

	session := connectTo(t, fake, manager.Config{})
	fake.ExpireSessions()

	dest := filepath.Join(t.TempDir(), "file.tar.gz")
	err := session.GetFile(context.Background(), "/dataservice/tenantbackup/download/file.tar.gz", dest)
	require.NoError(t, err)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "backup-bytes", string(content), "the login form must never land on disk")
	assert.Equal(t, 2, fake.LoginCount())
}

func TestGetFileReloginFailureSurfaces(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()

	session := connectTo(t, fake, manager.Config{})
	fake.SetCredentials("admin", "rotated")
	fake.ExpireSessions()

	dest := filepath.Join(t.TempDir(), "file.tar.gz")
	err := session.GetFile(context.Background(), "/dataservice/tenantbackup/download/file.tar.gz", dest)
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeSessionExpiredAfterRelogin))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadFileReloginReplay(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()

	var received []byte
	fake.HandleFunc(http.MethodPost, "/dataservice/device/action/software/package",
		func(w http.ResponseWriter, r *http.Request) {
			_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			reader := multipart.NewReader(r.Body, params["boundary"])
			part, err := reader.NextPart()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			received, _ = io.ReadAll(part)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`)) //nolint:errcheck
		})

	local := filepath.Join(t.TempDir(), "image.tar.gz")
	require.NoError(t, os.WriteFile(local, []byte("gzip-payload"), 0o600))

	session := connectTo(t, fake, manager.Config{})
	fake.ExpireSessions()

	resp, err := session.UploadFile(context.Background(),
		"/dataservice/device/action/software/package", local, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.History, 1, "the expired answer is kept as history")
	assert.Equal(t, "gzip-payload", string(received))
	assert.Equal(t, 2, fake.LoginCount())
}

func TestUploadFileMissingLocal(t *testing.T) {
	fake := managerfake.New()
	defer fake.Close()

	session := connectTo(t, fake, manager.Config{})
	_, err := session.UploadFile(context.Background(),
		"/dataservice/device/action/software/package",
		filepath.Join(t.TempDir(), "nope.bin"), nil)
	require.Error(t, err)
	assert.True(t, manager.IsCode(err, manager.CodeInvalidOperation))
}
