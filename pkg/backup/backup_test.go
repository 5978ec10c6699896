// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestManager_Backup(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, dir string) string
		check       func(t *testing.T, src, backup string)
		wantErr     bool
		errContains string
	}{
		{
			name: "copies_content",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "index.tsx")
				require.NoError(t, os.WriteFile(path, []byte("original"), 0644))
				return path
			},
			check: func(t *testing.T, src, backup string) {
				assert.Equal(t, src+DefaultSuffix, backup)
				data, err := os.ReadFile(backup)
				require.NoError(t, err)
				assert.Equal(t, "original", string(data))
			},
		},
		{
			name: "preserves_mode_and_mtime",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "script.sh")
				require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh"), 0750))
				stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
				require.NoError(t, os.Chtimes(path, stamp, stamp))
				return path
			},
			check: func(t *testing.T, src, backup string) {
				srcInfo, err := os.Stat(src)
				require.NoError(t, err)
				backupInfo, err := os.Stat(backup)
				require.NoError(t, err)
				assert.Equal(t, srcInfo.Mode().Perm(), backupInfo.Mode().Perm())
				assert.True(t, srcInfo.ModTime().Equal(backupInfo.ModTime()), "mtime should be carried over")
			},
		},
		{
			name: "overwrites_previous_backup",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "index.tsx")
				require.NoError(t, os.WriteFile(path, []byte("new"), 0644))
				require.NoError(t, os.WriteFile(path+DefaultSuffix, []byte("stale backup content"), 0644))
				return path
			},
			check: func(t *testing.T, src, backup string) {
				data, err := os.ReadFile(backup)
				require.NoError(t, err)
				assert.Equal(t, "new", string(data))
			},
		},
		{
			name: "missing_source",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing.tsx")
			},
			wantErr:     true,
			errContains: "checking source file",
		},
		{
			name: "source_is_directory",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "sub")
				require.NoError(t, os.Mkdir(path, 0755))
				return path
			},
			wantErr:     true,
			errContains: "not a regular file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.setup(t, t.TempDir())
			mgr := New("")

			backup, err := mgr.Backup(context.Background(), src)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, src, backup)
		})
	}
}

func TestManager_CustomSuffix(t *testing.T) {
	mgr := New(".orig")
	assert.Equal(t, ".orig", mgr.Suffix())
	assert.Equal(t, "/tmp/a.ts.orig", mgr.PathFor("/tmp/a.ts"))
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ChatAttachments.tsx")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0644))

	mgr := New("")
	backupPath, err := mgr.Backup(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("after"), 0644))

	require.NoError(t, mgr.Restore(ctx, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "before", string(data))
	assert.NoFileExists(t, backupPath, "backup should be renamed away")

	err = mgr.Restore(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBackup))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0640))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}
