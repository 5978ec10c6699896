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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/backup"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/plan"
	"github.com/walteh/patchrc/pkg/status"
)

func init() {
	color.NoColor = true
	pterm.DisableStyling()
}

var fixtures = map[string]string{
	plan.ChatInputPath:        "ChatInput",
	plan.ChatAttachmentsPath:  "ChatAttachments",
	plan.ChatQuickActionsPath: "ChatQuickActions",
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "plan", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

// setupTree copies the unpatched fixtures into a fresh root, skipping any
// relative path listed in omit
func setupTree(t *testing.T, omit ...string) string {
	t.Helper()
	root := t.TempDir()
	skip := map[string]bool{}
	for _, rel := range omit {
		skip[rel] = true
	}
	for rel, name := range fixtures {
		if skip[rel] {
			continue
		}
		dst := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
		require.NoError(t, os.WriteFile(dst, []byte(fixture(t, name+".tsx")), 0644))
	}
	return root
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestApply_BuiltInPlan(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "root_command", args: nil},
		{name: "apply_subcommand", args: []string{"apply"}},
		{name: "parallel", args: []string{"apply", "--parallel", "--strict"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupTree(t)

			out, err := execute(t, append(tt.args, "--root", root)...)
			require.NoError(t, err)

			assert.Contains(t, out, "[1/3]")
			assert.Contains(t, out, "[OK] ChatInput done")
			assert.Contains(t, out, "all 3 steps patched")
			assert.Contains(t, out, backup.DefaultSuffix)
			assert.Contains(t, out, "patchrc rollback")

			for rel, name := range fixtures {
				assert.Equal(t, fixture(t, name+".patched.tsx"), read(t, root, rel), name)
				assert.Equal(t, fixture(t, name+".tsx"), read(t, root, rel+backup.DefaultSuffix), name)
			}

			lock, err := status.New(filepath.Join(root, status.DefaultFileName)).Load(context.Background())
			require.NoError(t, err)
			assert.True(t, lock.Succeeded)
			assert.NotEmpty(t, lock.RunID)
			require.Len(t, lock.Steps, 3)
			for _, step := range lock.Steps {
				assert.Equal(t, "patched", step.State, step.Name)
				assert.NotEqual(t, step.ChecksumBefore, step.ChecksumAfter, step.Name)
			}
		})
	}
}

func TestApply_SecondRunIsNoop(t *testing.T) {
	root := setupTree(t)

	_, err := execute(t, "--root", root)
	require.NoError(t, err)

	_, err = execute(t, "--root", root, "--strict")
	require.NoError(t, err)

	for rel, name := range fixtures {
		assert.Equal(t, fixture(t, name+".patched.tsx"), read(t, root, rel), name)
	}

	lock, err := status.New(filepath.Join(root, status.DefaultFileName)).Load(context.Background())
	require.NoError(t, err)
	for _, step := range lock.Steps {
		assert.False(t, step.Changed, step.Name)
		assert.Equal(t, step.ChecksumBefore, step.ChecksumAfter, step.Name)
	}
}

func TestApply_MissingTargetHalts(t *testing.T) {
	root := setupTree(t, plan.ChatAttachmentsPath)

	out, err := execute(t, "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, operation.ErrTargetNotFound)
	assert.Contains(t, out, "[ERROR] ChatAttachments")

	// earlier steps stay applied, later ones are never touched
	assert.Equal(t, fixture(t, "ChatInput.patched.tsx"), read(t, root, plan.ChatInputPath))
	assert.Equal(t, fixture(t, "ChatQuickActions.tsx"), read(t, root, plan.ChatQuickActionsPath))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(plan.ChatQuickActionsPath+backup.DefaultSuffix)))
	assert.True(t, os.IsNotExist(err))

	lock, err := status.New(filepath.Join(root, status.DefaultFileName)).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, lock.Succeeded)
}

func TestApply_DryRun(t *testing.T) {
	root := setupTree(t)

	out, err := execute(t, "--root", root, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "[DRY] ChatInput")
	assert.Contains(t, out, "+import { sendMessageWithAttachments } from '@lib/state/ChatSendHelpers'")
	assert.Contains(t, out, "no files were backed up or written")

	for rel, name := range fixtures {
		assert.Equal(t, fixture(t, name+".tsx"), read(t, root, rel), name)
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel+backup.DefaultSuffix)))
		assert.True(t, os.IsNotExist(err), name)
	}
	_, err = os.Stat(filepath.Join(root, status.DefaultFileName))
	assert.True(t, os.IsNotExist(err), "dry run should not write a lock file")
}

func TestApply_CustomSuffixAndLock(t *testing.T) {
	root := setupTree(t)
	lockPath := filepath.Join(t.TempDir(), "run.lock")

	out, err := execute(t, "--root", root, "--suffix", ".orig", "--lock", lockPath)
	require.NoError(t, err)
	assert.Contains(t, out, ".orig")

	assert.Equal(t, fixture(t, "ChatInput.tsx"), read(t, root, plan.ChatInputPath+".orig"))

	lock, err := status.New(lockPath).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".orig", lock.BackupSuffix)
}

func TestApply_PlanFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.tsx"), []byte("import a from 'a'\n"), 0644))

	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(`
root: .
backup_suffix: .bak
steps:
  - name: Index
    target: "*.tsx"
    rules:
      - name: import
        marker: "import a from 'a'"
        replacement: "import a from 'a'\nimport b from 'b'"
        guard: "import b from 'b'"
`), 0644))

	out, err := execute(t, "--plan", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "all 1 steps patched")

	assert.Equal(t, "import a from 'a'\nimport b from 'b'\n", read(t, dir, "index.tsx"))
	assert.Equal(t, "import a from 'a'\n", read(t, dir, "index.tsx.bak"))
}

func TestStatus(t *testing.T) {
	root := setupTree(t)

	out, err := execute(t, "status", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "11 rules pending")
	assert.Contains(t, out, "no recorded run")

	_, err = execute(t, "--root", root)
	require.NoError(t, err)

	lock, err := status.New(filepath.Join(root, status.DefaultFileName)).Load(context.Background())
	require.NoError(t, err)

	out, err = execute(t, "status", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "all 11 rules applied")
	assert.Contains(t, out, "last run "+lock.RunID+" succeeded")
}

func TestStatus_MissingTarget(t *testing.T) {
	root := setupTree(t, plan.ChatInputPath)

	out, err := execute(t, "status", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 steps could not be inspected")
	assert.Contains(t, out, "error")
}

func TestRollback(t *testing.T) {
	root := setupTree(t)

	_, err := execute(t, "--root", root)
	require.NoError(t, err)

	out, err := execute(t, "rollback", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "3 of 3 steps restored")

	for rel, name := range fixtures {
		assert.Equal(t, fixture(t, name+".tsx"), read(t, root, rel), name)
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel+backup.DefaultSuffix)))
		assert.True(t, os.IsNotExist(err), name)
	}

	out, err = execute(t, "rollback", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "ChatInput: no backup, skipped")
	assert.Contains(t, out, "0 of 3 steps restored")
}

func TestHistory(t *testing.T) {
	root := setupTree(t)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	_, err := execute(t, "history", "--journal", journalPath)
	require.NoError(t, err)

	_, err = execute(t, "--root", root, "--journal", journalPath)
	require.NoError(t, err)

	lock, err := status.New(filepath.Join(root, status.DefaultFileName)).Load(context.Background())
	require.NoError(t, err)

	out, err := execute(t, "history", "--journal", journalPath)
	require.NoError(t, err)
	assert.Contains(t, out, lock.RunID)
	assert.Contains(t, out, "3/3")
}

func TestHistory_RequiresJournal(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--journal")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "patchrc version info")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}
