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

package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/backup"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
)

var fixtures = map[string]string{
	ChatInputPath:        "ChatInput",
	ChatAttachmentsPath:  "ChatAttachments",
	ChatQuickActionsPath: "ChatQuickActions",
}

// setupTree copies the unpatched fixtures into a fresh root
func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, name := range fixtures {
		data, err := os.ReadFile(filepath.Join("testdata", name+".tsx"))
		require.NoError(t, err)
		dst := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
		require.NoError(t, os.WriteFile(dst, data, 0644))
	}
	return root
}

func golden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestCompanionAI_Definitions(t *testing.T) {
	steps := CompanionAI()
	require.Len(t, steps, 3)
	assert.Equal(t, []string{"ChatInput", "ChatAttachments", "ChatQuickActions"},
		[]string{steps[0].Name, steps[1].Name, steps[2].Name})

	editor := text.NewLiteralEditor()
	for _, step := range steps {
		require.NoError(t, step.Validate(editor), step.Name)
		for _, rule := range step.Rules {
			assert.NotEmpty(t, rule.Guard, "%s/%s should carry a guard", step.Name, rule.Name)
			assert.True(t, rule.Idempotent(), "%s/%s", step.Name, rule.Name)
			assert.Contains(t, rule.Replacement, rule.Guard, "%s/%s guard must appear in its own output", step.Name, rule.Name)
		}
	}
}

func TestCompanionAI_Apply(t *testing.T) {
	root := setupTree(t)
	o, err := operation.New(operation.Options{Root: root, Strict: true})
	require.NoError(t, err)

	result, err := o.Run(context.Background(), CompanionAI())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Completed())

	for rel, name := range fixtures {
		path := filepath.Join(root, filepath.FromSlash(rel))
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, golden(t, name+".patched.tsx"), string(got), name)

		saved, err := os.ReadFile(path + backup.DefaultSuffix)
		require.NoError(t, err)
		assert.Equal(t, golden(t, name+".tsx"), string(saved), "%s backup", name)
	}

	for _, step := range result.Steps {
		assert.Equal(t, len(step.Rules), step.Count(text.OutcomeApplied), "%s: every rule should apply on a clean tree", step.Name)
	}
}

func TestCompanionAI_SecondRunIsNoop(t *testing.T) {
	root := setupTree(t)
	o, err := operation.New(operation.Options{Root: root})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), CompanionAI())
	require.NoError(t, err)

	result, err := o.Run(context.Background(), CompanionAI())
	require.NoError(t, err)

	for _, step := range result.Steps {
		assert.False(t, step.Changed, step.Name)
		assert.Equal(t, len(step.Rules), step.Count(text.OutcomeSkipped), step.Name)
	}
	for rel, name := range fixtures {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, golden(t, name+".patched.tsx"), string(got), name)
	}
}
