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

package log

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
)

func init() {
	color.NoColor = true
	pterm.DisableStyling()
}

func newTestLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(buf, zerolog.Nop()), buf
}

func lines(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(*Logger)
		expected []string
	}{
		{
			name:     "header",
			logFunc:  func(l *Logger) { l.Header("Integrating CompanionAI features") },
			expected: []string{"patchrc • Integrating CompanionAI features"},
		},
		{
			name:     "success",
			logFunc:  func(l *Logger) { l.Successf("%d steps patched", 3) },
			expected: []string{"✅ 3 steps patched"},
		},
		{
			name:     "warning",
			logFunc:  func(l *Logger) { l.Warning("rule matched nothing") },
			expected: []string{"⚠️  rule matched nothing"},
		},
		{
			name:     "error",
			logFunc:  func(l *Logger) { l.Errorf("step %s failed", "ChatInput") },
			expected: []string{"❌ step ChatInput failed"},
		},
		{
			name:     "info",
			logFunc:  func(l *Logger) { l.Infof("backups use suffix %s", ".backup_auto") },
			expected: []string{"ℹ️  backups use suffix .backup_auto"},
		},
		{
			name: "step started",
			logFunc: func(l *Logger) {
				l.StepStarted(context.Background(), 0, 3, operation.Step{Name: "ChatInput"})
			},
			expected: []string{"[1/3] ChatInput"},
		},
		{
			name: "step backed up",
			logFunc: func(l *Logger) {
				l.StepBackedUp(context.Background(), operation.Step{Name: "ChatInput"}, "/ca/app/index.tsx.backup_auto")
			},
			expected: []string{"[OK] backup: index.tsx.backup_auto"},
		},
		{
			name: "step patched",
			logFunc: func(l *Logger) {
				l.StepCompleted(context.Background(), &operation.StepResult{Name: "ChatInput", State: operation.StatePatched})
			},
			expected: []string{"[OK] ChatInput done"},
		},
		{
			name: "dry run without changes",
			logFunc: func(l *Logger) {
				l.StepCompleted(context.Background(), &operation.StepResult{Name: "ChatInput", State: operation.StatePending})
			},
			expected: []string{"[DRY] ChatInput: no changes"},
		},
		{
			name: "step failed",
			logFunc: func(l *Logger) {
				l.StepFailed(context.Background(), &operation.StepResult{Name: "ChatInput", State: operation.StateFailed}, errors.New("target not found"))
			},
			expected: []string{"[ERROR] ChatInput: target not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			tt.logFunc(logger)
			assert.Equal(t, tt.expected, lines(buf))
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger, _ := newTestLogger()
	ctx := NewContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Panics(t, func() { FromContext(context.Background()) })
}

func TestRuleFormatting(t *testing.T) {
	tests := []struct {
		name     string
		result   text.RuleResult
		expected []string
	}{
		{
			name:     "applied",
			result:   text.RuleResult{Rule: "import-send-helpers", Outcome: text.OutcomeApplied},
			expected: []string{"✓", "import-send-helpers", "applied"},
		},
		{
			name:     "skipped",
			result:   text.RuleResult{Rule: "viewer-state", Outcome: text.OutcomeSkipped},
			expected: []string{"•", "viewer-state", "skipped"},
		},
		{
			name:     "missed",
			result:   text.RuleResult{Rule: "rewind-regenerate-buttons", Outcome: text.OutcomeMissed},
			expected: []string{"✗", "rewind-regenerate-buttons", "missed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := formatRule(tt.result)
			assert.True(t, strings.HasPrefix(line, "    "), "rule lines are indented")
			assert.Equal(t, tt.expected, strings.Fields(line))
		})
	}
}

func TestStepCompletedListsRules(t *testing.T) {
	logger, buf := newTestLogger()

	logger.StepCompleted(context.Background(), &operation.StepResult{
		Name:  "ChatAttachments",
		State: operation.StatePatched,
		Rules: []text.RuleResult{
			{Rule: "import-viewer", Outcome: text.OutcomeApplied},
			{Rule: "viewer-state", Outcome: text.OutcomeSkipped},
		},
	})

	got := lines(buf)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"✓", "import-viewer", "applied"}, strings.Fields(got[0]))
	assert.Equal(t, []string{"•", "viewer-state", "skipped"}, strings.Fields(got[1]))
	assert.Equal(t, "[OK] ChatAttachments done", got[2])
}

func TestDryRunPrintsDiff(t *testing.T) {
	logger, buf := newTestLogger()

	logger.StepCompleted(context.Background(), &operation.StepResult{
		Name:  "ChatInput",
		State: operation.StatePending,
		Diff:  "--- a/index.tsx\n+++ b/index.tsx\n@@ -1 +1 @@\n-old\n+new\n",
	})

	out := buf.String()
	assert.Contains(t, out, "[DRY] ChatInput")
	assert.Contains(t, out, "+new")
}

func TestSummary(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Summary(&operation.RunResult{Steps: []*operation.StepResult{
		{
			Name:   "ChatInput",
			Target: "/ca/app/chat/index.tsx",
			State:  operation.StatePatched,
			Rules: []text.RuleResult{
				{Rule: "a", Outcome: text.OutcomeApplied},
				{Rule: "b", Outcome: text.OutcomeApplied},
				{Rule: "c", Outcome: text.OutcomeMissed},
			},
		},
		{Name: "ChatQuickActions", State: operation.StateFailed},
	}})

	got := lines(buf)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "Step")
	assert.Contains(t, got[0], "Missed")
	assert.Equal(t, []string{"ChatInput", "patched", "2", "0", "1", "/ca/app/chat/index.tsx"}, strings.Fields(strings.ReplaceAll(got[1], "|", " ")))
	assert.Equal(t, []string{"ChatQuickActions", "failed", "0", "0", "0"}, strings.Fields(strings.ReplaceAll(got[2], "|", " ")))
}
