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
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
)

// 🎨 Display configuration
const (
	ruleIndent = 4  // spaces to indent rule entries
	nameWidth  = 35 // Base width for rule names
)

// 🎯 Logger prints human progress lines and mirrors them to zerolog.
// It implements operation.Reporter.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

var _ operation.Reporter = (*Logger)(nil)

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRule formats one rule outcome for display
func formatRule(rr text.RuleResult) string {
	var symbol string
	var symbolColor color.Attribute
	switch rr.Outcome {
	case text.OutcomeApplied:
		symbol, symbolColor = "✓", color.FgGreen
	case text.OutcomeSkipped:
		symbol, symbolColor = "•", color.FgCyan
	case text.OutcomeMissed:
		symbol, symbolColor = "✗", color.FgRed
	default:
		symbol, symbolColor = "-", color.FgYellow
	}

	return fmt.Sprintf("%*s%s %-*s %s",
		ruleIndent, "",
		color.New(symbolColor).Sprint(symbol),
		nameWidth, rr.Rule,
		color.New(color.Faint).Sprint(rr.Outcome.String()))
}

// StepStarted implements operation.Reporter
func (l *Logger) StepStarted(ctx context.Context, index, total int, step operation.Step) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\n%s %s\n",
		color.New(color.FgMagenta).Sprintf("[%d/%d]", index+1, total),
		color.New(color.Bold).Sprint(step.Name))

	l.zlog.Info().
		Str("step", step.Name).
		Str("target", step.Target).
		Int("index", index+1).
		Int("total", total).
		Msg("step started")
}

// StepBackedUp implements operation.Reporter
func (l *Logger) StepBackedUp(ctx context.Context, step operation.Step, backupPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s backup: %s\n",
		color.New(color.FgGreen).Sprint("[OK]"),
		filepath.Base(backupPath))

	l.zlog.Info().Str("step", step.Name).Str("backup", backupPath).Msg("step backed up")
}

// StepCompleted implements operation.Reporter
func (l *Logger) StepCompleted(ctx context.Context, result *operation.StepResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rr := range result.Rules {
		fmt.Fprintln(l.console, formatRule(rr))
	}

	if result.State != operation.StatePatched {
		if result.Diff == "" {
			fmt.Fprintf(l.console, "%s %s: no changes\n", color.New(color.FgCyan).Sprint("[DRY]"), result.Name)
		} else {
			fmt.Fprintf(l.console, "%s %s\n%s", color.New(color.FgCyan).Sprint("[DRY]"), result.Name, result.Diff)
		}
	} else {
		fmt.Fprintf(l.console, "%s %s done\n", color.New(color.FgGreen).Sprint("[OK]"), result.Name)
	}

	l.zlog.Info().
		Str("step", result.Name).
		Str("state", result.State.String()).
		Bool("changed", result.Changed).
		Int("applied", result.Count(text.OutcomeApplied)).
		Int("skipped", result.Count(text.OutcomeSkipped)).
		Int("missed", result.Count(text.OutcomeMissed)).
		Msg("step completed")
}

// StepFailed implements operation.Reporter
func (l *Logger) StepFailed(ctx context.Context, result *operation.StepResult, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rr := range result.Rules {
		fmt.Fprintln(l.console, formatRule(rr))
	}
	fmt.Fprintf(l.console, "%s %s: %v\n", color.New(color.FgRed).Sprint("[ERROR]"), result.Name, err)

	l.zlog.Error().Err(err).Str("step", result.Name).Str("state", result.State.String()).Msg("step failed")
}

// 📊 Summary prints a table of every step in the run
func (l *Logger) Summary(run *operation.RunResult) {
	rows := make([][]string, 0, len(run.Steps))
	for _, s := range run.Steps {
		rows = append(rows, []string{
			s.Name,
			s.State.String(),
			strconv.Itoa(s.Count(text.OutcomeApplied)),
			strconv.Itoa(s.Count(text.OutcomeSkipped)),
			strconv.Itoa(s.Count(text.OutcomeMissed)),
			s.Target,
		})
	}
	l.Table([]string{"Step", "State", "Applied", "Skipped", "Missed", "Target"}, rows)
}

// 📊 Table renders rows under a header
func (l *Logger) Table(header []string, rows [][]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		l.zlog.Warn().Err(err).Msg("rendering table")
		return
	}
	fmt.Fprintf(l.console, "\n%s\n", out)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
