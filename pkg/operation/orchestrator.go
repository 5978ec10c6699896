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

package operation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/backup"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrTargetNotFound is returned when a step's target file does not exist
	ErrTargetNotFound = errors.Base("target file not found")

	// ErrRuleMissed is returned in strict mode when a rule matched nothing
	ErrRuleMissed = errors.Base("edit rule matched nothing")
)

// 🔧 Options configures an Orchestrator
type Options struct {
	// Root is the directory step targets are resolved against
	Root string
	// BackupSuffix is appended to target paths to form backup paths
	BackupSuffix string
	// Parallel patches independent files concurrently
	Parallel bool
	// Strict fails a step when any of its rules is missed
	Strict bool
	// DryRun evaluates rules and renders diffs without touching the filesystem
	DryRun bool
	// Reporter receives progress signals, defaults to NopReporter
	Reporter Reporter
	// Editor applies rules, defaults to text.LiteralEditor
	Editor text.Editor
}

// 🎮 Orchestrator backs up and patches each step's target file
type Orchestrator struct {
	root     string
	backups  *backup.Manager
	editor   text.Editor
	reporter Reporter
	runner   *Runner
	strict   bool
	dryRun   bool
}

// 🏭 New creates an orchestrator with the given options
func New(opts Options) (*Orchestrator, error) {
	if opts.Root == "" {
		return nil, errors.Errorf("root is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}

	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Editor == nil {
		opts.Editor = text.NewLiteralEditor()
	}

	return &Orchestrator{
		root:     root,
		backups:  backup.New(opts.BackupSuffix),
		editor:   opts.Editor,
		reporter: opts.Reporter,
		runner:   NewRunner(opts.Parallel),
		strict:   opts.Strict,
		dryRun:   opts.DryRun,
	}, nil
}

// Root returns the absolute root directory
func (o *Orchestrator) Root() string {
	return o.root
}

// Backups returns the backup manager used for every step
func (o *Orchestrator) Backups() *backup.Manager {
	return o.backups
}

// 🏃 Run validates every step and then executes them. On failure the returned
// result still holds every step that was attempted.
func (o *Orchestrator) Run(ctx context.Context, steps []Step) (*RunResult, error) {
	for _, step := range steps {
		if err := step.Validate(o.editor); err != nil {
			return nil, errors.Errorf("validating steps: %w", err)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("root", o.root).
		Int("steps", len(steps)).
		Bool("dry_run", o.dryRun).
		Bool("strict", o.strict).
		Msg("starting patch run")

	return o.runner.Run(ctx, o, steps)
}

// 🔍 Inspect evaluates every step against current file content without
// backing up or writing anything. Per-step errors are recorded, not returned.
func (o *Orchestrator) Inspect(ctx context.Context, steps []Step) []*StepResult {
	results := make([]*StepResult, 0, len(steps))
	for _, step := range steps {
		result := &StepResult{Name: step.Name, State: StatePending}
		results = append(results, result)

		path, err := o.ResolveTarget(step.Target)
		if err != nil {
			result.Err = err
			continue
		}
		result.Target = path

		edit, err := o.evaluate(ctx, path, step)
		if err != nil {
			result.Err = err
			continue
		}
		result.Rules = edit.Rules
		result.Changed = edit.WasModified
	}
	return results
}

// runStep drives one step through pending -> backed_up -> patched
func (o *Orchestrator) runStep(ctx context.Context, index, total int, step Step) (*StepResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("step", step.Name).Logger()
	ctx = logger.WithContext(ctx)

	result := &StepResult{Name: step.Name, State: StatePending}
	o.reporter.StepStarted(ctx, index, total, step)

	fail := func(err error) (*StepResult, error) {
		result.State = StateFailed
		result.Err = err
		o.reporter.StepFailed(ctx, result, err)
		return result, errors.Errorf("step %s: %w", step.Name, err)
	}

	path, err := o.ResolveTarget(step.Target)
	if err != nil {
		return fail(err)
	}
	result.Target = path

	info, err := os.Stat(path)
	if err != nil {
		return fail(errors.Errorf("checking target: %w", err))
	}

	if !o.dryRun {
		backupPath, err := o.backups.Backup(ctx, path)
		if err != nil {
			return fail(errors.Errorf("backing up %s: %w", path, err))
		}
		result.BackupPath = backupPath
		result.State = StateBackedUp
		o.reporter.StepBackedUp(ctx, step, backupPath)
	}

	edit, err := o.evaluate(ctx, path, step)
	if err != nil {
		return fail(err)
	}
	result.Rules = edit.Rules
	result.Changed = edit.WasModified
	result.ChecksumBefore = checksum(edit.OriginalContent)
	result.ChecksumAfter = checksum(edit.ModifiedContent)

	if missed := edit.Missed(); len(missed) > 0 {
		if o.strict {
			return fail(errors.Errorf("%s: %w", strings.Join(missed, ", "), ErrRuleMissed))
		}
		logger.Warn().Strs("rules", missed).Msg("edit rules matched nothing")
	}

	if o.dryRun {
		diff, err := text.Diff(filepath.Base(path), edit.OriginalContent, edit.ModifiedContent)
		if err != nil {
			return fail(err)
		}
		result.Diff = diff
		o.reporter.StepCompleted(ctx, result)
		return result, nil
	}

	if err := backup.WriteFileAtomic(path, edit.ModifiedContent, info.Mode().Perm()); err != nil {
		return fail(errors.Errorf("writing %s: %w", path, err))
	}
	result.State = StatePatched

	logger.Info().
		Str("target", path).
		Int("applied", edit.Count(text.OutcomeApplied)).
		Int("skipped", edit.Count(text.OutcomeSkipped)).
		Int("missed", edit.Count(text.OutcomeMissed)).
		Bool("changed", edit.WasModified).
		Msg("step patched")

	o.reporter.StepCompleted(ctx, result)
	return result, nil
}

// evaluate reads the target and runs the step's rules over it
func (o *Orchestrator) evaluate(ctx context.Context, path string, step Step) (*text.EditResult, error) {
	for i, rule := range step.Rules {
		if !rule.Idempotent() {
			zerolog.Ctx(ctx).Debug().
				Str("rule", text.RuleName(rule, i)).
				Msg("rule has no guard and re-adds its marker, re-running is unsafe")
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	edit, err := o.editor.ApplyRules(ctx, f, step.Rules)
	if err != nil {
		return nil, errors.Errorf("applying rules to %s: %w", path, err)
	}
	return edit, nil
}

// 🎯 ResolveTarget turns a step target into an absolute path of an existing
// regular file. Glob targets must match exactly one file under the root.
func (o *Orchestrator) ResolveTarget(target string) (string, error) {
	rel := filepath.ToSlash(target)

	if isPattern(target) {
		if !doublestar.ValidatePattern(rel) {
			return "", errors.Errorf("invalid target pattern %q", target)
		}
		matches, err := doublestar.Glob(os.DirFS(o.root), rel)
		if err != nil {
			return "", errors.Errorf("matching target pattern %q: %w", target, err)
		}
		switch len(matches) {
		case 0:
			return "", errors.Errorf("%s: %w", filepath.Join(o.root, target), ErrTargetNotFound)
		case 1:
			rel = matches[0]
		default:
			return "", errors.Errorf("target pattern %q matched %d files: %s", target, len(matches), strings.Join(matches, ", "))
		}
	}

	path := filepath.FromSlash(rel)
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.root, path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", errors.Errorf("%s: %w", path, ErrTargetNotFound)
	}
	if err != nil {
		return "", errors.Errorf("checking target %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Errorf("target is not a regular file: %s", path)
	}

	// patch the file a symlink points to, a rename over the link would replace it
	if link, err := os.Lstat(path); err == nil && link.Mode()&os.ModeSymlink != 0 {
		if path, err = filepath.EvalSymlinks(path); err != nil {
			return "", errors.Errorf("resolving symlink %s: %w", target, err)
		}
	}
	return path, nil
}

func isPattern(target string) bool {
	return !filepath.IsAbs(target) && strings.ContainsAny(filepath.ToSlash(target), "*?[{")
}

// checksum generates a SHA-256 hash of the content
func checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
