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
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner decides how a list of steps is executed
type Runner struct {
	parallel bool
}

// 🏗️ NewRunner creates a new runner
func NewRunner(parallel bool) *Runner {
	return &Runner{parallel: parallel}
}

// 🏃 Run executes steps through the orchestrator
func (r *Runner) Run(ctx context.Context, o *Orchestrator, steps []Step) (*RunResult, error) {
	result := &RunResult{
		Steps:   make([]*StepResult, 0, len(steps)),
		Started: time.Now(),
		DryRun:  o.dryRun,
	}
	defer func() { result.Finished = time.Now() }()

	if r.parallel {
		return result, r.runParallel(ctx, o, steps, result)
	}
	return result, r.runSequential(ctx, o, steps, result)
}

// 🔄 runSequential runs steps one at a time and stops at the first failure.
// Steps that already completed stay applied.
func (r *Runner) runSequential(ctx context.Context, o *Orchestrator, steps []Step, result *RunResult) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("run cancelled before step %s: %w", step.Name, err)
		}

		stepResult, err := o.runStep(ctx, i, len(steps), step)
		result.Steps = append(result.Steps, stepResult)
		if err != nil {
			zerolog.Ctx(ctx).Debug().
				Int("completed", result.Completed()).
				Int("remaining", len(steps)-i-1).
				Msg("halting run")
			return err
		}
	}
	return nil
}

// ⚡ runParallel checks that every target exists and is distinct before any
// file is touched, then patches each file as one backup-then-write unit.
func (r *Runner) runParallel(ctx context.Context, o *Orchestrator, steps []Step, result *RunResult) error {
	seen := make(map[string]string, len(steps))
	for _, step := range steps {
		path, err := o.ResolveTarget(step.Target)
		if err != nil {
			return errors.Errorf("step %s: %w", step.Name, err)
		}
		if other, ok := seen[path]; ok {
			return errors.Errorf("steps %s and %s both target %s", other, step.Name, path)
		}
		seen[path] = step.Name
	}

	results := make([]*StepResult, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	for i, step := range steps {
		i, step := i, step
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Errorf("run cancelled before step %s: %w", step.Name, err)
			}
			stepResult, err := o.runStep(gctx, i, len(steps), step)
			results[i] = stepResult
			return err
		})
	}
	err := g.Wait()

	for _, sr := range results {
		if sr != nil {
			result.Steps = append(result.Steps, sr)
		}
	}
	return err
}
