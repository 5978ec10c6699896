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
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/backup"
	"gitlab.com/tozd/go/errors"
)

// RestoreResult reports what rollback did for one step
type RestoreResult struct {
	Name     string
	Target   string
	Restored bool
	Err      error
}

// Skipped reports whether the step had no backup to restore
func (r *RestoreResult) Skipped() bool {
	return errors.Is(r.Err, backup.ErrNoBackup)
}

// ♻️ Rollback puts every step's backup back in place of its target. Steps
// without a backup are reported and skipped; other failures do not stop the
// remaining steps.
func (o *Orchestrator) Rollback(ctx context.Context, steps []Step) []*RestoreResult {
	results := make([]*RestoreResult, 0, len(steps))
	for _, step := range steps {
		result := &RestoreResult{Name: step.Name}
		results = append(results, result)

		path, err := o.restorePath(step.Target)
		if err != nil {
			result.Err = err
			continue
		}
		result.Target = path

		if err := o.backups.Restore(ctx, path); err != nil {
			result.Err = err
			continue
		}
		result.Restored = true

		zerolog.Ctx(ctx).Info().
			Str("step", step.Name).
			Str("target", path).
			Msg("step rolled back")
	}
	return results
}

// restorePath resolves a target for rollback. A plain target whose file is
// gone still resolves, since its backup alone is enough to restore it.
func (o *Orchestrator) restorePath(target string) (string, error) {
	path, err := o.ResolveTarget(target)
	if err == nil || !errors.Is(err, ErrTargetNotFound) || isPattern(target) {
		return path, err
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(o.root, filepath.FromSlash(target)), nil
}
