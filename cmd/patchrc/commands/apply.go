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

package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/journal"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Back up and patch every target file",
		Long: `Apply runs each patch step in order. For every step it will:
1. Check that the target file exists
2. Copy it to <file><suffix> next to the original
3. Apply the literal edit rules, skipping any whose guard is already present
4. Write the patched content in place

The run stops at the first failed step; earlier steps stay applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunApply(cmd, opts)
		},
	}

	return cmd
}

// 🚀 RunApply runs the resolved plan. It is also the root command's action.
func RunApply(cmd *cobra.Command, opts *opts.RootOpts) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	settings, err := opts.Resolve(ctx, cmd)
	if err != nil {
		return err
	}

	orch, err := settings.Orchestrator(opts.DryRun, logger)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Str("run_id", runID).Logger().WithContext(ctx)

	mode := "patching"
	if opts.DryRun {
		mode = "dry run of"
	}
	logger.Header(fmt.Sprintf("%s %d files under %s (%s)", mode, len(settings.Steps), orch.Root(), settings.Source))

	run, runErr := orch.Run(ctx, settings.Steps)
	if run == nil {
		return errors.Errorf("running plan: %w", runErr)
	}
	logger.Summary(run)

	if !opts.DryRun {
		lock := status.NewLock(runID, orch.Root(), orch.Backups().Suffix(), run)
		lock.Succeeded = lock.Succeeded && runErr == nil

		if err := record(ctx, opts, lock); err != nil {
			if runErr == nil {
				return err
			}
			logger.Warningf("recording run: %v", err)
		}
	}

	if runErr != nil {
		return errors.Errorf("running plan: %w", runErr)
	}

	if opts.DryRun {
		logger.Info("dry run, no files were backed up or written")
		return nil
	}

	suffix := orch.Backups().Suffix()
	logger.Successf("all %d steps patched", run.Completed())
	logger.Infof("backups were saved next to each file with the suffix %s", suffix)
	logger.Infof("to roll back, run `patchrc rollback`, or delete each patched file and rename its %s backup to the original name", suffix)
	return nil
}

// record writes the lock file and, when --journal is set, appends the run to the journal
func record(ctx context.Context, opts *opts.RootOpts, lock *status.Lock) error {
	if err := status.New(opts.LockPath(lock.Root)).Write(ctx, lock); err != nil {
		return errors.Errorf("writing lock file: %w", err)
	}

	if opts.Journal == "" {
		return nil
	}

	j, err := journal.Open(ctx, opts.Journal)
	if err != nil {
		return errors.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	if err := j.Record(ctx, lock); err != nil {
		return errors.Errorf("recording run in journal: %w", err)
	}
	return nil
}
