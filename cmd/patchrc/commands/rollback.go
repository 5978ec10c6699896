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
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRollbackCmd creates a new rollback command
func NewRollbackCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore every target from its backup",
		Long: `Rollback undoes a previous apply. For each step whose backup exists it
deletes the patched file and renames <file><suffix> back to the original
name. Steps without a backup are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			settings, err := opts.Resolve(ctx, cmd)
			if err != nil {
				return err
			}

			orch, err := settings.Orchestrator(false, operation.NopReporter{})
			if err != nil {
				return err
			}

			logger.Header("rolling back " + orch.Root())

			restored, failed := 0, 0
			for _, result := range orch.Rollback(ctx, settings.Steps) {
				switch {
				case result.Restored:
					restored++
					logger.Successf("%s restored", result.Name)
				case result.Skipped():
					logger.Warningf("%s: no backup, skipped", result.Name)
				default:
					failed++
					logger.Errorf("%s: %v", result.Name, result.Err)
				}
			}

			if failed > 0 {
				return errors.Errorf("%d steps could not be restored", failed)
			}
			logger.Infof("%d of %d steps restored", restored, len(settings.Steps))
			return nil
		},
	}

	return cmd
}
